/*
Package dispatch turns raw transport updates into conversation turns.

Classify maps an update to a domain.Event. The Dispatcher runs the event through
the engine under the party's session lock, then delivers the renders and exports
it produced. The Router keeps one worker per party so a party's updates are
handled in arrival order while different parties proceed in parallel.
*/
package dispatch
