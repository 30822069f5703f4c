/*
Package session serializes work on each party's conversation.

The Manager wraps a ports.SessionStore with a per-party mutex, and optionally a
ports.DistributedLocker when several replicas share a store. Apply is the unit
of work: load or start the session, mutate it, then save or delete it.
*/
package session
