/*
Package observability turns engine lifecycle hooks into Prometheus metrics and
structured log lines. Both are plain domain.LifecycleHooks values, combined with
LifecycleHooks.Merge.
*/
package observability
