// Package redis stores live sessions in Redis and provides a Redis-backed distributed lock,
// so several replicas can serve the same parties.
package redis
