/*
Package ports defines the driven ports (interfaces) of the switchboard engine.

These interfaces decouple the conversation core from transports, storage
backends and export sinks.

# Key Interfaces

  - SessionStore: persists live sessions (memory or Redis).
  - DistributedLocker: serializes access to a session across replicas.
  - Transport: delivers render instructions to a party.
  - Exporter: receives finalized records.
*/
package ports
