/*
Package ports defines the driven ports (interfaces) for the Turing engine.

These interfaces decouple the engines from external implementations, allowing
machines and runs to live in various storage backends.

# Key Interfaces

  - MachineLoader: Resolves machine definitions by name (e.g., from Loam, a directory or Memory).
  - RunStore: Persists and loads deterministic run checkpoints.
  - DistributedLocker: Provides distributed locking for handling concurrent run access.
*/
package ports
