/*
Package session manages deterministic runs that outlive a single request.

A run is stored as a checkpoint in a RunStore. Every operation loads the checkpoint,
rebuilds the engine from the machine definition, applies the change and saves it back
while holding a per-run lock (and, optionally, a distributed lock shared by replicas).
*/
package session
