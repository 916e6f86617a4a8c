/*
Package domain contains the core domain models of the Turing engine.

It defines the vocabulary shared by every engine and adapter: tape symbols, head moves,
machine states, the transition table and the run status reported back to callers.
This package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Symbol: an opaque tape token. Each machine declares its own blank.
  - Outcome: what a transition does (next state plus a write/move per tape).
  - Transition: a tagged variant, either Deterministic (one Outcome) or Nondeterministic (a set).
  - Table: the compiled transition function keyed by (state, symbols read).
  - Checkpoint: a serializable snapshot of a deterministic run.
*/
package domain
