/*
Package machine holds the serializable form of a Turing machine.

A Definition is what users author (YAML, JSON or Markdown front matter) and what the
library, loaders and transports exchange. Compile turns it into a domain.Table that
engines run. Two rule notations are accepted:

  - transitions: a nested map state -> symbol -> outcome, for single-tape machines.
  - rules: a flat list with read/write/move tuples, for any number of tapes.

An outcome is either an object {next, write, move}, a bare string (next state only:
keep the symbol, stay), or a list of those for nondeterministic choices.
*/
package machine
