package domain

import "errors"

// ErrMachineNotFound is returned when a machine name cannot be resolved by a loader.
var ErrMachineNotFound = errors.New("machine not found")

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrInvalidMove is returned when a move is not one of L, R or S.
var ErrInvalidMove = errors.New("invalid move")

// ErrInvalidTable is returned when a transition table fails compilation.
var ErrInvalidTable = errors.New("invalid transition table")

// ErrNondeterministicTable is returned when a deterministic engine is given a branching table.
var ErrNondeterministicTable = errors.New("deterministic engine requires a deterministic table")

// ErrTapeCount is returned when the number of inputs does not match the table's tapes.
var ErrTapeCount = errors.New("tape count mismatch")

// ErrInvalidInput is returned when an input is not valid UTF-8 or contains the blank or wildcard.
var ErrInvalidInput = errors.New("invalid input")

// ErrStepLimitRequired is returned when Run is called without a positive bound.
var ErrStepLimitRequired = errors.New("a positive step limit is required")

// ErrNotStarted is returned when a search is stepped before Start.
var ErrNotStarted = errors.New("search not started")
