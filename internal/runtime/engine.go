package runtime

import (
	"fmt"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/tape"
)

// Engine is the deterministic single-tape machine.
// It is a MultiTapeEngine restricted to one tape, so both share the exact step semantics.
type Engine struct {
	*MultiTapeEngine
}

// NewEngine creates a single-tape engine with input written at indices 0..len-1.
func NewEngine(table *domain.Table, input string, opts ...EngineOption) (*Engine, error) {
	if table != nil && table.Tapes() != 1 {
		return nil, fmt.Errorf("%w: %s has %d tapes", domain.ErrTapeCount, table.Name(), table.Tapes())
	}
	core, err := NewMultiTapeEngine(table, []string{input}, opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{MultiTapeEngine: core}, nil
}

// Head returns the head position.
func (e *Engine) Head() int {
	return e.heads[0]
}

// Tape returns a copy of the tape.
func (e *Engine) Tape() *tape.Tape {
	return e.TapeAt(0)
}

// Reset restarts the machine on a new input.
func (e *Engine) Reset(input string) error {
	return e.MultiTapeEngine.Reset(input)
}
