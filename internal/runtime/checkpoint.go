package runtime

import (
	"fmt"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/tape"
)

// Checkpoint captures the full run state. The ID is left for the caller to assign.
func (e *MultiTapeEngine) Checkpoint() domain.Checkpoint {
	cp := domain.Checkpoint{
		Machine: e.table.Name(),
		Inputs:  e.Inputs(),
		State:   e.state,
		Step:    e.step,
		Status:  e.status,
		Tapes:   make([]domain.TapeCheckpoint, len(e.tapes)),
	}
	for i, t := range e.tapes {
		cp.Tapes[i] = domain.TapeCheckpoint{
			Offset: t.Offset(),
			Cells:  t.Cells(),
			Head:   e.heads[i],
		}
	}
	return cp
}

// RestoreEngine rebuilds an engine from a checkpoint taken on the same table.
// Stepping the restored engine is indistinguishable from stepping the original.
func RestoreEngine(table *domain.Table, cp domain.Checkpoint, opts ...EngineOption) (*MultiTapeEngine, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil table", domain.ErrInvalidTable)
	}
	if cp.Machine != "" && cp.Machine != table.Name() {
		return nil, fmt.Errorf("%w: checkpoint of %q restored on %q", domain.ErrInvalidTable, cp.Machine, table.Name())
	}
	if len(cp.Tapes) != table.Tapes() {
		return nil, fmt.Errorf("%w: checkpoint has %d tapes, table has %d", domain.ErrTapeCount, len(cp.Tapes), table.Tapes())
	}

	e, err := NewMultiTapeEngine(table, nil, opts...)
	if err != nil {
		return nil, err
	}
	e.inputs = append([]string(nil), cp.Inputs...)
	e.state = cp.State
	e.step = cp.Step
	e.status = cp.Status
	for i, tc := range cp.Tapes {
		e.tapes[i] = tape.FromCells(table.Blank(), tc.Offset, tc.Cells)
		e.heads[i] = tc.Head
	}
	return e, nil
}
