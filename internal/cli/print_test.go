package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_Trace(t *testing.T) {
	lib, err := turing.New("")
	require.NoError(t, err)
	eng, err := lib.Engine(context.Background(), "bit-flip", "10")
	require.NoError(t, err)

	var buf bytes.Buffer
	p := NewPrinter(&buf, 5)
	verdict, err := p.Trace(context.Background(), eng, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictAccept, verdict)

	p.Result(eng, verdict)
	out := buf.String()
	assert.Contains(t, out, "step 0  state q0  ready")
	assert.Contains(t, out, "[1]", "a non-terminal writer gets the bracketed head")
	assert.Contains(t, out, "q0 -> q0  read 1")
	assert.Contains(t, out, "accept after 3 steps")
	assert.Contains(t, out, "tape 0: 01")
}

func TestPrinter_TraceNeedsLimit(t *testing.T) {
	lib, err := turing.New("")
	require.NoError(t, err)
	eng, err := lib.Engine(context.Background(), "bit-flip", "1")
	require.NoError(t, err)

	_, err = NewPrinter(&bytes.Buffer{}, 5).Trace(context.Background(), eng, 0)
	assert.ErrorIs(t, err, domain.ErrStepLimitRequired)
}

func TestPrinter_ResultUndetermined(t *testing.T) {
	lib, err := turing.New("")
	require.NoError(t, err)
	eng, err := lib.Engine(context.Background(), "bit-flip", "1111")
	require.NoError(t, err)
	res, err := eng.Run(2)
	require.NoError(t, err)

	var buf bytes.Buffer
	NewPrinter(&buf, 5).Result(eng, res.Verdict)
	assert.Contains(t, buf.String(), "undetermined after 2 steps")
	assert.Contains(t, buf.String(), "raise --max-steps")
}

func TestPrinter_SearchTree(t *testing.T) {
	lib, err := turing.New("")
	require.NoError(t, err)
	ntm, err := lib.Search(context.Background(), "pattern-101", "101", runtime.WithHistory())
	require.NoError(t, err)
	res, err := ntm.Run(100)
	require.NoError(t, err)

	var buf bytes.Buffer
	NewPrinter(&buf, 5).Search(ntm, res, true)
	out := buf.String()
	assert.Contains(t, out, "generation 0")
	assert.Contains(t, out, "c0")
	assert.Contains(t, out, "accept after 3 generations")
	assert.Contains(t, out, "accepting path: start")
}

func TestPrinter_Describe(t *testing.T) {
	lib, err := turing.New("")
	require.NoError(t, err)
	ctx := context.Background()
	def, err := lib.Definition(ctx, "palindrome")
	require.NoError(t, err)
	table, err := def.Compile()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, 5).Describe(def, table))
	out := buf.String()
	assert.Contains(t, out, "# palindrome")
	assert.Contains(t, out, "**Discipline**: deterministic")
	assert.Contains(t, out, "## Examples")
}
