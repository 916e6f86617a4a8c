package dsl

import (
	"testing"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_BitFlip(t *testing.T) {
	b := New("bit-flip").Initial("q0").Accept("accept")
	b.On("q0", "0").Write("1").Right().Go("q0")
	b.On("q0", "1").Write("0").Right().Go("q0")
	b.On("q0", "_").Right().Go("accept")

	table, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "bit-flip", table.Name())
	assert.Len(t, table.Rules(), 3)

	engine, err := runtime.NewEngine(table, "0110")
	require.NoError(t, err)
	res, err := engine.Run(10)
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictAccept, res.Verdict)
	assert.Equal(t, "1001", engine.Tape().Content())
}

func TestBuilder_MultiTape(t *testing.T) {
	b := New("dup").Initial("copy").Accept("done")
	b.OnTuple("copy", "1", "_").Tape(1).Write("1").Right().Tape(0).Right().Go("copy")
	b.OnTuple("copy", "_", "_").Go("done")

	def := b.Definition()
	assert.Equal(t, 2, def.TapeCount())
	assert.Equal(t, []string{"", "1"}, def.Rules[0].Write)
	assert.Equal(t, []string{"R", "R"}, def.Rules[0].Move)

	table, err := b.Build()
	require.NoError(t, err)

	engine, err := runtime.NewMultiTapeEngine(table, []string{"111"})
	require.NoError(t, err)
	res, err := engine.Run(10)
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictAccept, res.Verdict)
	assert.Equal(t, "111", engine.TapeAt(1).Content())
}

func TestBuilder_NondeterministicChoices(t *testing.T) {
	b := New("guess").Nondeterministic().Initial("q0").Accept("yes").Reject("no")
	b.On("q0", "1").Right().Go("q0")
	b.On("q0", "1").Right().Go("yes")
	b.On("q0", "_").Go("no")

	table, err := b.Build()
	require.NoError(t, err)

	tr, ok := table.Lookup("q0", []domain.Symbol{"1"})
	require.True(t, ok)
	assert.True(t, tr.Branching())

	ntm, err := runtime.NewNondeterministic(table)
	require.NoError(t, err)
	require.NoError(t, ntm.Start("1"))
	res, err := ntm.Run(5)
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictAccept, res.Verdict)
}

func TestBuilder_RepeatedKeyWithoutDiscipline(t *testing.T) {
	b := New("oops").Initial("q0")
	b.On("q0", "1").Go("q0")
	b.On("q0", "1").Go("q1")

	table, err := b.Build()
	require.NoError(t, err, "repeated keys infer a nondeterministic machine")
	assert.Equal(t, domain.DisciplineNondeterministic, table.Discipline())

	_, err = runtime.NewEngine(table, "1")
	assert.ErrorIs(t, err, domain.ErrNondeterministicTable)
}

func TestBuilder_DefinitionIsACopy(t *testing.T) {
	b := New("x").Initial("q0").Accept("a").Example("", domain.VerdictAccept)
	b.On("q0", "_").Go("a")

	def := b.Definition()
	def.Rules[0].Next = "elsewhere"
	def.Accept[0] = "elsewhere"

	again := b.Definition()
	assert.Equal(t, "a", again.Rules[0].Next)
	assert.Equal(t, []string{"a"}, again.Accept)
	assert.Len(t, again.Examples, 1)
}
