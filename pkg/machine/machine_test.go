package machine_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flipYAML = `
name: flip
initial: q0
accept: [accept]
transitions:
  q0:
    0: {next: q0, write: "1", move: R}
    1: {next: q0, write: "0", move: right}
    _: accept
`

func TestParseYAML_Shorthands(t *testing.T) {
	def, err := machine.ParseYAML([]byte(flipYAML))
	require.NoError(t, err)

	assert.Equal(t, "flip", def.Name)
	assert.Equal(t, machine.OutcomeSet{{Next: "accept"}}, def.Transitions["q0"]["_"])
	assert.Equal(t, machine.OutcomeSet{{Next: "q0", Write: "1", Move: "R"}}, def.Transitions["q0"]["0"])

	table, err := def.Compile()
	require.NoError(t, err)
	assert.Equal(t, domain.DisciplineDeterministic, table.Discipline())

	tr, ok := table.Lookup("q0", []domain.Symbol{"_"})
	require.True(t, ok)
	write, move := tr.Outcomes()[0].Apply(0, "_")
	assert.Equal(t, domain.Symbol("_"), write, "bare string keeps the symbol")
	assert.Equal(t, domain.MoveStay, move)
}

func TestParseYAML_UnknownField(t *testing.T) {
	_, err := machine.ParseYAML([]byte("name: x\ninitial: q0\nstart: q1\n"))
	assert.Error(t, err)
}

func TestParseJSON_ChoicesInferNondeterminism(t *testing.T) {
	data := []byte(`{
		"name": "guess",
		"initial": "q0",
		"accept": ["yes"],
		"transitions": {
			"q0": {"1": [{"next": "q0", "move": "R"}, "yes"], "0": "q0"}
		}
	}`)
	def, err := machine.ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, def.Transitions["q0"]["1"], 2)

	table, err := def.Compile()
	require.NoError(t, err)
	assert.Equal(t, domain.DisciplineNondeterministic, table.Discipline())

	out, err := json.Marshal(def.Transitions["q0"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"0": {"next": "q0"}, "1": [{"next": "q0", "move": "R"}, {"next": "yes"}]}`, string(out))
}

func TestFromMap_LooseTypes(t *testing.T) {
	def, err := machine.FromMap(map[string]any{
		"name":    "loose",
		"initial": "q0",
		"accept":  []any{"done"},
		"transitions": map[string]any{
			"q0": map[any]any{
				0:   map[string]any{"next": "q0", "write": 1, "move": "R"},
				"_": "done",
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, machine.OutcomeSet{{Next: "q0", Write: "1", Move: "R"}}, def.Transitions["q0"]["0"])

	_, err = def.Compile()
	require.NoError(t, err)
}

func TestCompile_Rules(t *testing.T) {
	def := &machine.Definition{
		Name:    "two",
		Initial: "q0",
		Accept:  []string{"accept"},
		Rules: []machine.RuleDef{
			{State: "q0", Read: []string{"a", "_"}, Next: "q0", Write: []string{"*", "a"}, Move: []string{"R", "R"}},
			{State: "q0", Read: []string{"_", "*"}, Next: "accept"},
		},
	}
	table, err := def.Compile()
	require.NoError(t, err)
	assert.Equal(t, 2, table.Tapes())

	tr, ok := table.Lookup("q0", []domain.Symbol{"_", "a"})
	require.True(t, ok)
	assert.Equal(t, domain.State("accept"), tr.Outcomes()[0].Next)
}

func TestCompile_RulesMergeIntoChoices(t *testing.T) {
	rows := []machine.RuleDef{
		{State: "q0", Read: []string{"1"}, Next: "q0", Move: []string{"R"}},
		{State: "q0", Read: []string{"1"}, Next: "q1", Move: []string{"R"}},
	}

	def := &machine.Definition{Name: "ntm", Initial: "q0", Rules: rows}
	table, err := def.Compile()
	require.NoError(t, err)
	tr, _ := table.Lookup("q0", []domain.Symbol{"1"})
	assert.True(t, tr.Branching())
	assert.Len(t, tr.Outcomes(), 2)

	def.Discipline = domain.DisciplineDeterministic
	_, err = def.Compile()
	assert.ErrorIs(t, err, domain.ErrNondeterministicTable)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  machine.Definition
		want error
	}{
		{
			name: "missing initial",
			def:  machine.Definition{Name: "x"},
			want: domain.ErrInvalidTable,
		},
		{
			name: "invalid move",
			def: machine.Definition{Name: "x", Initial: "q0", Transitions: map[string]map[string]machine.OutcomeSet{
				"q0": {"a": {{Next: "q0", Move: "up"}}},
			}},
			want: domain.ErrInvalidMove,
		},
		{
			name: "empty set",
			def: machine.Definition{Name: "x", Initial: "q0", Transitions: map[string]map[string]machine.OutcomeSet{
				"q0": {"a": {}},
			}},
			want: domain.ErrInvalidTable,
		},
		{
			name: "arity",
			def: machine.Definition{Name: "x", Initial: "q0", Tapes: 2, Rules: []machine.RuleDef{
				{State: "q0", Read: []string{"a"}, Next: "q0"},
			}},
			want: domain.ErrInvalidTable,
		},
		{
			name: "map form with two tapes",
			def: machine.Definition{Name: "x", Initial: "q0", Tapes: 2, Transitions: map[string]map[string]machine.OutcomeSet{
				"q0": {"a": {{Next: "q0"}}},
			}},
			want: domain.ErrInvalidTable,
		},
		{
			name: "unknown discipline",
			def:  machine.Definition{Name: "x", Initial: "q0", Discipline: "quantum"},
			want: domain.ErrInvalidTable,
		},
		{
			name: "wildcard blank",
			def:  machine.Definition{Name: "x", Initial: "q0", Blank: "*"},
			want: domain.ErrInvalidTable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.def.Compile()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	def := &machine.Definition{
		Name:    "lint",
		Initial: "q0",
		Accept:  []string{"accept"},
		Transitions: map[string]map[string]machine.OutcomeSet{
			"q0":     {"a": {{Next: "q1"}}, "_": {{Next: "accept"}}},
			"orphan": {"a": {{Next: "q0"}}},
		},
	}
	issues := machine.Validate(def)
	assert.False(t, machine.HasErrors(issues))
	assert.Contains(t, issues, machine.Issue{Severity: machine.SeverityWarning, State: "orphan", Message: "unreachable from the initial state"})
	assert.Contains(t, issues, machine.Issue{Severity: machine.SeverityWarning, State: "q1", Message: "no transitions and not terminal, runs entering it get stuck"})

	def.Name = ""
	def.Transitions["q0"]["a"] = machine.OutcomeSet{{Next: "q1", Move: "sideways"}}
	issues = machine.Validate(def)
	assert.True(t, machine.HasErrors(issues))
}

func TestMarshalYAML_RoundTrip(t *testing.T) {
	def, err := machine.ParseYAML([]byte(flipYAML))
	require.NoError(t, err)

	data, err := machine.MarshalYAML(def)
	require.NoError(t, err)

	again, err := machine.ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, def, again)
}

func TestParse_ByExtension(t *testing.T) {
	_, err := machine.Parse("flip.yml", []byte(flipYAML))
	assert.NoError(t, err)
	_, err = machine.Parse("flip.toml", nil)
	assert.Error(t, err)
}
