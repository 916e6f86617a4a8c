package machine

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/turing/pkg/domain"
)

// Compile validates the definition and builds the transition table engines run.
// When Discipline is unset it is inferred: any branching makes the machine nondeterministic.
func (d *Definition) Compile() (*domain.Table, error) {
	if d.Initial == "" {
		return nil, fmt.Errorf("%w: %s: initial state is required", domain.ErrInvalidTable, d.label())
	}
	tapes := d.TapeCount()
	if len(d.Transitions) > 0 && tapes != 1 {
		return nil, fmt.Errorf("%w: %s: the transitions map is single-tape, use rules for %d tapes",
			domain.ErrInvalidTable, d.label(), tapes)
	}
	blank := domain.Symbol(d.Blank)
	if blank == domain.Wildcard {
		return nil, fmt.Errorf("%w: %s: %q cannot be the blank symbol", domain.ErrInvalidTable, d.label(), blank)
	}

	rules, err := d.collect(tapes)
	if err != nil {
		return nil, err
	}

	discipline := d.Discipline
	switch discipline {
	case "":
		discipline = domain.DisciplineDeterministic
		for _, r := range rules {
			if len(r.choices) > 1 {
				discipline = domain.DisciplineNondeterministic
				break
			}
		}
	case domain.DisciplineDeterministic, domain.DisciplineNondeterministic:
	default:
		return nil, fmt.Errorf("%w: %s: unknown discipline %q", domain.ErrInvalidTable, d.label(), discipline)
	}

	table := domain.NewTable(domain.TableConfig{
		Name:       d.Name,
		Discipline: discipline,
		Tapes:      tapes,
		Blank:      blank,
		Initial:    domain.State(d.Initial),
		Accept:     states(d.Accept),
		Reject:     states(d.Reject),
		Halt:       states(d.Halt),
	})
	for _, r := range rules {
		var tr domain.Transition = domain.Deterministic{Outcome: r.choices[0]}
		if len(r.choices) > 1 {
			tr = domain.Nondeterministic{Choices: r.choices}
		}
		if err := table.Add(r.state, r.read, tr); err != nil {
			return nil, fmt.Errorf("%s: %w", d.label(), err)
		}
	}
	return table, nil
}

type compiledRule struct {
	state   domain.State
	read    []domain.Symbol
	choices []domain.Outcome
}

// collect flattens both notations into rules, in a stable order: the transitions map
// sorted by state then symbol, followed by the rules list as written.
func (d *Definition) collect(tapes int) ([]compiledRule, error) {
	var (
		out  []compiledRule
		errs []error
	)

	for _, state := range slices.Sorted(maps.Keys(d.Transitions)) {
		bySymbol := d.Transitions[state]
		for _, sym := range slices.Sorted(maps.Keys(bySymbol)) {
			set := bySymbol[sym]
			if len(set) == 0 {
				errs = append(errs, fmt.Errorf("(%s, %s): empty outcome set", state, sym))
				continue
			}
			r := compiledRule{state: domain.State(state), read: []domain.Symbol{domain.Symbol(sym)}}
			for _, def := range set {
				o, err := def.outcome()
				if err != nil {
					errs = append(errs, fmt.Errorf("(%s, %s): %w", state, sym, err))
					continue
				}
				r.choices = append(r.choices, o)
			}
			if len(r.choices) > 0 {
				out = append(out, r)
			}
		}
	}

	index := make(map[domain.Key]int)
	for i, row := range d.Rules {
		o, read, err := row.compile(tapes)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %d: %w", i, err))
			continue
		}
		key := domain.KeyOf(domain.State(row.State), read)
		if at, ok := index[key]; ok {
			out[at].choices = append(out[at].choices, o)
			continue
		}
		index[key] = len(out)
		out = append(out, compiledRule{state: domain.State(row.State), read: read, choices: []domain.Outcome{o}})
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidTable, d.label(), errors.Join(errs...))
	}
	return out, nil
}

func (s OutcomeSpec) outcome() (domain.Outcome, error) {
	if s.Next == "" {
		return domain.Outcome{}, errors.New("next state is required")
	}
	move, err := domain.ParseMove(s.Move)
	if err != nil {
		return domain.Outcome{}, err
	}
	return domain.Outcome{
		Next:    domain.State(s.Next),
		Actions: []domain.TapeAction{{Write: domain.Symbol(s.Write), Move: move}},
	}, nil
}

func (r RuleDef) compile(tapes int) (domain.Outcome, []domain.Symbol, error) {
	if r.State == "" {
		return domain.Outcome{}, nil, errors.New("state is required")
	}
	if r.Next == "" {
		return domain.Outcome{}, nil, errors.New("next state is required")
	}
	if len(r.Read) != tapes {
		return domain.Outcome{}, nil, fmt.Errorf("reads %d symbols, machine has %d tapes", len(r.Read), tapes)
	}
	if len(r.Write) > tapes || len(r.Move) > tapes {
		return domain.Outcome{}, nil, fmt.Errorf("more write/move entries than the %d tapes", tapes)
	}

	read := make([]domain.Symbol, tapes)
	actions := make([]domain.TapeAction, tapes)
	for i := range tapes {
		read[i] = domain.Symbol(r.Read[i])
		if i < len(r.Write) {
			actions[i].Write = domain.Symbol(r.Write[i])
		}
		var raw string
		if i < len(r.Move) {
			raw = r.Move[i]
		}
		m, err := domain.ParseMove(raw)
		if err != nil {
			return domain.Outcome{}, nil, fmt.Errorf("tape %d: %w", i, err)
		}
		actions[i].Move = m
	}
	return domain.Outcome{Next: domain.State(r.Next), Actions: actions}, read, nil
}

func (d *Definition) label() string {
	if d.Name == "" {
		return "machine"
	}
	return "machine " + d.Name
}

func states(names []string) []domain.State {
	out := make([]domain.State, len(names))
	for i, n := range names {
		out[i] = domain.State(n)
	}
	return out
}
