package domain

// StepResult describes one call to a deterministic engine's Step.
type StepResult struct {
	// Step is the step counter after this call.
	Step int `json:"step"`

	From State `json:"from"`
	To   State `json:"to"`

	Read    []Symbol `json:"read,omitempty"`
	Written []Symbol `json:"written,omitempty"`
	Moves   []Move   `json:"moves,omitempty"`

	// Heads holds the head positions after the step.
	Heads []int `json:"heads"`

	Status Status `json:"status"`

	// NoOp is set when the engine was already halted and nothing changed.
	NoOp bool `json:"no_op,omitempty"`

	// Stuck is set on the step that found no transition.
	Stuck bool `json:"stuck,omitempty"`
}

// RunResult is returned by a bounded Run.
type RunResult struct {
	Steps   []StepResult `json:"steps"`
	Verdict Verdict      `json:"verdict"`
}

// CapReached reports whether the run stopped on its bound rather than on a halt.
func (r RunResult) CapReached() bool {
	return r.Verdict == VerdictUndetermined
}

// ConfigurationView is the plain-data projection of a nondeterministic configuration.
type ConfigurationView struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	State    State  `json:"state"`
	Head     int    `json:"head"`
	Path     string `json:"path"`
	Tape     string `json:"tape,omitempty"`
}

// GenerationResult describes one breadth-first generation of a nondeterministic search.
type GenerationResult struct {
	Generation int    `json:"generation"`
	Status     Status `json:"status"`

	// Active counts non-terminal configurations.
	Active int `json:"active"`

	// Died counts branches dropped because no transition matched.
	Died int `json:"died"`

	Configurations []ConfigurationView `json:"configurations"`

	// NoOp is set when the search had already finished.
	NoOp bool `json:"no_op,omitempty"`
}

// SearchResult is returned by a bounded nondeterministic Run.
type SearchResult struct {
	Generations []GenerationResult `json:"generations"`
	Verdict     Verdict            `json:"verdict"`
}
