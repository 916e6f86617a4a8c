package domain

// State is an opaque machine state label.
type State string

// Status describes where a run is in its lifecycle.
type Status string

const (
	StatusReady    Status = "ready"    // Constructed, no step taken yet
	StatusRunning  Status = "running"  // At least one step taken, not halted
	StatusAccepted Status = "accepted" // Reached an accepting state
	StatusRejected Status = "rejected" // Reached an authored rejecting state
	StatusHalted   Status = "halted"   // Reached a halting marker (no verdict)
	StatusStuck    Status = "stuck"    // No transition for the current key (implicit reject)
)

// Live reports whether further steps can change the run.
func (s Status) Live() bool {
	return s == StatusReady || s == StatusRunning
}

// Verdict is the outcome of a bounded run.
type Verdict string

const (
	VerdictAccept       Verdict = "accept"
	VerdictReject       Verdict = "reject"
	VerdictHalt         Verdict = "halt"
	VerdictStuck        Verdict = "stuck"
	VerdictUndetermined Verdict = "undetermined" // Step cap reached (or canceled) while still live
)

// VerdictOf maps a status to the verdict reported when a run stops in it.
func VerdictOf(s Status) Verdict {
	switch s {
	case StatusAccepted:
		return VerdictAccept
	case StatusRejected:
		return VerdictReject
	case StatusHalted:
		return VerdictHalt
	case StatusStuck:
		return VerdictStuck
	default:
		return VerdictUndetermined
	}
}

// Discipline tells an engine whether a table may branch.
type Discipline string

const (
	DisciplineDeterministic    Discipline = "deterministic"
	DisciplineNondeterministic Discipline = "nondeterministic"
)
