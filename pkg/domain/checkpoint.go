package domain

// TapeCheckpoint is the materialized part of one tape plus its head.
// Cell i of Cells is logical index i-Offset.
type TapeCheckpoint struct {
	Offset int      `json:"offset"`
	Cells  []Symbol `json:"cells"`
	Head   int      `json:"head"`
}

// Checkpoint is a serializable snapshot of a deterministic run.
// It is what run stores persist between requests.
type Checkpoint struct {
	ID      string           `json:"id"`
	Machine string           `json:"machine"`
	Inputs  []string         `json:"inputs"`
	State   State            `json:"state"`
	Step    int              `json:"step"`
	Status  Status           `json:"status"`
	Tapes   []TapeCheckpoint `json:"tapes"`

	// Sealed holds the encrypted checkpoint when an encrypting store wrote it.
	// Only ID, Machine, Step and Status stay readable next to it.
	Sealed string `json:"sealed,omitempty"`
}
