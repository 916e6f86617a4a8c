package ports

import (
	"context"

	"github.com/aretw0/turing/pkg/domain"
)

// RunStore defines the interface for persisting deterministic runs.
// Runs are parked as checkpoints between requests, enabling "Stop & Resume".
type RunStore interface {
	// Save persists the checkpoint for a given run ID.
	Save(ctx context.Context, runID string, cp *domain.Checkpoint) error

	// Load retrieves the checkpoint for a given run ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Checkpoint, error)

	// Delete removes the checkpoint for a given run ID. Deleting a missing run is not an error.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of all stored runs.
	List(ctx context.Context) ([]string, error)
}
