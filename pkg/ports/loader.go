package ports

import (
	"context"

	"github.com/aretw0/turing/pkg/machine"
)

// MachineLoader defines how machine definitions are resolved by name.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type MachineLoader interface {
	// Get returns the definition of a machine.
	// Returns domain.ErrMachineNotFound if no machine has that name.
	Get(ctx context.Context, name string) (*machine.Definition, error)

	// List returns the names of all available machines, sorted.
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload while authoring machines.
type Watchable interface {
	// Watch returns a channel that is signaled when a definition changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
