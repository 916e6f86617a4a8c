package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/library"
	"github.com/aretw0/turing/pkg/machine"
)

// Loader implements ports.MachineLoader using an in-memory map.
// Definitions are stored serialized, so callers never share state with the loader.
type Loader struct {
	mu       sync.RWMutex
	machines map[string][]byte
}

// NewLoader creates a loader holding the given definitions.
func NewLoader(defs ...*machine.Definition) (*Loader, error) {
	l := &Loader{machines: make(map[string][]byte)}
	for _, d := range defs {
		if err := l.Add(d); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// NewBuiltinLoader creates a loader preloaded with the embedded library.
func NewBuiltinLoader() (*Loader, error) {
	defs, err := library.All()
	if err != nil {
		return nil, err
	}
	return NewLoader(defs...)
}

// Add registers or replaces a definition.
func (l *Loader) Add(def *machine.Definition) error {
	if def.Name == "" {
		return fmt.Errorf("machine missing name")
	}
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal machine %s: %w", def.Name, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.machines[def.Name] = data
	return nil
}

// Get returns a copy of the named definition.
func (l *Loader) Get(ctx context.Context, name string) (*machine.Definition, error) {
	l.mu.RLock()
	data, ok := l.machines[name]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
	}
	var def machine.Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal machine %s: %w", name, err)
	}
	return &def, nil
}

// List returns all machine names.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.machines))
	for k := range l.machines {
		names = append(names, k)
	}
	slices.Sort(names) // Deterministic order
	return names, nil
}
