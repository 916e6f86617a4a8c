package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
)

// Metadata is the loosely typed front matter (or JSON/YAML body) of a machine document.
type Metadata = map[string]any

// Loader adapts a Loam repository to the MachineLoader interface.
// Each document holds one machine: Markdown with front matter, or plain JSON/YAML.
type Loader struct {
	Repo *loam.TypedRepository[Metadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[Metadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Open initializes a read-only, strict Loam repository rooted at dir.
func Open(dir string) (*Loader, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve machine directory: %w", err)
	}
	repo, err := loam.Init(abs,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open machine directory %s: %w", abs, err)
	}
	return FromRepository(repo), nil
}

// FromRepository wraps an untyped Loam repository.
func FromRepository(repo core.Repository) *Loader {
	return New(loam.NewTypedRepository[Metadata](repo))
}

// Get resolves a machine by name.
// Loam finds the file from its bare ID (bit-flip -> bit-flip.md); when the
// document declares a different name, the repository is scanned instead.
func (l *Loader) Get(ctx context.Context, name string) (*machine.Definition, error) {
	doc, err := l.Repo.Get(ctx, name)
	if err == nil {
		def, derr := decode(doc.ID, doc.Data, doc.Content)
		if derr != nil {
			return nil, derr
		}
		if def.Name == name {
			return def, nil
		}
	}

	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	for _, d := range docs {
		if nameOf(d.ID, d.Data) != name {
			continue
		}
		// List carries metadata only; the body comes from a full read.
		full, err := l.Repo.Get(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get %s failed: %w", d.ID, err)
		}
		return decode(d.ID, full.Data, full.Content)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
}

// List returns the names of every machine document, sorted.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(docs))

	for _, doc := range docs {
		name := nameOf(doc.ID, doc.Data)

		if existingPath, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: machine '%s' is defined in both '%s' and '%s'", name, existingPath, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Coalesce bursts: a pending signal already asks for a reload.
				select {
				case ch <- struct{}{}:
				case <-ctx.Done():
					return
				default:
				}
			}
		}
	}()

	return ch, nil
}

func decode(docID string, data Metadata, content string) (*machine.Definition, error) {
	def, err := machine.FromMap(data)
	if err != nil {
		return nil, fmt.Errorf("machine document %s: %w", docID, err)
	}
	if def.Name == "" {
		def.Name = trimExtension(docID)
	}
	if def.Description == "" {
		def.Description = strings.TrimSpace(content)
	}
	return def, nil
}

func nameOf(docID string, data Metadata) string {
	if n, ok := data["name"].(string); ok && n != "" {
		return n
	}
	return trimExtension(docID)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
