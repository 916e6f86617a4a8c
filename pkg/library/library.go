// Package library embeds the built-in machines shipped with turing.
//
// Definitions are parsed on every Get so callers may modify what they receive.
package library

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
)

//go:embed machines/*.yaml
var files embed.FS

const dir = "machines"

// FS exposes the raw definition files.
func FS() fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Names lists the built-in machines, sorted.
func Names() []string {
	entries, err := files.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	slices.Sort(names)
	return names
}

// Get returns a fresh copy of a built-in definition.
func Get(name string) (*machine.Definition, error) {
	data, err := files.ReadFile(path.Join(dir, name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMachineNotFound, name)
	}
	def, err := machine.ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("built-in %s: %w", name, err)
	}
	return def, nil
}

// All returns every built-in definition in name order.
func All() ([]*machine.Definition, error) {
	var defs []*machine.Definition
	for _, name := range Names() {
		def, err := Get(name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}
