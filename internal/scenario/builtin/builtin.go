// Package builtin registers the scenarios shipped with dunesim. Import it
// for its side effects.
package builtin

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/vovakirdan/dunesim/internal/scenario"
	"github.com/vovakirdan/dunesim/internal/scenario/formats"
)

//go:embed *.yaml
var files embed.FS

func init() {
	defs, err := Definitions()
	if err != nil {
		panic(err)
	}
	for _, def := range defs {
		def := def
		scenario.Register(def.ID, func() scenario.Scenario { return scenario.FromFormat(def) })
	}
}

// Definitions parses every embedded scenario, sorted by ID.
func Definitions() ([]formats.Scenario, error) {
	names, err := fs.Glob(files, "*.yaml")
	if err != nil {
		return nil, err
	}
	var defs []formats.Scenario
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("builtin: %s: %w", name, err)
		}
		def, err := formats.ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("builtin: %s: %w", name, err)
		}
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs, nil
}
