package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vovakirdan/dunesim/internal/scenario/formats"
)

// Loader handles loading scenario files from a directory.
type Loader struct {
	Root string
}

// NewLoader creates a new scenario loader.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// LoadAll recursively scans and loads all scenario files.
// Returns scenarios sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]*Definition, error) {
	var defs []*Definition

	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !isSupportedExtension(ext) {
			return nil
		}

		def, err := l.LoadFile(path)
		if err != nil {
			// Skip invalid files
			return nil
		}

		defs = append(defs, def)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	sort.Slice(defs, func(i, j int) bool {
		return defs[i].ID() < defs[j].ID()
	})

	return defs, nil
}

// LoadFile loads a single scenario file.
func (l *Loader) LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	parsed, err := parseByExtension(data, ext)
	if err != nil {
		return nil, fmt.Errorf("parsing file %s: %w", path, err)
	}

	return FromFormat(parsed), nil
}

// LoadByID loads a specific scenario by ID.
func (l *Loader) LoadByID(id string) (*Definition, error) {
	defs, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	for _, d := range defs {
		if d.ID() == id {
			return d, nil
		}
	}

	return nil, fmt.Errorf("scenario not found: %s", id)
}

// RegisterAll registers every scenario under Root whose ID is not taken
// yet and returns the IDs it added.
func (l *Loader) RegisterAll() ([]string, error) {
	defs, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	var added []string
	for _, d := range defs {
		if Exists(d.ID()) {
			continue
		}
		def := d.def
		Register(d.ID(), func() Scenario { return FromFormat(def) })
		added = append(added, d.ID())
	}
	return added, nil
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parseByExtension routes to the correct parser.
func parseByExtension(data []byte, ext string) (formats.Scenario, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	default:
		return formats.Scenario{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}
