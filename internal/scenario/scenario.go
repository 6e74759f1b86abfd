// Package scenario turns scenario definitions into ready-to-run worlds.
// Scenarios register themselves in init() functions, so the command line
// and the replay verifier find them by ID without hard-coded lists.
package scenario

import (
	"fmt"

	"github.com/vovakirdan/dunesim/internal/command"
	"github.com/vovakirdan/dunesim/internal/core"
	"github.com/vovakirdan/dunesim/internal/scenario/formats"
	"github.com/vovakirdan/dunesim/internal/sim"
)

// DefaultTicks is the run length of scenarios that do not set one.
const DefaultTicks = 2000

// Scenario sets up the initial state of a world.
type Scenario interface {
	// ID returns a unique identifier, used on the command line and in
	// replays.
	ID() string

	// Title returns a human-readable name.
	Title() string

	// Info describes the map size and run defaults.
	Info() Info

	// Setup fills an empty world of the right size: terrain, players,
	// objects and scripted commands.
	Setup(w *sim.World) error
}

// Info contains metadata about a scenario.
type Info struct {
	ID          string
	Title       string
	Description string
	Width       int
	Height      int
	Seed        uint32
	Ticks       int
}

// NewWorld creates a world sized for s and runs its setup. A zero seed in
// opts selects the scenario's own seed.
func NewWorld(s Scenario, opts sim.Options) (*sim.World, error) {
	info := s.Info()
	opts.Width, opts.Height = info.Width, info.Height
	if opts.Seed == 0 {
		opts.Seed = info.Seed
	}
	w, err := sim.New(opts)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.ID(), err)
	}
	if err := s.Setup(w); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.ID(), err)
	}
	return w, nil
}

// Start creates the registered scenario id and its world.
func Start(id string, opts sim.Options) (Scenario, *sim.World, error) {
	s, err := Create(id)
	if err != nil {
		return nil, nil, err
	}
	w, err := NewWorld(s, opts)
	if err != nil {
		return nil, nil, err
	}
	return s, w, nil
}

// Definition is a scenario backed by a parsed scenario file.
type Definition struct {
	def formats.Scenario
}

// FromFormat wraps a parsed scenario file.
func FromFormat(def formats.Scenario) *Definition {
	return &Definition{def: def}
}

// ID returns the scenario ID.
func (d *Definition) ID() string { return d.def.ID }

// Title returns the scenario name.
func (d *Definition) Title() string { return d.def.Name }

// Info describes the scenario.
func (d *Definition) Info() Info {
	ticks := d.def.Ticks
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	return Info{
		ID:          d.def.ID,
		Title:       d.def.Name,
		Description: d.def.Description,
		Width:       d.def.Width,
		Height:      d.def.Height,
		Seed:        d.def.Seed,
		Ticks:       ticks,
	}
}

// Setup applies the definition to w.
func (d *Definition) Setup(w *sim.World) error {
	def := d.def
	m := w.Map()
	if m.Width() != def.Width || m.Height() != def.Height {
		return fmt.Errorf("world is %dx%d, scenario needs %dx%d", m.Width(), m.Height(), def.Width, def.Height)
	}

	for y := 0; y < def.Height; y++ {
		for x := 0; x < def.Width; x++ {
			w.SetTerrain(core.C(x, y), def.Terrain[y*def.Width+x])
		}
	}
	for _, f := range def.Spice {
		w.CreateSpiceField(f.Center, f.Radius)
	}
	m.CreateSandRegions()

	for _, p := range def.Players {
		if _, err := w.AddPlayer(p.ID, p.Team, p.Credits); err != nil {
			return err
		}
	}

	named := make(map[string]sim.ObjectID)
	for _, od := range def.Objects {
		o, err := w.CreateObject(od.Item, od.Owner, od.At)
		if err != nil {
			return err
		}
		o.Mode = od.Mode
		if od.Health > 0 {
			o.Health = o.MaxHealth.Mul(core.FromFloat(od.Health))
			if o.Health <= 0 {
				o.Health = 1
			}
		}
		if od.Name != "" {
			named[od.Name] = o.ID
		}
	}

	for _, cd := range def.Commands {
		params := make([]uint32, len(cd.Args))
		for i, a := range cd.Args {
			params[i] = a.Value
			if a.Ref != "" {
				params[i] = uint32(named[a.Ref])
			}
		}
		cmd, err := command.New(cd.Op, params...)
		if err != nil {
			return err
		}
		if err := w.IssueAt(cd.Tick, cd.Player, cmd); err != nil {
			return err
		}
	}
	return nil
}
