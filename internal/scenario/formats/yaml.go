// Package formats provides scenario file parsers.
package formats

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/dunesim/internal/command"
	"github.com/vovakirdan/dunesim/internal/core"
	"github.com/vovakirdan/dunesim/internal/sim"
)

// YAMLScenario is the on-disk layout of a scenario file.
type YAMLScenario struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Seed        uint32        `yaml:"seed,omitempty"`
	Ticks       int           `yaml:"ticks,omitempty"`
	Map         []string      `yaml:"map"`
	Players     []YAMLPlayer  `yaml:"players"`
	Spice       []YAMLSpice   `yaml:"spice,omitempty"`
	Objects     []YAMLObject  `yaml:"objects,omitempty"`
	Commands    []YAMLCommand `yaml:"commands,omitempty"`
}

// YAMLPlayer declares a player slot. Omitted credits mean the rules'
// starting credits.
type YAMLPlayer struct {
	ID      int  `yaml:"id"`
	Team    int  `yaml:"team"`
	Credits *int `yaml:"credits,omitempty"`
}

// YAMLSpice is a spice field spread around a center tile.
type YAMLSpice struct {
	At     []int `yaml:"at"`
	Radius int   `yaml:"radius"`
}

// YAMLObject places a unit or structure.
type YAMLObject struct {
	Name   string  `yaml:"name,omitempty"`
	Item   string  `yaml:"item"`
	Owner  int     `yaml:"owner"`
	At     []int   `yaml:"at"`
	Mode   string  `yaml:"mode,omitempty"`
	Health float64 `yaml:"health,omitempty"` // fraction of hit points, 0 = full
}

// YAMLCommand is a scripted command. Arguments are numbers, "@name"
// object references, item names or attack mode names.
type YAMLCommand struct {
	Tick   uint32 `yaml:"tick"`
	Player int    `yaml:"player"`
	Op     string `yaml:"op"`
	Args   []any  `yaml:"args"`
}

// Scenario is a parsed and validated scenario.
type Scenario struct {
	ID          string
	Name        string
	Description string
	Seed        uint32
	Ticks       int
	Width       int
	Height      int
	Terrain     []sim.Terrain // row-major
	Players     []Player
	Spice       []SpiceField
	Objects     []Object
	Commands    []Command
}

// Player is a player slot declaration.
type Player struct {
	ID      sim.PlayerID
	Team    int
	Credits int // negative: starting credits from the rules
}

// SpiceField is a spice field to spread at setup.
type SpiceField struct {
	Center core.Coord
	Radius int
}

// Object is an object to create at setup.
type Object struct {
	Name   string
	Item   sim.ItemID
	Owner  sim.PlayerID
	At     core.Coord
	Mode   sim.AttackMode
	Health float64
}

// Command is a scripted command whose arguments may still name objects.
type Command struct {
	Tick   uint32
	Player sim.PlayerID
	Op     command.Opcode
	Args   []Arg
}

// Arg is a literal value or, when Ref is set, the ID of a named object.
type Arg struct {
	Ref   string
	Value uint32
}

// terrainRunes maps map characters to terrain.
var terrainRunes = map[rune]sim.Terrain{
	'.': sim.TerrainSand,
	'~': sim.TerrainDunes,
	'#': sim.TerrainRock,
	'=': sim.TerrainSlab,
	'^': sim.TerrainMountain,
	's': sim.TerrainSpice,
	'S': sim.TerrainThickSpice,
	'*': sim.TerrainSpiceBloom,
	'+': sim.TerrainSpecialBloom,
}

// TerrainRune returns the map character of a terrain type.
func TerrainRune(t sim.Terrain) rune {
	for r, tt := range terrainRunes {
		if tt == t {
			return r
		}
	}
	return '?'
}

// ParseYAML parses and validates a YAML scenario file.
func ParseYAML(data []byte) (Scenario, error) {
	var ys YAMLScenario
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return Scenario{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if strings.TrimSpace(ys.ID) == "" {
		return Scenario{}, fmt.Errorf("scenario has no id")
	}

	sc := Scenario{
		ID:          ys.ID,
		Name:        ys.Name,
		Description: strings.TrimSpace(ys.Description),
		Seed:        ys.Seed,
		Ticks:       ys.Ticks,
	}
	if sc.Name == "" {
		sc.Name = sc.ID
	}
	if err := parseMap(&sc, ys.Map); err != nil {
		return Scenario{}, err
	}

	seen := make(map[sim.PlayerID]bool)
	for _, yp := range ys.Players {
		id := sim.PlayerID(yp.ID)
		if yp.ID < 0 || !id.Valid() {
			return Scenario{}, fmt.Errorf("player %d: invalid slot", yp.ID)
		}
		if seen[id] {
			return Scenario{}, fmt.Errorf("player %d declared twice", yp.ID)
		}
		seen[id] = true
		p := Player{ID: id, Team: yp.Team, Credits: -1}
		if yp.Credits != nil {
			p.Credits = *yp.Credits
		}
		sc.Players = append(sc.Players, p)
	}
	if len(sc.Players) == 0 {
		return Scenario{}, fmt.Errorf("scenario %s has no players", sc.ID)
	}

	for i, s := range ys.Spice {
		c, err := sc.coord(s.At)
		if err != nil {
			return Scenario{}, fmt.Errorf("spice %d: %w", i, err)
		}
		sc.Spice = append(sc.Spice, SpiceField{Center: c, Radius: s.Radius})
	}

	names := make(map[string]bool)
	for i, yo := range ys.Objects {
		o, err := sc.parseObject(yo, seen)
		if err != nil {
			return Scenario{}, fmt.Errorf("object %d: %w", i, err)
		}
		if o.Name != "" {
			if names[o.Name] {
				return Scenario{}, fmt.Errorf("object %d: duplicate name %q", i, o.Name)
			}
			names[o.Name] = true
		}
		sc.Objects = append(sc.Objects, o)
	}

	for i, yc := range ys.Commands {
		c, err := parseCommand(yc, seen, names)
		if err != nil {
			return Scenario{}, fmt.Errorf("command %d: %w", i, err)
		}
		sc.Commands = append(sc.Commands, c)
	}
	return sc, nil
}

func parseMap(sc *Scenario, rows []string) error {
	if len(rows) == 0 {
		return fmt.Errorf("scenario %s has an empty map", sc.ID)
	}
	sc.Height = len(rows)
	sc.Width = len([]rune(rows[0]))
	if sc.Width == 0 {
		return fmt.Errorf("scenario %s has an empty map", sc.ID)
	}
	if sc.Width > sim.MaxMapSize || sc.Height > sim.MaxMapSize {
		return fmt.Errorf("scenario %s map is %dx%d, at most %d tiles per side", sc.ID, sc.Width, sc.Height, sim.MaxMapSize)
	}
	sc.Terrain = make([]sim.Terrain, 0, sc.Width*sc.Height)
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != sc.Width {
			return fmt.Errorf("map row %d has %d tiles, expected %d", y, len(runes), sc.Width)
		}
		for x, r := range runes {
			t, ok := terrainRunes[r]
			if !ok {
				return fmt.Errorf("map row %d column %d: unknown terrain %q", y, x, r)
			}
			sc.Terrain = append(sc.Terrain, t)
		}
	}
	return nil
}

func (sc *Scenario) coord(at []int) (core.Coord, error) {
	if len(at) != 2 {
		return core.Coord{}, fmt.Errorf("position needs [x, y], got %v", at)
	}
	c := core.C(at[0], at[1])
	if c.X < 0 || c.Y < 0 || c.X >= sc.Width || c.Y >= sc.Height {
		return core.Coord{}, fmt.Errorf("position %v outside the %dx%d map", c, sc.Width, sc.Height)
	}
	return c, nil
}

func (sc *Scenario) parseObject(yo YAMLObject, players map[sim.PlayerID]bool) (Object, error) {
	item, ok := sim.ParseItem(yo.Item)
	if !ok {
		return Object{}, fmt.Errorf("unknown item %q", yo.Item)
	}
	owner := sim.PlayerID(yo.Owner)
	if yo.Owner < 0 || !players[owner] {
		return Object{}, fmt.Errorf("%s owned by undeclared player %d", yo.Item, yo.Owner)
	}
	c, err := sc.coord(yo.At)
	if err != nil {
		return Object{}, err
	}
	mode := sim.ModeGuard
	if yo.Mode != "" {
		if mode, ok = sim.ParseAttackMode(yo.Mode); !ok {
			return Object{}, fmt.Errorf("unknown mode %q", yo.Mode)
		}
	}
	if yo.Health < 0 || yo.Health > 1 {
		return Object{}, fmt.Errorf("health %v outside 0..1", yo.Health)
	}
	return Object{Name: yo.Name, Item: item, Owner: owner, At: c, Mode: mode, Health: yo.Health}, nil
}

func parseCommand(yc YAMLCommand, players map[sim.PlayerID]bool, names map[string]bool) (Command, error) {
	op, ok := command.ParseOpcode(yc.Op)
	if !ok {
		return Command{}, fmt.Errorf("unknown opcode %q", yc.Op)
	}
	if op == command.OpTestSync {
		return Command{}, fmt.Errorf("TestSync cannot be scripted")
	}
	pid := sim.PlayerID(yc.Player)
	if yc.Player < 0 || !players[pid] {
		return Command{}, fmt.Errorf("%s issued by undeclared player %d", op, yc.Player)
	}
	if len(yc.Args) != op.ParamCount() {
		return Command{}, fmt.Errorf("%s expects %d arguments, got %d", op, op.ParamCount(), len(yc.Args))
	}

	c := Command{Tick: yc.Tick, Player: pid, Op: op}
	for _, a := range yc.Args {
		arg, err := parseArg(a, names)
		if err != nil {
			return Command{}, fmt.Errorf("%s: %w", op, err)
		}
		c.Args = append(c.Args, arg)
	}
	return c, nil
}

func parseArg(a any, names map[string]bool) (Arg, error) {
	switch v := a.(type) {
	case int:
		return Arg{Value: uint32(int32(v))}, nil
	case bool:
		if v {
			return Arg{Value: 1}, nil
		}
		return Arg{}, nil
	case string:
		if ref, ok := strings.CutPrefix(v, "@"); ok {
			if !names[ref] {
				return Arg{}, fmt.Errorf("unknown object %q", ref)
			}
			return Arg{Ref: ref}, nil
		}
		if item, ok := sim.ParseItem(v); ok {
			return Arg{Value: uint32(item)}, nil
		}
		if mode, ok := sim.ParseAttackMode(v); ok {
			return Arg{Value: uint32(mode)}, nil
		}
		return Arg{}, fmt.Errorf("cannot interpret argument %q", v)
	default:
		return Arg{}, fmt.Errorf("unsupported argument %v", a)
	}
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
