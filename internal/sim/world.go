// Package sim is the deterministic simulation core: the terrain grid, the
// object registry, unit behavior, pathfinding and the tick driver. A World
// is single-threaded; every mutation goes through a command applied at the
// start of a tick or through an object's own update.
package sim

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/dunesim/internal/command"
	"github.com/vovakirdan/dunesim/internal/config"
	"github.com/vovakirdan/dunesim/internal/core"
	"github.com/vovakirdan/dunesim/internal/rng"
)

// tunables are the game rules converted to simulation units.
type tunables struct {
	fogTimeout           int
	harvestSpeed         core.Fixed
	harvesterCapacity    core.Fixed
	unloadSpeed          core.Fixed
	spiceMin, spiceMax   int
	thickMin, thickMax   int
	thickThreshold       core.Fixed
	spiceFieldRadius     int
	buildRange           int
	maxAreaGuardRange    int
	repathDelay          int
	maxPathNodes         int
	deviationTime        int
	captureRatio         core.Fixed
	damagedSpeedRatio    core.Fixed
	damagedSpeedFactor   core.Fixed
	infantryPerCell      int
	wormKillLimit        int
	palaceRecharge       int
	deathHandFlight      int
	repairSpeed          core.Fixed
	repairCostPerHP      core.Fixed
	carryallDropDistance int
	syncInterval         int
	syncHistory          int
	underAttackCooldown  uint32
	startingCredits      core.Fixed
}

func newTunables(g config.GameRules) tunables {
	return tunables{
		fogTimeout:           g.FogTimeout,
		harvestSpeed:         core.FromFloat(g.HarvestSpeed),
		harvesterCapacity:    core.FromFloat(g.HarvesterCapacity),
		unloadSpeed:          core.FromFloat(g.HarvesterUnloadSpeed),
		spiceMin:             g.SpiceMin,
		spiceMax:             g.SpiceMax,
		thickMin:             g.ThickSpiceMin,
		thickMax:             g.ThickSpiceMax,
		thickThreshold:       core.FromFloat(g.ThickSpiceThreshold),
		spiceFieldRadius:     g.SpiceFieldRadius,
		buildRange:           g.BuildRange,
		maxAreaGuardRange:    g.MaxAreaGuardRange,
		repathDelay:          g.RepathDelay,
		maxPathNodes:         g.MaxPathNodes,
		deviationTime:        g.DeviationTime,
		captureRatio:         core.FromFloat(g.CaptureHealthRatio),
		damagedSpeedRatio:    core.FromFloat(g.DamagedSpeedRatio),
		damagedSpeedFactor:   core.FromFloat(g.DamagedSpeedFactor),
		infantryPerCell:      core.Max(g.InfantryPerCell, 1),
		wormKillLimit:        g.WormKillLimit,
		palaceRecharge:       g.PalaceRechargeTime,
		deathHandFlight:      core.Max(g.DeathHandFlightTime, 1),
		repairSpeed:          core.FromFloat(g.RepairSpeed),
		repairCostPerHP:      core.FromFloat(g.RepairCostPerHP),
		carryallDropDistance: g.CarryallDropDistance,
		syncInterval:         g.SyncInterval,
		syncHistory:          core.Max(g.SyncHistory, 1),
		underAttackCooldown:  uint32(g.UnderAttackCooldown),
		startingCredits:      core.FromInt(g.DefaultStartingCredit),
	}
}

// Options configure a new World.
type Options struct {
	Seed       uint32
	Width      int
	Height     int
	Rules      config.Rules
	Logger     *log.Logger
	Notifier   Notifier
	Footprints FootprintProvider
}

// World is the simulation context. It owns the map, the registry, the
// players, the random generator and the command log.
type World struct {
	rules config.Rules
	items *itemTable
	tun   tunables

	m        *Map
	reg      *Registry
	players  [MaxPlayers]*Player
	rng      *rng.Generator
	cmds     *command.Manager
	tick     uint32
	bullets  []*Bullet
	seeds    []uint32 // tick-start seeds, indexed by tick modulo len
	desync   *DesyncReport
	selected map[PlayerID]map[ObjectID]struct{}

	logger     *log.Logger
	notifier   Notifier
	footprints FootprintProvider
}

// New creates an empty world of sand.
func New(opts Options) (*World, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.Width > MaxMapSize || opts.Height > MaxMapSize {
		return nil, fmt.Errorf("sim: invalid map size %dx%d", opts.Width, opts.Height)
	}
	if opts.Rules.Items == nil {
		opts.Rules = config.DefaultRules()
	}
	items, err := buildItemTable(opts.Rules)
	if err != nil {
		return nil, err
	}
	w := &World{
		rules:    opts.Rules,
		items:    items,
		tun:      newTunables(opts.Rules.Game),
		m:        NewMap(opts.Width, opts.Height),
		reg:      newRegistry(),
		rng:      rng.New(opts.Seed),
		cmds:     command.NewManager(uint32(core.Max(opts.Rules.Game.CommandDelay, 0))),
		selected: make(map[PlayerID]map[ObjectID]struct{}),
		logger:   opts.Logger,
		notifier: opts.Notifier,
	}
	w.seeds = make([]uint32, w.tun.syncHistory)
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	if w.notifier == nil {
		w.notifier = discardNotifier{}
	}
	w.footprints = opts.Footprints
	if w.footprints == nil {
		w.footprints = rulesFootprints{items: items}
	}
	w.m.CreateSandRegions()
	return w, nil
}

// Map returns the terrain grid.
func (w *World) Map() *Map { return w.m }

// Registry returns the object registry.
func (w *World) Registry() *Registry { return w.reg }

// CurrentTick returns the number of completed ticks.
func (w *World) CurrentTick() uint32 { return w.tick }

// Seed returns the current random generator state.
func (w *World) Seed() uint32 { return w.rng.Seed() }

// Rules returns the rule set the world was created with.
func (w *World) Rules() config.Rules { return w.rules }

// Commands returns the command log.
func (w *World) Commands() *command.Manager { return w.cmds }

// Logger returns the world logger.
func (w *World) Logger() *log.Logger { return w.logger }

// SetNotifier replaces the notification sink.
func (w *World) SetNotifier(n Notifier) {
	if n == nil {
		n = discardNotifier{}
	}
	w.notifier = n
}

// Stats returns the statistics of an item type, or nil.
func (w *World) Stats(item ItemID) *ItemStats {
	return w.items.get(item)
}

// Object resolves id; nil when the object no longer exists.
func (w *World) Object(id ObjectID) *Object {
	return w.reg.Get(id)
}

// Objects returns every live object in registry order.
func (w *World) Objects() []*Object {
	out := make([]*Object, 0, w.reg.Len())
	w.reg.Each(func(o *Object) { out = append(out, o) })
	return out
}

// AddPlayer activates a player slot.
func (w *World) AddPlayer(id PlayerID, team int, credits int) (*Player, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("sim: invalid player %d", id)
	}
	if w.players[id] != nil {
		return nil, fmt.Errorf("sim: player %d already exists", id)
	}
	p := &Player{ID: id, Team: team, Credits: core.FromInt(credits)}
	if credits < 0 {
		p.Credits = w.tun.startingCredits
	}
	w.players[id] = p
	return p, nil
}

// Player returns an active player or nil.
func (w *World) Player(id PlayerID) *Player {
	if !id.Valid() {
		return nil
	}
	return w.players[id]
}

// Players returns the active players in slot order.
func (w *World) Players() []*Player {
	var out []*Player
	for _, p := range w.players {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// isEnemy reports whether a and b are on different teams.
func (w *World) isEnemy(a, b PlayerID) bool {
	pa, pb := w.Player(a), w.Player(b)
	if pa == nil || pb == nil {
		return a != b
	}
	return pa.Team != pb.Team
}

// Tick advances the world by one cycle: due commands are applied, every
// live object is updated in registry order, projectiles move and the
// clock advances.
func (w *World) Tick() {
	w.seeds[int(w.tick)%len(w.seeds)] = w.rng.Seed()

	w.cmds.Apply(w.tick, w)

	w.reg.Each(func(o *Object) {
		if !w.update(o) {
			w.Destroy(o.ID)
		}
	})

	w.updateBullets()
	w.tick++
}

// Run advances n ticks.
func (w *World) Run(n int) {
	for i := 0; i < n; i++ {
		w.Tick()
	}
}

// Issue schedules cmd for player after the command delay.
func (w *World) Issue(player PlayerID, cmd command.Command) error {
	if !player.Valid() {
		return fmt.Errorf("sim: invalid player %d", player)
	}
	if err := w.cmds.Add(w.tick, uint8(player), cmd); err != nil {
		w.logger.Warn("command rejected", "player", player, "cmd", cmd, "err", err)
		return err
	}
	return nil
}

// IssueAt schedules cmd for an explicit tick.
func (w *World) IssueAt(tick uint32, player PlayerID, cmd command.Command) error {
	if !player.Valid() {
		return fmt.Errorf("sim: invalid player %d", player)
	}
	return w.cmds.AddAt(tick, uint8(player), cmd)
}

func (w *World) notify(kind NotificationKind, player PlayerID, o *Object) {
	n := Notification{Kind: kind, Tick: w.tick, Player: player, Pos: core.Invalid()}
	if o != nil {
		n.Object = o.ID
		n.Item = o.Item
		n.Pos = o.Location
	}
	w.notifier.Notify(n)
}
