package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/dunesim/internal/core"
	"github.com/vovakirdan/dunesim/internal/scenario/formats"
	"github.com/vovakirdan/dunesim/internal/sim"
)

const duel = `
id: duel
name: Duel
seed: 11
ticks: 50
map:
  - "####......"
  - "####..ss.."
  - "####......"
players:
  - {id: 0, team: 0, credits: 300}
  - {id: 1, team: 1}
objects:
  - {name: yard, item: construction_yard, owner: 0, at: [0, 0]}
  - {name: tank, item: tank, owner: 0, at: [2, 2], health: 0.5}
  - {item: trike, owner: 1, at: [9, 2], mode: stop}
commands:
  - {tick: 1, player: 0, op: UnitMove2Pos, args: ["@tank", 5, 0, 1]}
`

func parse(t *testing.T, src string) *Definition {
	t.Helper()
	def, err := formats.ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	return FromFormat(def)
}

func TestDefinitionSetup(t *testing.T) {
	d := parse(t, duel)
	info := d.Info()
	if info.Width != 10 || info.Height != 3 || info.Ticks != 50 || info.Seed != 11 {
		t.Fatalf("Info() = %+v", info)
	}

	w, err := NewWorld(d, sim.Options{})
	if err != nil {
		t.Fatalf("NewWorld() error = %v", err)
	}
	if tt := w.Map().Tile(core.C(1, 1)).Terrain; tt != sim.TerrainRock {
		t.Errorf("terrain at (1,1) = %s, expected rock", tt)
	}
	if w.Map().Tile(core.C(6, 1)).Spice <= 0 {
		t.Error("spice tile has no spice")
	}
	if w.Player(0).Credits != core.FromInt(300) {
		t.Errorf("credits = %v, expected 300", w.Player(0).Credits)
	}
	if w.Player(1).Credits != core.FromInt(w.Rules().Game.DefaultStartingCredit) {
		t.Errorf("default credits = %v", w.Player(1).Credits)
	}

	tank := w.GroundObject(core.C(2, 2))
	if tank == nil || tank.Item != sim.ItemTank {
		t.Fatalf("no tank at (2,2)")
	}
	if tank.Health != tank.MaxHealth/2 {
		t.Errorf("tank health = %v, expected half of %v", tank.Health, tank.MaxHealth)
	}
	if trike := w.GroundObject(core.C(9, 2)); trike == nil || trike.Mode != sim.ModeStop {
		t.Error("trike missing or not in stop mode")
	}

	w.Run(info.Ticks)
	if tank.Destination != core.C(5, 0) {
		t.Errorf("scripted move not applied: destination %v", tank.Destination)
	}
}

func TestSetupRejectsWrongSize(t *testing.T) {
	d := parse(t, duel)
	w, err := sim.New(sim.Options{Width: 4, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Setup(w); err == nil {
		t.Error("Setup() on a mis-sized world succeeded")
	}
}

func TestRegistry(t *testing.T) {
	d := parse(t, duel)
	id := "registry-test-duel"
	Register(id, func() Scenario { return d })

	if !Exists(id) {
		t.Fatal("Exists() = false after Register")
	}
	s, err := Create(id)
	if err != nil || s.Title() != "Duel" {
		t.Errorf("Create() = %v, %v", s, err)
	}
	if _, err := Create("no-such-scenario"); err == nil {
		t.Error("Create() of an unknown id succeeded")
	}

	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Errorf("List() not sorted: %s >= %s", list[i-1].ID, list[i].ID)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	Register(id, func() Scenario { return d })
}

func TestLoader(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("b.yaml", duel)
	write("a.yml", "id: aaa-loader\nmap: [\"..\"]\nplayers: [{id: 0, team: 0}]\n")
	write("broken.yaml", "id: [")
	write("notes.txt", "not a scenario")

	l := NewLoader(dir)
	defs, err := l.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(defs) != 2 || defs[0].ID() != "aaa-loader" || defs[1].ID() != "duel" {
		t.Fatalf("LoadAll() = %d definitions, expected aaa-loader and duel", len(defs))
	}

	if _, err := l.LoadByID("duel"); err != nil {
		t.Errorf("LoadByID() error = %v", err)
	}
	if _, err := l.LoadByID("missing"); err == nil {
		t.Error("LoadByID() of a missing id succeeded")
	}

	added, err := l.RegisterAll()
	if err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}
	if len(added) != 2 || !Exists("aaa-loader") {
		t.Errorf("RegisterAll() added %v", added)
	}
	again, _ := l.RegisterAll()
	if len(again) != 0 {
		t.Errorf("second RegisterAll() added %v", again)
	}
}
