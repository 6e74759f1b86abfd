package sim

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/vovakirdan/dunesim/internal/command"
	"github.com/vovakirdan/dunesim/internal/core"
	"github.com/vovakirdan/dunesim/internal/stream"
)

// battle sets up two small armies in hunt mode on a mixed map.
func battle(t *testing.T) *World {
	t.Helper()
	w := newTestWorld(t, 24, 16)
	fill(w, TerrainRock)
	for y := 0; y < 16; y++ {
		w.Map().Tile(core.C(12, y)).Terrain = TerrainSand
	}
	w.SetSpice(core.C(11, 3), false, 120)
	w.Map().CreateSandRegions()

	mustCreate(t, w, ItemConstructionYard, 0, core.C(1, 1))
	mustCreate(t, w, ItemConstructionYard, 1, core.C(21, 13))
	for i, item := range []ItemID{ItemTank, ItemTrike, ItemSoldier, ItemLauncher} {
		a := mustCreate(t, w, item, 0, core.C(4, 2+2*i))
		b := mustCreate(t, w, item, 1, core.C(19, 2+2*i))
		a.Mode = ModeHunt
		b.Mode = ModeHunt
	}
	mustCreate(t, w, ItemHarvester, 0, core.C(10, 3))

	// both sides start with the whole map in sight
	w.ViewMap(0, core.C(12, 8), 16)
	w.ViewMap(1, core.C(12, 8), 16)
	return w
}

func TestDeterminism(t *testing.T) {
	a, b := battle(t), battle(t)
	for i := 0; i < 400; i++ {
		a.Tick()
		b.Tick()
	}
	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Fatal("two worlds with the same seed and input diverged")
	}
	if a.Hash() != b.Hash() {
		t.Error("state hashes differ")
	}
	if a.Seed() != b.Seed() {
		t.Errorf("seeds differ: %d vs %d", a.Seed(), b.Seed())
	}
	checkGrid(t, a)
}

func TestBattleProgresses(t *testing.T) {
	w := battle(t)
	start := w.Snapshot()
	w.Run(600)
	end := w.Snapshot()

	damaged := false
	for _, o := range end.Objects {
		if o.Health < w.Object(o.ID).MaxHealth {
			damaged = true
			break
		}
	}
	if !damaged && len(end.Objects) == len(start.Objects) {
		t.Error("hunting armies never fought")
	}
	checkGrid(t, w)
}

func TestDestroyClearsGrid(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	fill(w, TerrainRock)
	s := mustCreate(t, w, ItemRefinery, 0, core.C(2, 2))
	u := mustCreate(t, w, ItemSoldier, 1, core.C(3, 3))
	checkGrid(t, w)

	if !w.Destroy(s.ID) {
		t.Fatal("Destroy() = false for a live structure")
	}
	if w.Destroy(s.ID) {
		t.Error("Destroy() = true for a destroyed structure")
	}
	if w.Object(s.ID) != nil {
		t.Error("destroyed id still resolves")
	}
	checkGrid(t, w)
	if w.GroundObject(core.C(2, 2)) != nil {
		t.Error("structure tile still occupied")
	}
	if w.GroundObject(core.C(3, 3)) != u {
		t.Error("infantry lost its tile when the structure died")
	}
}

func TestCommandValidation(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	tank := mustCreate(t, w, ItemTank, 0, core.C(1, 1))

	err := w.Issue(0, command.Command{Opcode: command.OpUnitMove2Pos, Params: []uint32{uint32(tank.ID), 5}})
	if !errors.Is(err, command.ErrInvalidCommand) {
		t.Errorf("Issue() error = %v, expected ErrInvalidCommand", err)
	}
	if w.Commands().Pending() != 0 {
		t.Errorf("Pending() = %d after a rejected command", w.Commands().Pending())
	}

	// malformed commands reaching Execute directly mutate nothing
	w.Execute(0, command.Command{Opcode: command.OpUnitSetMode, Params: []uint32{uint32(tank.ID)}})
	if tank.Mode != ModeGuard {
		t.Errorf("mode = %s after an invalid command, expected guard", tank.Mode)
	}
}

func TestCommandOwnership(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	fill(w, TerrainRock)
	tank := mustCreate(t, w, ItemTank, 0, core.C(1, 1))

	if err := w.Issue(1, command.Must(command.OpUnitMove2Pos, uint32(tank.ID), 8, 8, 0)); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if err := w.Issue(0, command.Must(command.OpUnitSetMode, uint32(ObjectID(9999)), uint32(ModeHunt))); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	w.Run(5)
	if tank.Destination != tank.Location {
		t.Errorf("enemy command moved the tank to %v", tank.Destination)
	}

	if err := w.Issue(0, command.Must(command.OpUnitMove2Pos, uint32(tank.ID), 3, 1, 0)); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	w.Run(200)
	if tank.Location != core.C(3, 1) {
		t.Errorf("tank at %v, expected (3,1)", tank.Location)
	}
	if tank.Real != TileCenter(core.C(3, 1)) {
		t.Errorf("tank real position %v not at the tile center", tank.Real)
	}
}

func TestCommandsApplyInOrder(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	tank := mustCreate(t, w, ItemTank, 0, core.C(1, 1))
	w.Issue(0, command.Must(command.OpUnitSetMode, uint32(tank.ID), uint32(ModeHunt)))
	w.Issue(0, command.Must(command.OpUnitSetMode, uint32(tank.ID), uint32(ModeAmbush)))

	w.Run(int(w.Commands().Delay()))
	if tank.Mode != ModeGuard {
		t.Errorf("mode = %s before the scheduled tick, expected guard", tank.Mode)
	}
	w.Tick()
	if tank.Mode != ModeAmbush {
		t.Errorf("mode = %s, expected the later command to win", tank.Mode)
	}
}

func TestHarvestRoundTrip(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	c := core.C(5, 5)
	w.SetSpice(c, false, 100)
	h := mustCreate(t, w, ItemHarvester, 0, c)

	before := w.TotalSpice()
	w.Run(400)

	removed := before - w.TotalSpice()
	if removed != h.Harvest.Spice {
		t.Errorf("spice removed = %v, harvester holds %v", removed, h.Harvest.Spice)
	}
	if removed != core.FromInt(100) {
		t.Errorf("spice removed = %v, expected the whole field", removed)
	}
	if tt := w.Map().Tile(c).Terrain; tt != TerrainSand {
		t.Errorf("exhausted tile = %s, expected sand", tt)
	}
}

func TestHarvesterUnloadsAtRefinery(t *testing.T) {
	w := newTestWorld(t, 12, 8)
	w.Player(0).Credits = 0
	mustCreate(t, w, ItemRefinery, 0, core.C(2, 2))
	w.SetSpice(core.C(6, 3), false, 700)
	h := mustCreate(t, w, ItemHarvester, 0, core.C(6, 3))
	w.tun.harvesterCapacity = core.FromInt(50)

	w.Run(500)
	p := w.Player(0)
	if p.Credits < core.FromInt(50) {
		t.Errorf("credits = %v, expected at least one full load", p.Credits)
	}
	if p.Stats.SpiceHarvested != p.Credits {
		t.Errorf("harvested %v but credits are %v", p.Stats.SpiceHarvested, p.Credits)
	}
	if h.Harvest.Refinery == NoObject {
		t.Error("harvester never picked a refinery")
	}
}

func TestCaptureFlow(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	fill(w, TerrainRock)
	barracks := mustCreate(t, w, ItemBarracks, 1, core.C(8, 8))
	barracks.Builder.Queue = []ProductionItem{{Item: ItemSoldier, Paid: core.FromInt(30)}}
	barracks.Builder.Progress = 50
	barracks.Builder.OnHold = true
	barracks.Health = barracks.MaxHealth / 5

	waiting := mustCreate(t, w, ItemSoldier, 0, core.C(9, 9))
	waiting.Mode = ModeStop
	inf := mustCreate(t, w, ItemSoldier, 0, core.C(8, 5))

	if err := w.Issue(0, command.Must(command.OpInfantryCapture, uint32(inf.ID), uint32(barracks.ID))); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	w.Run(400)

	if w.Object(barracks.ID) != barracks {
		t.Fatal("captured structure changed identity")
	}
	if barracks.Owner != 0 {
		t.Fatalf("owner = %d, expected 0", barracks.Owner)
	}
	if len(barracks.Builder.Queue) != 1 || barracks.Builder.Progress != 50 {
		t.Errorf("production state lost: queue %v, progress %d", barracks.Builder.Queue, barracks.Builder.Progress)
	}
	if w.Object(inf.ID) != nil || w.Object(waiting.ID) != nil {
		t.Error("capturing infantry survived")
	}
	for _, c := range barracks.Footprint().Cells() {
		if n := w.Map().Tile(c).InfantryCount(); n != 0 {
			t.Errorf("%d infantry left on %v", n, c)
		}
		if owner := w.Map().Tile(c).Owner; owner != 0 {
			t.Errorf("tile %v owner = %d, expected 0", c, owner)
		}
	}
	checkGrid(t, w)
}

func TestCaptureHealthyStructureConsumesInfantry(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	fill(w, TerrainRock)
	silo := mustCreate(t, w, ItemSilo, 1, core.C(8, 8))
	inf := mustCreate(t, w, ItemSoldier, 0, core.C(8, 6))

	w.Issue(0, command.Must(command.OpInfantryCapture, uint32(inf.ID), uint32(silo.ID)))
	w.Run(400)

	if silo.Owner != 1 {
		t.Errorf("owner = %d, expected the structure to hold", silo.Owner)
	}
	if silo.Health >= silo.MaxHealth {
		t.Error("structure took no damage")
	}
	if w.Object(inf.ID) != nil {
		t.Error("infantry survived")
	}
}

func TestDeviationReverts(t *testing.T) {
	w := newTestWorld(t, 12, 12)
	fill(w, TerrainRock)
	tank := mustCreate(t, w, ItemTank, 0, core.C(1, 1))
	tank.Mode = ModeStop
	tank.setDestination(core.C(10, 10))
	id := tank.ID

	if !w.DeviateFor(tank, 1, 10) {
		t.Fatal("DeviateFor() = false")
	}
	w.Run(9)
	if tank.Owner != 1 {
		t.Fatalf("owner = %d after 9 ticks, expected 1", tank.Owner)
	}
	w.Tick()
	if tank.Owner != 0 {
		t.Errorf("owner = %d after 10 ticks, expected 0", tank.Owner)
	}
	if tank.ID != id || w.Object(id) != tank {
		t.Error("deviation changed the object id")
	}
	if tank.Destination != core.C(10, 10) {
		t.Errorf("destination = %v, expected (10,10)", tank.Destination)
	}
	if tank.Deviation != nil {
		t.Error("deviation block not cleared")
	}
}

func TestDeviatorBullet(t *testing.T) {
	w := newTestWorld(t, 12, 12)
	tank := mustCreate(t, w, ItemTank, 1, core.C(5, 5))
	w.Damage(NoObject, 0, TileCenter(tank.Location), BulletDeviator, 0, core.FromInt(32), false)
	if tank.Owner != 0 || tank.OriginalOwner != 1 {
		t.Errorf("owner %d, original %d, expected 0 and 1", tank.Owner, tank.OriginalOwner)
	}
	if tank.Health != tank.MaxHealth {
		t.Error("deviator hit did damage")
	}
}

func TestDamageFallsOff(t *testing.T) {
	w := newTestWorld(t, 12, 12)
	near := mustCreate(t, w, ItemTank, 1, core.C(5, 5))
	far := mustCreate(t, w, ItemTank, 1, core.C(8, 5))
	w.Damage(NoObject, 0, TileCenter(near.Location), BulletShell, core.FromInt(40), core.FromInt(16), false)

	if got := near.MaxHealth - near.Health; got != core.FromInt(40) {
		t.Errorf("direct hit damage = %v, expected 40", got)
	}
	if far.Health != far.MaxHealth {
		t.Error("tank outside the blast took damage")
	}
}

func TestRocketCracksSlab(t *testing.T) {
	w := newTestWorld(t, 6, 6)
	c := core.C(2, 2)
	w.Map().Tile(c).Terrain = TerrainSlab
	w.Map().Tile(c).Owner = 0
	w.Damage(NoObject, 1, TileCenter(c), BulletRocket, core.FromInt(10), core.FromInt(24), false)
	if tile := w.Map().Tile(c); tile.Terrain != TerrainRock || tile.Owner != NoPlayer {
		t.Errorf("slab after rocket = %s owned by %d, expected unowned rock", tile.Terrain, tile.Owner)
	}
}

func TestBloomIgnites(t *testing.T) {
	w := newTestWorld(t, 20, 20)
	c := core.C(10, 10)
	w.Map().Tile(c).Terrain = TerrainSpiceBloom
	notes := NewChannelNotifier(8)
	w.SetNotifier(notes)

	w.Damage(NoObject, 0, TileCenter(c), BulletSmall, core.FromInt(5), core.FromInt(8), false)
	if tt := w.Map().Tile(c).Terrain; tt != TerrainThickSpice {
		t.Errorf("bloom center = %s, expected thick_spice", tt)
	}
	if w.TotalSpice() == 0 {
		t.Error("no spice field was created")
	}
	select {
	case n := <-notes.C:
		if n.Kind != NoteSpiceBloomIgnited {
			t.Errorf("notification = %s, expected spice bloom ignited", n.Kind)
		}
	default:
		t.Error("no notification sent")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	w := battle(t)
	w.Run(120)

	var buf bytes.Buffer
	if err := w.Save(stream.NewWriter(&buf)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(stream.NewReader(bytes.NewReader(buf.Bytes())), Options{Rules: w.Rules()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Hash() != w.Hash() {
		t.Fatal("hash changed across save and load")
	}
	checkGrid(t, loaded)

	w.Run(200)
	loaded.Run(200)
	if loaded.Hash() != w.Hash() {
		t.Error("loaded world diverged from the original")
	}
}

func TestLoadRejectsCorruptData(t *testing.T) {
	w := battle(t)
	var buf bytes.Buffer
	w.Save(stream.NewWriter(&buf))
	data := buf.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated", data[:len(data)/2]},
		{"bad magic", append([]byte{1, 2, 3, 4}, data[4:]...)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(stream.NewReader(bytes.NewReader(tc.data)), Options{Rules: w.Rules()})
			if !errors.Is(err, stream.ErrCorrupt) {
				t.Errorf("Load() error = %v, expected ErrCorrupt", err)
			}
		})
	}
}

func TestDesyncDetection(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	w.Run(3)

	if err := w.Issue(0, w.SyncCommand()); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	w.Run(5)
	if d := w.Desync(); d != nil {
		t.Fatalf("Desync() = %+v for a matching seed", d)
	}

	seed := w.Seed()
	bad := seed + 1
	w.Issue(1, command.Must(command.OpTestSync, bad, w.CurrentTick()))
	w.Issue(1, command.Must(command.OpTestSync, bad+1, w.CurrentTick()))
	w.Run(5)
	d := w.Desync()
	if d == nil {
		t.Fatal("Desync() = nil after a mismatching seed")
	}
	if d.Expected != bad || d.Actual != seed || d.Player != 1 {
		t.Errorf("report = %+v, expected first mismatch from player 1", d)
	}
}

func TestOkayToPlaceStructure(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	fill(w, TerrainRock)
	mustCreate(t, w, ItemConstructionYard, 0, core.C(2, 2))
	w.Map().Tile(core.C(2, 6)).Terrain = TerrainMountain
	w.Map().Tile(core.C(6, 6)).Terrain = TerrainSand
	mustCreate(t, w, ItemTank, 1, core.C(2, 9))

	tests := []struct {
		name     string
		x, y     int
		ignore   bool
		expected bool
	}{
		{"next to the yard", 4, 2, false, true},
		{"edge of build range", 5, 2, false, true},
		{"out of range", 6, 2, false, false},
		{"on mountain", 2, 5, false, false},
		{"on sand", 5, 5, false, false},
		{"on the yard", 3, 3, false, false},
		{"off the map", 15, 3, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := w.OkayToPlaceStructure(tc.x, tc.y, 2, 2, 0, tc.ignore); got != tc.expected {
				t.Errorf("OkayToPlaceStructure(%d,%d) = %v, expected %v", tc.x, tc.y, got, tc.expected)
			}
		})
	}

	// a unit blocks unless units are ignored
	w.Map().Tile(core.C(2, 7)).Owner = 1
	if w.OkayToPlaceStructure(2, 8, 2, 2, 1, false) {
		t.Error("placement on a unit allowed")
	}
	if !w.OkayToPlaceStructure(2, 8, 2, 2, 1, true) {
		t.Error("placement on a unit refused with ignoreUnits")
	}
}

func TestFindDeploySpot(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	fill(w, TerrainRock)
	factory := mustCreate(t, w, ItemLightFactory, 0, core.C(6, 6))
	origin := factory.Location
	size := core.C(2, 2)

	spot := w.FindDeploySpot(ItemTrike, origin, core.Invalid(), size)
	if !spot.IsValid() {
		t.Fatal("FindDeploySpot() = invalid on an open map")
	}
	if factory.Footprint().Contains(spot) || factory.ClosestPoint(spot).Chebyshev(spot) != 1 {
		t.Errorf("spot %v is not next to the factory", spot)
	}

	gather := core.C(14, 7)
	if spot := w.FindDeploySpot(ItemTrike, origin, gather, size); spot.X != 8 {
		t.Errorf("spot with gather point = %v, expected the right edge", spot)
	}

	if spot := w.FindDeploySpot(ItemCarryall, origin, core.Invalid(), size); spot != origin {
		t.Errorf("flying spot = %v, expected origin", spot)
	}

	blocked := newTestWorld(t, 4, 4)
	fill(blocked, TerrainMountain)
	if spot := blocked.FindDeploySpot(ItemTrike, core.C(1, 1), core.Invalid(), core.C(0, 0)); spot.IsValid() {
		t.Errorf("FindDeploySpot() on mountains = %v, expected invalid", spot)
	}
}

func TestFindTargetWallBias(t *testing.T) {
	w := newTestWorld(t, 20, 20)
	fill(w, TerrainRock)
	tank := mustCreate(t, w, ItemTank, 0, core.C(5, 5))
	wall := mustCreate(t, w, ItemWall, 1, core.C(6, 5))
	wall.visible = 0xff

	if got := w.findTarget(tank); got != wall {
		t.Errorf("findTarget() = %v, expected the wall when alone", got)
	}

	enemy := mustCreate(t, w, ItemTank, 1, core.C(8, 5))
	enemy.visible = 0xff
	if got := w.findTarget(tank); got != enemy {
		t.Errorf("findTarget() = %v, expected the tank over a nearer wall", got)
	}

	tank.Mode = ModeStop
	if got := w.findTarget(tank); got != nil {
		t.Errorf("findTarget() in stop mode = %v, expected nil", got)
	}

	tank.Mode = ModeHunt
	far := mustCreate(t, w, ItemSilo, 1, core.C(18, 18))
	far.visible = 0xff
	enemy.visible = 0
	wall.visible = 0
	if got := w.findTarget(tank); got != far {
		t.Errorf("hunt target = %v, expected the distant silo", got)
	}
}

func TestProduction(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	fill(w, TerrainRock)
	factory := mustCreate(t, w, ItemLightFactory, 0, core.C(6, 6))
	p := w.Player(0)
	start := p.Credits

	if err := w.Issue(0, command.Must(command.OpBuilderProduceItem, uint32(factory.ID), uint32(ItemTrike), 0)); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if err := w.Issue(0, command.Must(command.OpBuilderProduceItem, uint32(factory.ID), uint32(ItemTank), 0)); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	st := w.Stats(ItemTrike)
	w.Run(st.BuildTime + 10)

	var trikes int
	for _, o := range w.Objects() {
		if o.Item == ItemTrike && o.Owner == 0 {
			trikes++
		}
		if o.Item == ItemTank {
			t.Error("factory built an item it cannot produce")
		}
	}
	if trikes != 1 {
		t.Fatalf("%d trikes built, expected 1", trikes)
	}
	if spent := start - p.Credits; spent != st.Price {
		t.Errorf("spent %v, expected %v", spent, st.Price)
	}
	if p.Stats.UnitsBuilt != 1 {
		t.Errorf("UnitsBuilt = %d, expected 1", p.Stats.UnitsBuilt)
	}
}

func TestConstructionAndPlacement(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	fill(w, TerrainRock)
	yard := mustCreate(t, w, ItemConstructionYard, 0, core.C(2, 2))
	w.ProduceItem(yard, ItemWindTrap, false)
	w.Run(w.Stats(ItemWindTrap).BuildTime + 1)

	if yard.Builder.Ready != ItemWindTrap {
		t.Fatalf("Ready = %s, expected wind_trap", yard.Builder.Ready)
	}
	if _, err := w.PlaceStructure(yard, ItemWindTrap, core.C(10, 10)); err == nil {
		t.Error("PlaceStructure() out of build range succeeded")
	}
	s, err := w.PlaceStructure(yard, ItemWindTrap, core.C(4, 2))
	if err != nil {
		t.Fatalf("PlaceStructure() error = %v", err)
	}
	if s.Owner != 0 || w.Map().Tile(core.C(5, 3)).Owner != 0 {
		t.Error("placed structure does not own its footprint")
	}
	if yard.Builder.Ready != ItemNone {
		t.Error("Ready not cleared after placement")
	}
	checkGrid(t, w)
}

func TestCancelRefunds(t *testing.T) {
	w := newTestWorld(t, 16, 16)
	fill(w, TerrainRock)
	factory := mustCreate(t, w, ItemLightFactory, 0, core.C(6, 6))
	p := w.Player(0)
	start := p.Credits

	w.ProduceItem(factory, ItemQuad, true)
	w.Run(20)
	if p.Credits >= start {
		t.Fatal("production took no money")
	}
	if !w.CancelItem(factory, ItemQuad, true) {
		t.Fatal("CancelItem() = false")
	}
	if p.Credits != start {
		t.Errorf("credits = %v after cancel, expected %v", p.Credits, start)
	}
	if len(factory.Builder.Queue) != 0 {
		t.Errorf("queue length = %d, expected 0", len(factory.Builder.Queue))
	}
}

func TestSandwormEatsInRegion(t *testing.T) {
	w := newTestWorld(t, 16, 8)
	if _, err := w.AddPlayer(2, 2, 0); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 8; y++ {
		w.Map().Tile(core.C(8, y)).Terrain = TerrainRock
	}
	w.Map().CreateSandRegions()

	worm := mustCreate(t, w, ItemSandworm, 2, core.C(2, 3))
	prey := mustCreate(t, w, ItemTrike, 0, core.C(5, 3))
	safe := mustCreate(t, w, ItemTrike, 1, core.C(11, 3))
	prey.Mode = ModeStop
	safe.Mode = ModeStop

	w.Run(400)
	if w.Object(prey.ID) != nil {
		t.Error("worm did not eat the trike in its region")
	}
	if w.Object(safe.ID) == nil {
		t.Error("worm crossed rock to eat a trike")
	}
	if worm.Worm.Kills != 1 {
		t.Errorf("kills = %d, expected 1", worm.Worm.Kills)
	}
}

func TestCarryallDelivers(t *testing.T) {
	w := newTestWorld(t, 20, 20)
	fill(w, TerrainRock)
	carryall := mustCreate(t, w, ItemCarryall, 0, core.C(1, 1))
	tank := mustCreate(t, w, ItemTank, 0, core.C(3, 3))
	tank.Mode = ModeStop

	notes := NewChannelNotifier(64)
	w.SetNotifier(notes)
	if err := w.Issue(0, command.Must(command.OpUnitRequestCarryallDrop, uint32(tank.ID), 16, 16)); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	w.Run(600)

	if tank.InTransport() {
		t.Fatal("tank still in transport")
	}
	if d := tank.Location.Chebyshev(core.C(16, 16)); d > 1 {
		t.Errorf("tank dropped at %v, expected near (16,16)", tank.Location)
	}
	if carryall.Carrier.Job != JobIdle {
		t.Errorf("carryall job = %d, expected idle", carryall.Carrier.Job)
	}
	checkGrid(t, w)

	delivered := false
	for len(notes.C) > 0 {
		if n := <-notes.C; n.Kind == NoteCarryallDelivered {
			delivered = true
		}
	}
	if !delivered {
		t.Error("no delivery notification")
	}
}

func TestSelectionPrunesDestroyed(t *testing.T) {
	w := newTestWorld(t, 8, 8)
	a := mustCreate(t, w, ItemTrike, 0, core.C(1, 1))
	b := mustCreate(t, w, ItemTrike, 0, core.C(2, 2))
	enemy := mustCreate(t, w, ItemTrike, 1, core.C(3, 3))

	w.Select(0, a.ID, b.ID, enemy.ID)
	w.Destroy(a.ID)
	got := w.Selection(0)
	if len(got) != 1 || got[0] != b.ID {
		t.Errorf("Selection() = %v, expected [%v]", got, b.ID)
	}
}

func TestLoadRejectsMisplacedObjects(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(w *World, o *Object)
	}{
		{"off the map", func(w *World, o *Object) {
			w.unplace(o)
			o.Location = core.C(500, 500)
		}},
		{"missing from its tile", func(w *World, o *Object) {
			w.unplace(o)
		}},
		{"path leaves the map", func(w *World, o *Object) {
			o.Mobile.Path = []core.Coord{core.C(6, 5), core.C(-1, 5)}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld(t, 10, 10)
			h := mustCreate(t, w, ItemHarvester, 0, core.C(5, 5))
			tc.corrupt(w, h)
			data, err := w.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary() error = %v", err)
			}
			if _, err := Decode(data, Options{Rules: w.Rules()}); !errors.Is(err, stream.ErrCorrupt) {
				t.Errorf("Decode() error = %v, expected ErrCorrupt", err)
			}
		})
	}
}

func TestMapSizeIsBounded(t *testing.T) {
	if _, err := New(Options{Width: MaxMapSize, Height: MaxMapSize}); err != nil {
		t.Errorf("New() at the size limit error = %v", err)
	}
	if _, err := New(Options{Width: MaxMapSize + 1, Height: 4}); err == nil {
		t.Error("New() past the size limit succeeded")
	}

	// the longest distance on the largest map must not wrap
	a := TileCenter(core.C(0, 0))
	b := TileCenter(core.C(MaxMapSize-1, MaxMapSize-1))
	d := a.Distance(b)
	side := core.FromInt((MaxMapSize - 1) * TileSize)
	if d <= side || d >= side*2 {
		t.Errorf("diagonal distance = %v, expected between %v and %v", d, side, side*2)
	}
}

func TestDestroyedCarryallReleasesHarvester(t *testing.T) {
	w := newTestWorld(t, 30, 10)
	fill(w, TerrainRock)
	w.Player(0).Credits = 0
	mustCreate(t, w, ItemRefinery, 0, core.C(1, 1))
	carryall := mustCreate(t, w, ItemCarryall, 0, core.C(2, 5))
	h := mustCreate(t, w, ItemHarvester, 0, core.C(27, 5))
	h.Harvest.Spice = core.FromInt(100)
	h.Harvest.State = HarvestReturn

	w.Tick()
	if carryall.Carrier.Job != JobPickup || carryall.Carrier.Client != h.ID {
		t.Fatalf("carryall job %d client %v, expected a pickup of the harvester", carryall.Carrier.Job, carryall.Carrier.Client)
	}
	if !h.Mobile.AwaitingPickup {
		t.Fatal("harvester is not waiting for the carryall")
	}

	w.Destroy(carryall.ID)
	if h.Mobile.AwaitingPickup {
		t.Error("harvester still waiting after its carryall was destroyed")
	}
	w.Run(2000)
	if got := w.Player(0).Credits; got != core.FromInt(100) {
		t.Errorf("credits = %v, expected the harvester to drive home and unload 100", got)
	}
}

func TestStalePickupRequestClears(t *testing.T) {
	w := newTestWorld(t, 10, 10)
	tank := mustCreate(t, w, ItemTank, 0, core.C(5, 5))
	tank.Mode = ModeStop
	tank.Mobile.AwaitingPickup = true

	w.Tick()
	if tank.Mobile.AwaitingPickup {
		t.Error("AwaitingPickup kept with no carryall assigned")
	}
}

func TestDeviationCountsDownInTransport(t *testing.T) {
	w := newTestWorld(t, 12, 12)
	fill(w, TerrainRock)
	tank := mustCreate(t, w, ItemTank, 0, core.C(1, 1))
	tank.Mode = ModeStop
	if !w.DeviateFor(tank, 1, 10) {
		t.Fatal("DeviateFor() = false")
	}
	w.unplace(tank)
	tank.Mobile.InTransport = true

	w.Run(10)
	if tank.Owner != 0 {
		t.Errorf("owner = %d after 10 ticks in transport, expected 0", tank.Owner)
	}
	if tank.Deviation != nil {
		t.Error("deviation block not cleared while carried")
	}
}
