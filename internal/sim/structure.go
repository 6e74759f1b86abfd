package sim

import (
	"fmt"

	"github.com/vovakirdan/dunesim/internal/core"
)

// multipleCount is how many items a "multiple" production order queues.
const multipleCount = 5

func (w *World) updateStructure(o *Object) {
	s := o.Structure
	if o.Weapon != nil {
		w.updateTurret(o)
	}
	if s.Repairing {
		w.repair(o)
	}
	if o.Item == ItemPalace && s.SpecialCharge < w.tun.palaceRecharge {
		s.SpecialCharge++
	}
	if o.Builder != nil {
		w.produce(o)
	}
}

// updateTurret aims and fires a defensive structure.
func (w *World) updateTurret(o *Object) {
	wp := o.Weapon
	if wp.Counter > 0 {
		wp.Counter--
	}
	if o.Target != NoObject {
		t := w.reg.Get(o.Target)
		if t == nil || !w.canAttack(o, t) ||
			blockDistance(o.Location, t.ClosestPoint(o.Location)) > core.FromInt(wp.Range) {
			o.Target = NoObject
			o.ForcedTarget = false
		}
	}
	if o.Target == NoObject {
		if t := w.findTarget(o); t != nil &&
			blockDistance(o.Location, t.ClosestPoint(o.Location)) <= core.FromInt(wp.Range) {
			o.Target = t.ID
		}
	}
	t := w.reg.Get(o.Target)
	if t == nil {
		return
	}
	c := t.ClosestPoint(o.Location)
	if w.turnTowards(o, direction(o.Location, c)) && wp.Counter == 0 {
		w.fire(o, c, t)
	}
}

func (w *World) repair(o *Object) {
	s := o.Structure
	p := w.Player(o.Owner)
	if p == nil || o.Health >= o.MaxHealth {
		s.Repairing = false
		return
	}
	heal := core.MinF(w.tun.repairSpeed, o.MaxHealth-o.Health)
	cost := heal.Mul(w.tun.repairCostPerHP)
	if p.Credits < cost {
		s.Repairing = false
		return
	}
	p.Credits -= cost
	o.Health += heal
	if o.Health >= o.MaxHealth {
		s.Repairing = false
	}
}

// produce pays for and advances the head of the build queue. Money is
// taken in equal slices every tick; production stalls while the player
// cannot pay or a finished structure waits to be placed.
func (w *World) produce(o *Object) {
	b := o.Builder
	if b.OnHold || b.Ready != ItemNone || len(b.Queue) == 0 {
		return
	}
	head := &b.Queue[0]
	st := w.items.get(head.Item)
	p := w.Player(o.Owner)
	if st == nil || p == nil {
		b.Queue = b.Queue[1:]
		b.Progress = 0
		return
	}

	if b.Progress < st.BuildTime {
		step := st.Price.Div(core.FromInt(st.BuildTime))
		if b.Progress == st.BuildTime-1 {
			step = st.Price - head.Paid
		}
		if p.Credits < step {
			return
		}
		p.Credits -= step
		head.Paid += step
		b.Progress++
		if b.Progress < st.BuildTime {
			return
		}
	}

	if st.Kind == KindStructure {
		b.Ready = head.Item
		b.Queue = b.Queue[1:]
		b.Progress = 0
		w.notify(NoteConstructionComplete, o.Owner, o)
		return
	}
	if w.deployUnit(o, head.Item) != nil {
		b.Queue = b.Queue[1:]
		b.Progress = 0
	}
}

// deployUnit puts a freshly built unit next to its factory. When no tile
// is free it returns nil and the factory tries again next tick.
func (w *World) deployUnit(factory *Object, item ItemID) *Object {
	s := factory.Structure
	size := core.C(s.Width, s.Height)
	spot := w.FindDeploySpot(item, factory.Location, s.DeployPoint, size)
	if !spot.IsValid() {
		return nil
	}
	u, err := w.CreateObject(item, factory.Owner, spot)
	if err != nil {
		w.logger.Error("deploy failed", "factory", factory.ID, "item", item, "err", err)
		return nil
	}
	if u.Carrier != nil {
		u.Carrier.Home = factory.ID
	}
	if s.DeployPoint.IsValid() && u.Harvest == nil && u.Carrier == nil {
		u.setDestination(s.DeployPoint)
		u.Mobile.GuardPoint = s.DeployPoint
	}
	if p := w.Player(factory.Owner); p != nil {
		p.Stats.UnitsBuilt++
	}
	w.notify(NoteUnitDeployed, factory.Owner, u)
	return u
}

// ProduceItem queues one item, or a batch when multiple is set.
func (w *World) ProduceItem(o *Object, item ItemID, multiple bool) bool {
	if o == nil || o.Builder == nil || !w.canBuild(o, item) {
		return false
	}
	n := 1
	if multiple {
		n = multipleCount
	}
	for i := 0; i < n; i++ {
		o.Builder.Queue = append(o.Builder.Queue, ProductionItem{Item: item})
	}
	return true
}

func (w *World) canBuild(o *Object, item ItemID) bool {
	for _, it := range o.Stats().Builds {
		if it == item {
			return true
		}
	}
	return false
}

// CancelItem removes queued copies of item from the back of the queue and
// refunds what was paid. A finished structure awaiting placement is
// cancelled too.
func (w *World) CancelItem(o *Object, item ItemID, multiple bool) bool {
	if o == nil || o.Builder == nil {
		return false
	}
	b := o.Builder
	p := w.Player(o.Owner)
	n := 1
	if multiple {
		n = multipleCount
	}
	removed := 0
	for i := len(b.Queue) - 1; i >= 0 && removed < n; i-- {
		if b.Queue[i].Item != item {
			continue
		}
		if p != nil {
			p.Credits += b.Queue[i].Paid
		}
		if i == 0 {
			b.Progress = 0
		}
		b.Queue = append(b.Queue[:i], b.Queue[i+1:]...)
		removed++
	}
	if removed < n && b.Ready == item {
		if st := w.items.get(item); st != nil && p != nil {
			p.Credits += st.Price
		}
		b.Ready = ItemNone
		removed++
	}
	return removed > 0
}

// PlaceStructure puts the finished structure of a construction yard on
// the map. Slabs only change the terrain.
func (w *World) PlaceStructure(builder *Object, item ItemID, c core.Coord) (*Object, error) {
	if builder == nil || builder.Builder == nil {
		return nil, fmt.Errorf("sim: not a builder")
	}
	if builder.Builder.Ready != item || item == ItemNone {
		return nil, fmt.Errorf("sim: %s is not ready", item)
	}
	fw, fh := w.footprints.Footprint(item, builder.Owner)
	if !w.OkayToPlaceStructure(c.X, c.Y, fw, fh, builder.Owner, false) {
		return nil, fmt.Errorf("sim: cannot place %s at %v", item, c)
	}

	builder.Builder.Ready = ItemNone
	p := w.Player(builder.Owner)
	if p != nil {
		p.Stats.StructuresBuilt++
	}
	if item == ItemSlab1 {
		for _, cell := range core.NewRect(c.X, c.Y, fw, fh).Cells() {
			t := w.m.Tile(cell)
			t.Terrain = TerrainSlab
			t.Owner = builder.Owner
		}
		return nil, nil
	}

	s, err := w.CreateObject(item, builder.Owner, c)
	if err != nil {
		return nil, err
	}
	if item == ItemRefinery {
		if h := w.deployUnit(s, ItemHarvester); h != nil {
			h.Harvest.Refinery = s.ID
		}
	}
	return s, nil
}

// LaunchSpecialWeapon fires a charged palace at c.
func (w *World) LaunchSpecialWeapon(palace *Object, c core.Coord) bool {
	if palace == nil || palace.Item != ItemPalace || !w.m.Contains(c) {
		return false
	}
	if palace.Structure.SpecialCharge < w.tun.palaceRecharge {
		return false
	}
	palace.Structure.SpecialCharge = 0
	w.launchDeathHand(palace, c)
	return true
}
