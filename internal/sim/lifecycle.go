package sim

import (
	"fmt"

	"github.com/vovakirdan/dunesim/internal/core"
)

// CreateObject builds an object of the given item type, registers it and
// places it on the map with its top-left tile at loc.
func (w *World) CreateObject(item ItemID, owner PlayerID, loc core.Coord) (*Object, error) {
	st := w.items.get(item)
	if st == nil {
		return nil, fmt.Errorf("sim: unknown item %s", item)
	}
	if !owner.Valid() {
		return nil, fmt.Errorf("sim: invalid owner %d", owner)
	}
	o := w.newObject(st, owner, loc)
	for _, c := range o.Footprint().Cells() {
		if !w.m.Contains(c) {
			return nil, fmt.Errorf("sim: %s at %v does not fit the map", item, loc)
		}
	}
	if _, err := w.reg.insert(o); err != nil {
		return nil, err
	}
	w.place(o)
	return o, nil
}

// newObject assembles the kind tag and capability blocks of an item.
func (w *World) newObject(st *ItemStats, owner PlayerID, loc core.Coord) *Object {
	o := &Object{
		Item:          st.ID,
		Kind:          st.Kind,
		Owner:         owner,
		OriginalOwner: owner,
		Location:      loc,
		Real:          TileCenter(loc),
		Destination:   loc,
		Health:        st.HitPoints,
		MaxHealth:     st.HitPoints,
		AttackPos:     core.Invalid(),
		Mode:          ModeGuard,
		stats:         st,
		visible:       1 << uint(owner),
	}

	if st.WeaponRange > 0 && st.Bullet != BulletNone {
		o.Weapon = &Weapon{
			Range:   st.WeaponRange,
			Damage:  st.WeaponDamage,
			Reload:  st.ReloadTime,
			Bullet:  st.Bullet,
			AntiAir: st.Bullet == BulletRocket,
		}
	}

	if st.Kind == KindStructure {
		fw, fh := w.footprints.Footprint(st.ID, owner)
		o.Structure = &Structure{
			Width:       core.Max(fw, 1),
			Height:      core.Max(fh, 1),
			DeployPoint: core.Invalid(),
		}
		if len(st.Builds) > 0 {
			o.Builder = &Builder{}
		}
		return o
	}

	o.Mobile = &Mobile{
		Speed:      st.Speed,
		TurnSpeed:  st.TurnSpeed,
		PathGoal:   core.Invalid(),
		GuardPoint: loc,
	}
	switch st.ID {
	case ItemHarvester:
		o.Harvest = &Harvest{State: HarvestSeek}
	case ItemCarryall:
		o.Carrier = &Carrier{DropAt: core.Invalid()}
	case ItemSandworm:
		o.Worm = &Worm{}
	}
	return o
}

// place assigns the object to the tiles it covers.
func (w *World) place(o *Object) {
	l := o.Kind.layer()
	for _, c := range o.Footprint().Cells() {
		w.m.Assign(c, l, o.ID)
		if o.IsStructure() {
			w.m.Tile(c).Owner = o.Owner
		}
	}
}

// unplace removes the object from every tile it covers.
func (w *World) unplace(o *Object) {
	l := o.Kind.layer()
	for _, c := range o.Footprint().Cells() {
		w.m.Unassign(c, l, o.ID)
	}
}

// moveTo transfers a unit's occupancy to a neighbouring tile.
func (w *World) moveTo(o *Object, c core.Coord) {
	l := o.Kind.layer()
	w.m.Unassign(o.Location, l, o.ID)
	o.Location = c
	w.m.Assign(c, l, o.ID)
}

// Destroy removes an object from the map and the registry. It is the only
// removal path; afterwards the ID no longer resolves.
func (w *World) Destroy(id ObjectID) bool {
	o := w.reg.Get(id)
	if o == nil {
		return false
	}
	if o.Health > 0 {
		o.Health = 0
	}

	if o.Carrier != nil && o.Carrier.Carried != NoObject {
		cargo := o.Carrier.Carried
		if !w.dropCargo(o) {
			w.Destroy(cargo)
		}
	}
	if o.Carrier != nil && o.Carrier.Client != NoObject {
		w.releaseClient(o)
	}
	if !o.InTransport() {
		w.unplace(o)
	}

	if p := w.Player(o.Owner); p != nil {
		if o.IsStructure() {
			p.Stats.StructuresLost++
		} else {
			p.Stats.UnitsLost++
		}
	}
	w.reg.remove(id)
	w.notify(NoteUnitDestroyed, o.Owner, o)
	return true
}

// Deviate hands a unit to newOwner for the configured deviation time.
func (w *World) Deviate(o *Object, newOwner PlayerID) bool {
	return w.DeviateFor(o, newOwner, w.tun.deviationTime)
}

// DeviateFor hands a unit to newOwner for duration ticks. The ID and the
// path are kept; the original owner is restored when the timer runs out.
func (w *World) DeviateFor(o *Object, newOwner PlayerID, duration int) bool {
	if o == nil || !o.IsUnit() || o.Worm != nil || !newOwner.Valid() || duration <= 0 {
		return false
	}
	if o.Owner == newOwner {
		return false
	}
	o.Owner = newOwner
	o.Deviation = &Deviation{Timer: duration}
	o.Target = NoObject
	o.ForcedTarget = false
	return true
}

func (w *World) updateDeviation(o *Object) {
	if o.Deviation == nil {
		return
	}
	o.Deviation.Timer--
	if o.Deviation.Timer > 0 {
		return
	}
	o.Deviation = nil
	o.Owner = o.OriginalOwner
	o.Target = NoObject
	o.ForcedTarget = false
	w.notify(NoteDeviationEnded, o.Owner, o)
}

// ViewMap reveals the rounded circle of radius around center to every
// player of team.
func (w *World) ViewMap(team int, center core.Coord, radius int) {
	mask := viewMask(radius)
	for _, p := range w.players {
		if p == nil || p.Team != team {
			continue
		}
		for _, d := range mask {
			c := center.Add(d)
			if w.m.Contains(c) {
				w.m.Explore(p.ID, c, w.tick)
			}
		}
	}
}

// IsFogged reports whether player lacks current sight of c.
func (w *World) IsFogged(p PlayerID, c core.Coord) bool {
	return w.m.IsFogged(p, c, w.tick, w.tun.fogTimeout)
}

// refreshVisibility recomputes the per-player visibility bits of o from
// the fog state of the tiles it occupies.
func (w *World) refreshVisibility(o *Object) {
	var bits uint8
	cells := o.Footprint().Cells()
	for _, p := range w.players {
		if p == nil {
			continue
		}
		if p.ID == o.Owner {
			bits |= 1 << uint(p.ID)
			continue
		}
		for _, c := range cells {
			if w.m.Contains(c) && !w.IsFogged(p.ID, c) {
				bits |= 1 << uint(p.ID)
				break
			}
		}
	}
	o.visible = bits
}

// isVisibleToTeam reports whether any player on team sees o.
func (w *World) isVisibleToTeam(o *Object, team int) bool {
	for _, p := range w.players {
		if p != nil && p.Team == team && o.IsVisibleTo(p.ID) {
			return true
		}
	}
	return false
}

func (w *World) team(p PlayerID) int {
	if pl := w.Player(p); pl != nil {
		return pl.Team
	}
	return -1
}
