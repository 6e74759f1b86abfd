package sim

import (
	"math"

	"github.com/vovakirdan/dunesim/internal/core"
)

// lookDist holds the half-height of the scanned column for each horizontal
// offset. The values approximate a circle of radius 10 and are used as is,
// whatever the search radius.
var lookDist = [11]int{10, 10, 9, 9, 9, 8, 8, 7, 6, 4, 1}

// wallPenalty is added to the distance of walls so they are only picked
// when nothing else is around.
var wallPenalty = core.FromInt(20000000)

// searchRange returns the target search radius of a mode, or -1 when the
// mode does not look for targets.
func (w *World) searchRange(o *Object) int {
	if o.Weapon == nil {
		return -1
	}
	switch o.Mode {
	case ModeGuard:
		return o.Weapon.Range
	case ModeAreaGuard:
		return core.Min(2*o.Weapon.Range, w.tun.maxAreaGuardRange)
	case ModeAmbush:
		return o.Stats().ViewRange
	case ModeHunt:
		return math.MaxInt32
	default:
		return -1
	}
}

// canAttack reports whether o may pick t as a target.
func (w *World) canAttack(o, t *Object) bool {
	if t == nil || t == o || o.Weapon == nil || t.IsDead() || t.InTransport() {
		return false
	}
	if t.IsFlying() && !t.IsStructure() && !o.Weapon.AntiAir {
		return false
	}
	if o.Weapon.Bullet == BulletDeviator && (t.IsStructure() || t.Worm != nil) {
		return false
	}
	if !w.isEnemy(o.Owner, t.Owner) && t.Item != ItemSandworm {
		return false
	}
	return w.isVisibleToTeam(t, w.team(o.Owner))
}

// findTarget picks the nearest attackable object for o's attack mode.
func (w *World) findTarget(o *Object) *Object {
	r := w.searchRange(o)
	if r < 0 {
		return nil
	}
	if o.Mode == ModeHunt {
		return w.huntTarget(o)
	}

	var closest *Object
	closestDist := core.Fixed(math.MaxInt64)
	loc := o.Location
	for x := loc.X - r; x <= loc.X+r; x++ {
		dx := core.Min(core.Abs(x-loc.X), len(lookDist)-1)
		for y := loc.Y - lookDist[dx]; y <= loc.Y+lookDist[dx]; y++ {
			if !w.m.CellExists(x, y) {
				continue
			}
			t := w.reg.Get(w.m.Tile(core.C(x, y)).TopObject())
			if t == nil {
				continue
			}
			if t.Item == ItemWall && closest != nil {
				continue
			}
			if !w.canAttack(o, t) {
				continue
			}
			d := blockDistance(loc, t.Location)
			if t.Item == ItemWall {
				d += wallPenalty
			}
			if d < closestDist {
				closest = t
				closestDist = d
			}
		}
	}
	return closest
}

// huntTarget scans every structure and then every unit on the map. Any
// valid structure wins over units; within a group the nearest one is taken.
func (w *World) huntTarget(o *Object) *Object {
	nearest := func(keep func(*Object) bool) *Object {
		var closest *Object
		closestDist := core.Fixed(math.MaxInt64)
		w.reg.Each(func(t *Object) {
			if !keep(t) || !w.canAttack(o, t) {
				return
			}
			if d := blockDistance(o.Location, t.Location); d < closestDist {
				closest = t
				closestDist = d
			}
		})
		return closest
	}
	if t := nearest((*Object).IsStructure); t != nil {
		return t
	}
	return nearest((*Object).IsUnit)
}

// targetPoint returns the tile o aims at, or Invalid when it has nothing to
// shoot at. A stale target reference is cleared here.
func (w *World) targetPoint(o *Object) (core.Coord, *Object) {
	if o.Target != NoObject {
		t := w.reg.Get(o.Target)
		if t == nil || t.IsDead() || t.InTransport() {
			o.Target = NoObject
			o.ForcedTarget = false
		} else {
			return t.ClosestPoint(o.Location), t
		}
	}
	if o.AttackPos.IsValid() {
		return o.AttackPos, nil
	}
	return core.Invalid(), nil
}
