package sim

import "github.com/vovakirdan/dunesim/internal/core"

const (
	fullTurn core.Fixed = 8 << core.FracBits
	halfTurn core.Fixed = 4 << core.FracBits

	// invSqrt2 scales the per-axis speed of diagonal moves.
	invSqrt2 core.Fixed = 46341
)

// direction returns the Neighbors8 index pointing from a towards b.
func direction(a, b core.Coord) int {
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	for i, d := range core.Neighbors8 {
		if d.X == sx && d.Y == sy {
			return i
		}
	}
	return 0
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func normalizeAngle(a core.Fixed) core.Fixed {
	for a < 0 {
		a += fullTurn
	}
	for a >= fullTurn {
		a -= fullTurn
	}
	return a
}

// turnTowards rotates o one step towards dir by the shorter way and reports
// whether o now faces dir.
func (w *World) turnTowards(o *Object, dir int) bool {
	target := core.FromInt(dir)
	diff := normalizeAngle(target - o.Angle)
	if diff > halfTurn {
		diff -= fullTurn
	}
	if diff == 0 {
		return true
	}
	step := o.Stats().TurnSpeed
	if step <= 0 {
		step = core.One
	}
	switch {
	case diff.Abs() <= step:
		o.Angle = target
	case diff > 0:
		o.Angle = normalizeAngle(o.Angle + step)
	default:
		o.Angle = normalizeAngle(o.Angle - step)
	}
	o.DrawnAngle = o.Angle.Round() % 8
	return o.Angle == target
}

// currentSpeed is the distance o covers per tick on its tile.
func (w *World) currentSpeed(o *Object) core.Fixed {
	speed := o.Mobile.Speed
	if cost := w.terrainCost(o, o.Location); cost > 0 {
		speed = speed.Div(cost)
	}
	if o.HealthRatio() < w.tun.damagedSpeedRatio {
		speed = speed.Mul(w.tun.damagedSpeedFactor)
	}
	return core.MaxF(speed, core.One/64)
}

// integrate moves the real position of o towards the center of its tile.
func (w *World) integrate(o *Object) {
	target := TileCenter(o.Location)
	dx, dy := target.X-o.Real.X, target.Y-o.Real.Y
	speed := w.currentSpeed(o)
	if dx != 0 && dy != 0 {
		speed = speed.Mul(invSqrt2)
	}
	o.Real.X = approach(o.Real.X, target.X, speed)
	o.Real.Y = approach(o.Real.Y, target.Y, speed)
	if o.Real == target {
		o.Mobile.Moving = false
	}
}

func approach(from, to, step core.Fixed) core.Fixed {
	d := to - from
	if d.Abs() <= step {
		return to
	}
	if d > 0 {
		return from + step
	}
	return from - step
}

// setDestination replaces the movement goal and drops the cached path.
func (o *Object) setDestination(c core.Coord) {
	o.Destination = c
	if o.Mobile != nil {
		o.Mobile.Path = nil
		o.Mobile.PathGoal = core.Invalid()
		o.Mobile.RepathTimer = 0
	}
}

// stop halts o on its current tile.
func (o *Object) stop() {
	o.setDestination(o.Location)
}

// advance walks o along its path: it re-plans when needed, turns towards
// the next tile and reserves it, then integrates the real position.
func (w *World) advance(o *Object) {
	m := o.Mobile
	if m.Moving {
		w.integrate(o)
		return
	}
	if o.Destination == o.Location || !o.Destination.IsValid() {
		m.Path = nil
		if m.Forced {
			m.Forced = false
		}
		return
	}

	if len(m.Path) == 0 || m.PathGoal != o.Destination {
		if m.RepathTimer > 0 {
			m.RepathTimer--
			return
		}
		path, ok := w.FindPath(o, o.Location, o.Destination)
		if !ok || len(path) == 0 {
			m.Path = nil
			m.RepathTimer = w.tun.repathDelay
			return
		}
		m.Path = path
		m.PathGoal = o.Destination
	}

	next := m.Path[0]
	if !w.canEnter(o, next, false) {
		m.Path = nil
		if next == o.Destination {
			// the goal itself is taken; stay next to it
			o.stop()
			return
		}
		m.RepathTimer = 0
		return
	}
	if !w.turnTowards(o, direction(o.Location, next)) {
		return
	}
	m.Path = m.Path[1:]
	w.moveTo(o, next)
	m.Moving = true
	w.integrate(o)
}
