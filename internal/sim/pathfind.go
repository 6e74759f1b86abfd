package sim

import (
	"container/heap"

	"github.com/vovakirdan/dunesim/internal/core"
)

// diagonalCost approximates sqrt(2).
const diagonalCost core.Fixed = 92682

// blockDistance is the octile distance between two tiles: diagonal steps
// cost sqrt(2), straight steps 1.
func blockDistance(a, b core.Coord) core.Fixed {
	dx, dy := core.Abs(a.X-b.X), core.Abs(a.Y-b.Y)
	lo, hi := core.Min(dx, dy), core.Max(dx, dy)
	return core.FromInt(hi) + (diagonalCost - core.One).MulInt(lo)
}

type pathNode struct {
	index int
	f, g  core.Fixed
	h     core.Fixed
	seq   int
}

type openList []*pathNode

func (q openList) Len() int { return len(q) }

func (q openList) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].h != q[j].h {
		return q[i].h < q[j].h
	}
	return q[i].seq < q[j].seq
}

func (q openList) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *openList) Push(x any) { *q = append(*q, x.(*pathNode)) }

func (q *openList) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// terrainCost returns the movement difficulty of c for o, or zero when the
// terrain is impassable.
func (w *World) terrainCost(o *Object, c core.Coord) core.Fixed {
	if o.IsFlying() {
		return core.One
	}
	st := o.Stats()
	if st == nil {
		return 0
	}
	return w.items.difficulty[st.Movement][w.m.Tile(c).Terrain]
}

// canEnter reports whether o may stand on c right now. Occupancy is
// ignored when ignoreUnits is set; structures still block.
func (w *World) canEnter(o *Object, c core.Coord, ignoreUnits bool) bool {
	if !w.m.Contains(c) || w.terrainCost(o, c) == 0 {
		return false
	}
	t := w.m.Tile(c)
	switch o.Kind {
	case KindAir:
		return true
	case KindSandworm:
		for _, id := range t.Objects(LayerUnderground) {
			if id != o.ID {
				return ignoreUnits
			}
		}
		return true
	}

	if w.capturing(o, c) {
		return true
	}
	for _, id := range t.Objects(LayerGround) {
		if id == o.ID {
			continue
		}
		other := w.reg.Get(id)
		if other == nil {
			continue
		}
		if other.IsStructure() || !ignoreUnits {
			return false
		}
	}
	if ignoreUnits {
		return true
	}
	if o.IsInfantry() {
		count := 0
		for _, id := range t.Objects(LayerInfantry) {
			if id == o.ID {
				continue
			}
			other := w.reg.Get(id)
			if other != nil && w.isEnemy(other.Owner, o.Owner) {
				return false
			}
			count++
		}
		return count < w.tun.infantryPerCell
	}
	for _, id := range t.Objects(LayerInfantry) {
		if id != o.ID {
			return false
		}
	}
	return true
}

// capturing reports whether o is infantry on its way to capture the
// structure covering c.
func (w *World) capturing(o *Object, c core.Coord) bool {
	if !o.IsInfantry() || o.Mode != ModeCapture {
		return false
	}
	t := w.reg.Get(o.Target)
	return t != nil && t.IsStructure() && t.Footprint().Contains(c)
}

// FindPath runs A* from start to goal for o over 8-connected tiles.
// Diagonal steps must not cut corners. Occupants of the goal tile are
// ignored so that a unit can path towards something it wants to attack.
// The search gives up after the configured number of expanded nodes and
// reports no path.
func (w *World) FindPath(o *Object, start, goal core.Coord) ([]core.Coord, bool) {
	if !w.m.Contains(start) || !w.m.Contains(goal) {
		return nil, false
	}
	if start == goal {
		return nil, true
	}
	if w.terrainCost(o, goal) == 0 {
		return nil, false
	}

	width := w.m.Width()
	size := width * w.m.Height()
	index := func(c core.Coord) int { return c.Y*width + c.X }
	coord := func(i int) core.Coord { return core.C(i%width, i/width) }

	gScore := make([]core.Fixed, size)
	parent := make([]int32, size)
	state := make([]uint8, size) // 0 unseen, 1 open, 2 closed
	for i := range parent {
		parent[i] = -1
	}

	passable := func(c core.Coord) bool {
		if c == goal {
			return w.terrainCost(o, c) > 0
		}
		return w.canEnter(o, c, false)
	}

	seq := 0
	open := &openList{}
	si, gi := index(start), index(goal)
	h0 := blockDistance(start, goal)
	heap.Push(open, &pathNode{index: si, g: 0, h: h0, f: h0, seq: seq})
	state[si] = 1

	expanded := 0
	for open.Len() > 0 {
		n := heap.Pop(open).(*pathNode)
		if state[n.index] == 2 || n.g != gScore[n.index] {
			continue
		}
		if n.index == gi {
			return w.buildPath(parent, coord, si, gi), true
		}
		state[n.index] = 2
		expanded++
		if expanded > w.tun.maxPathNodes {
			return nil, false
		}

		c := coord(n.index)
		for dir, d := range core.Neighbors8 {
			nc := c.Add(d)
			if !w.m.Contains(nc) {
				continue
			}
			ni := index(nc)
			if state[ni] == 2 || !passable(nc) {
				continue
			}
			step := core.One
			if dir%2 == 1 {
				// diagonal: both orthogonal neighbours must be free
				if !passable(core.C(nc.X, c.Y)) || !passable(core.C(c.X, nc.Y)) {
					continue
				}
				step = diagonalCost
			}
			g := n.g + step.Mul(w.terrainCost(o, nc))
			if state[ni] == 1 && g >= gScore[ni] {
				continue
			}
			gScore[ni] = g
			parent[ni] = int32(n.index)
			state[ni] = 1
			seq++
			h := blockDistance(nc, goal)
			heap.Push(open, &pathNode{index: ni, g: g, h: h, f: g + h, seq: seq})
		}
	}
	return nil, false
}

func (w *World) buildPath(parent []int32, coord func(int) core.Coord, start, goal int) []core.Coord {
	var rev []core.Coord
	for i := goal; i != start; i = int(parent[i]) {
		rev = append(rev, coord(i))
	}
	path := make([]core.Coord, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}
