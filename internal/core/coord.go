package core

import "fmt"

// Coord is an integer pair used for tile positions and tile-space offsets.
type Coord struct {
	X, Y int
}

// C is shorthand for Coord{X: x, Y: y}.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// Invalid returns the sentinel for "no such tile".
func Invalid() Coord {
	return Coord{X: -1, Y: -1}
}

// IsValid reports whether c is not the invalid sentinel.
func (c Coord) IsValid() bool {
	return c.X >= 0 && c.Y >= 0
}

// Add returns c + o.
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y}
}

// Sub returns c - o.
func (c Coord) Sub(o Coord) Coord {
	return Coord{X: c.X - o.X, Y: c.Y - o.Y}
}

// Mul scales both components by k.
func (c Coord) Mul(k int) Coord {
	return Coord{X: c.X * k, Y: c.Y * k}
}

// Div divides both components by k, truncating toward zero.
func (c Coord) Div(k int) Coord {
	return Coord{X: c.X / k, Y: c.Y / k}
}

// Manhattan returns |dx| + |dy|.
func (c Coord) Manhattan(o Coord) int {
	return Abs(c.X-o.X) + Abs(c.Y-o.Y)
}

// Chebyshev returns max(|dx|, |dy|).
func (c Coord) Chebyshev(o Coord) int {
	return Max(Abs(c.X-o.X), Abs(c.Y-o.Y))
}

// String implements fmt.Stringer.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Neighbors4 lists the orthogonal offsets in N, E, S, W order.
var Neighbors4 = [4]Coord{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Neighbors8 lists all eight offsets clockwise starting at north.
// The index doubles as the unit facing angle.
var Neighbors8 = [8]Coord{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}
