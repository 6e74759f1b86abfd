// Package core provides the value types shared by the simulation and the
// platform layers: tile coordinates, footprints, fixed-point numbers and a
// character screen buffer. It has no external dependencies so simulation
// logic stays pure and testable.
package core

// Rect is an axis-aligned block of tiles, used for structure footprints.
type Rect struct {
	X, Y int // Top-left tile
	W, H int // Size in tiles
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// RectAt creates a footprint of w*h tiles anchored at c.
func RectAt(c Coord, w, h int) Rect {
	return Rect{X: c.X, Y: c.Y, W: w, H: h}
}

// Right returns the x-coordinate one past the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate one past the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the tile c lies inside this rectangle.
func (r Rect) Contains(c Coord) bool {
	return c.X >= r.X && c.X < r.Right() && c.Y >= r.Y && c.Y < r.Bottom()
}

// Cells returns every tile of the rectangle in row-major order.
func (r Rect) Cells() []Coord {
	cells := make([]Coord, 0, r.W*r.H)
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			cells = append(cells, Coord{X: x, Y: y})
		}
	}
	return cells
}

// ClosestPoint returns the tile of the rectangle nearest to c.
func (r Rect) ClosestPoint(c Coord) Coord {
	return Coord{
		X: Clamp(c.X, r.X, r.Right()-1),
		Y: Clamp(c.Y, r.Y, r.Bottom()-1),
	}
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
