package core

import (
	"fmt"
	"math"
)

// FracBits is the number of fractional bits in a Fixed.
const FracBits = 16

// Fixed is a signed 48.16 fixed-point number. Simulation arithmetic uses
// Fixed instead of floats so every machine computes identical results.
type Fixed int64

// Common constants.
const (
	Zero Fixed = 0
	One  Fixed = 1 << FracBits
	Half Fixed = One / 2
)

// FromInt converts an integer.
func FromInt(i int) Fixed {
	return Fixed(int64(i) << FracBits)
}

// FromFloat converts a float, rounding to the nearest representable value.
// Only used when loading configuration, never inside a tick.
func FromFloat(f float64) Fixed {
	return Fixed(math.Round(f * float64(One)))
}

// Mul returns f*g.
func (f Fixed) Mul(g Fixed) Fixed {
	return Fixed((int64(f) * int64(g)) >> FracBits)
}

// Div returns f/g. Division by zero yields zero.
func (f Fixed) Div(g Fixed) Fixed {
	if g == 0 {
		return 0
	}
	return Fixed((int64(f) << FracBits) / int64(g))
}

// MulInt returns f*i.
func (f Fixed) MulInt(i int) Fixed {
	return f * Fixed(i)
}

// Floor returns the largest integer <= f.
func (f Fixed) Floor() int {
	return int(f >> FracBits)
}

// Round returns f rounded half up.
func (f Fixed) Round() int {
	return int((f + Half) >> FracBits)
}

// Abs returns |f|.
func (f Fixed) Abs() Fixed {
	if f < 0 {
		return -f
	}
	return f
}

// Sqrt returns the square root of f; negative inputs yield zero.
func (f Fixed) Sqrt() Fixed {
	if f <= 0 {
		return 0
	}
	if f >= 1<<(63-FracBits) {
		return Fixed(isqrt(uint64(f)) << (FracBits / 2))
	}
	return Fixed(isqrt(uint64(f) << FracBits))
}

// Float returns f as a float64, for display only.
func (f Fixed) Float() float64 {
	return float64(f) / float64(One)
}

// String implements fmt.Stringer.
func (f Fixed) String() string {
	return fmt.Sprintf("%.3f", f.Float())
}

// MinF returns the smaller of two Fixed values.
func MinF(a, b Fixed) Fixed {
	if a < b {
		return a
	}
	return b
}

// MaxF returns the larger of two Fixed values.
func MaxF(a, b Fixed) Fixed {
	if a > b {
		return a
	}
	return b
}

// ClampF restricts a Fixed to [min, max].
func ClampF(val, min, max Fixed) Fixed {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// isqrt is Newton's method on integers.
func isqrt(n uint64) uint64 {
	if n < 2 {
		return n
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
