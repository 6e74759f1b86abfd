// Package rng provides the deterministic random generator shared by every
// participant of a simulation. The sequence depends only on the seed.
package rng

// Generator is a 31-bit linear congruential generator.
type Generator struct {
	seed uint32
}

// New creates a generator with the given seed.
func New(seed uint32) *Generator {
	return &Generator{seed: seed}
}

// Seed returns the current state.
func (g *Generator) Seed() uint32 {
	return g.seed
}

// SetSeed replaces the current state, used when loading a saved game.
func (g *Generator) SetSeed(seed uint32) {
	g.seed = seed
}

// Next advances the sequence and returns a value in [0, 2^31).
func (g *Generator) Next() uint32 {
	g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
	return g.seed
}

// Intn returns a value in the closed range [min, max].
// When max < min it returns min without advancing the sequence.
func (g *Generator) Intn(min, max int) int {
	if max < min {
		return min
	}
	return int(g.Next()%uint32(max-min+1)) + min
}

// Bool returns a uniformly distributed boolean.
func (g *Generator) Bool() bool {
	return g.Next()%2 == 0
}

// Chance returns true with probability percent/100.
func (g *Generator) Chance(percent int) bool {
	return g.Intn(0, 99) < percent
}
