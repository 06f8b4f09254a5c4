package runtime

import "math"

// lcg is the engine's deterministic random source. A linear congruential
// generator keeps the draw sequence stable across platforms and Go
// releases, which math/rand does not guarantee across major versions.
type lcg struct {
	state uint64
}

func newLCG(seed uint64) *lcg {
	return &lcg{state: seed}
}

// next advances the generator with the Numerical Recipes constants.
func (g *lcg) next() uint64 {
	g.state = g.state*1664525 + 1013904223
	return g.state
}

// uniform returns a draw in [0, 1).
func (g *lcg) uniform() float64 {
	return float64(g.next()) / float64(math.MaxUint64)
}
