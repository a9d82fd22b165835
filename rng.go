// rng.go - C9's random-number ecalls (RandInt/RandIntRange/RandFloat).

package main

import "math/rand"

type RNG struct {
	r *rand.Rand
}

func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(seed))}
}

func (g *RNG) Int32() int32 {
	return int32(g.r.Uint32())
}

// IntRange returns a uniform value in [0, upper); non-positive upper
// degenerates to 0 rather than panicking on math/rand's Int31n.
func (g *RNG) IntRange(upper int32) int32 {
	if upper <= 0 {
		return 0
	}
	return g.r.Int31n(upper)
}

func (g *RNG) Float32() float32 {
	return g.r.Float32()
}
