package engine

import "math/rand"

// randSource is the engine's only source of randomness. Every stochastic
// decision (country trait draws at creation, spread seeding, growth
// jitter, measure-adoption draws) goes through it in a fixed order, so
// a run is exactly reproducible from its seed. Reset re-seeds it, which
// makes reconstructed countries identical to the originals.
//
// Not safe for concurrent use; all draws happen under the engine mutex.
type randSource struct {
	r *rand.Rand
}

func newRandSource(seed int64) *randSource {
	return &randSource{r: rand.New(rand.NewSource(seed))}
}

func (s *randSource) Float64() float64 {
	return s.r.Float64()
}

func (s *randSource) Intn(n int) int {
	return s.r.Intn(n)
}
