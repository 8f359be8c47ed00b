package plane

import (
	"math/rand"
)

// seededSampler is a sac.Sampler backed by its own random source, so that
// a fit can be made reproducible without touching the global source.
type seededSampler struct {
	rnd *rand.Rand
	n   int
}

func newSeededSampler(seed int64, n int) *seededSampler {
	return &seededSampler{rnd: rand.New(rand.NewSource(seed)), n: n}
}

func (s *seededSampler) Sample() int {
	return s.rnd.Intn(s.n)
}
