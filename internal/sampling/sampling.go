// Package sampling provides the explicitly seeded random source threaded
// through every scene-construction step.
package sampling

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrEmptyChoice is returned when asked to pick from an empty sequence.
var ErrEmptyChoice = errors.New("sampling: choice from empty sequence")

// Sampler draws every random value for one scene. Not safe for concurrent use.
type Sampler struct {
	src *rand.PCG
	rng *rand.Rand
}

// New returns a Sampler whose whole stream is determined by seed.
func New(seed uint64) *Sampler {
	src := rand.NewPCG(seed, splitmix(seed))
	return &Sampler{src: src, rng: rand.New(src)}
}

// SceneSeed derives the seed for one scene from the batch seed, so a scene's
// draws do not depend on which worker runs it or when.
func SceneSeed(base uint64, sceneIndex int) uint64 {
	return splitmix(base + uint64(sceneIndex)*0x9e3779b97f4a7c15)
}

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Uniform returns a float in [lo, hi).
func (s *Sampler) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// IntRange returns an int in [lo, hi], both ends inclusive.
func (s *Sampler) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo+1)
}

// Gauss draws from a normal distribution.
func (s *Sampler) Gauss(mean, stddev float64) float64 {
	return distuv.Normal{Mu: mean, Sigma: stddev, Src: s.src}.Rand()
}

// Index returns a uniform index into a sequence of length n.
func (s *Sampler) Index(n int) (int, error) {
	if n <= 0 {
		return 0, ErrEmptyChoice
	}
	return s.rng.IntN(n), nil
}

// Choice picks one element of items uniformly at random.
func Choice[T any](s *Sampler, items []T) (T, error) {
	var zero T
	i, err := s.Index(len(items))
	if err != nil {
		return zero, err
	}
	return items[i], nil
}
