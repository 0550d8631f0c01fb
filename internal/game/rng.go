// internal/game/rng.go
//
// Random source for food placement.
//
// Contract:
//   - Rand is the only randomness the engine consumes; tests inject their own.
//   - Source is a seeded PCG generator. Its state round-trips through
//     MarshalBinary/UnmarshalBinary, so equal seeds and equal inputs give
//     equal food sequences, also across a save and restore.

package game

import (
	"golang.org/x/exp/rand"
)

// Rand is the random source used for food placement.
type Rand interface {
	// Intn returns a value in [0, n). n is always positive.
	Intn(n int) int
}

// Source is the default Rand: a seeded PCG generator whose state can be
// saved and restored, so a stored session replays the same food sequence.
type Source struct {
	seed uint64
	pcg  *rand.PCGSource
	r    *rand.Rand
}

// NewSource returns a generator seeded with seed.
func NewSource(seed uint64) *Source {
	pcg := &rand.PCGSource{}
	pcg.Seed(seed)
	return &Source{seed: seed, pcg: pcg, r: rand.New(pcg)}
}

func (s *Source) Intn(n int) int { return s.r.Intn(n) }

// Seed is the value the generator was created with.
func (s *Source) Seed() uint64 { return s.seed }

func (s *Source) MarshalBinary() ([]byte, error) { return s.pcg.MarshalBinary() }

func (s *Source) UnmarshalBinary(data []byte) error { return s.pcg.UnmarshalBinary(data) }
