package vocab

import (
	"math/rand/v2"
	"time"
)

// Sampler draws uniformly random entries from a vocabulary.
// A Sampler is not safe for concurrent use; give each session its own.
type Sampler struct {
	vocab *Vocabulary
	rng   *rand.Rand
}

// NewSampler creates a sampler over v. A nil src seeds from the clock.
func NewSampler(v *Vocabulary, src rand.Source) *Sampler {
	if src == nil {
		src = rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())
	}
	return &Sampler{vocab: v, rng: rand.New(src)}
}

// Vocabulary returns the vocabulary being sampled.
func (s *Sampler) Vocabulary() *Vocabulary {
	return s.vocab
}

// RandomAnimal returns a random animal matching f, or false if none match.
func (s *Sampler) RandomAnimal(f Filter) (Animal, bool) {
	return choose(s.rng, s.vocab.MatchAnimals(f))
}

// RandomAdjective returns a random adjective starting with initial, or false if none match.
func (s *Sampler) RandomAdjective(initial string) (string, bool) {
	return choose(s.rng, s.vocab.MatchAdjectives(initial))
}

func choose[T any](rng *rand.Rand, list []T) (T, bool) {
	var zero T
	if len(list) == 0 {
		return zero, false
	}
	return list[rng.IntN(len(list))], true
}

// IntN returns a random int in [0, n) from the sampler's source.
func (s *Sampler) IntN(n int) int {
	return s.rng.IntN(n)
}
