package namegen

import (
	"fmt"

	"github.com/johan-st/toolbox/internal/vocab"
)

// Generator produces names from a vocabulary sampler.
type Generator struct {
	sampler *vocab.Sampler
}

// New creates a generator backed by sampler.
func New(sampler *vocab.Sampler) *Generator {
	return &Generator{sampler: sampler}
}

// NewDefault creates a clock-seeded generator over the built-in vocabulary.
func NewDefault() *Generator {
	return New(vocab.NewSampler(vocab.Default(), nil))
}

// Generate returns opts.Count independently sampled names.
// Duplicates are possible.
func (g *Generator) Generate(opts Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	names := make([]string, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		names = append(names, g.One(opts))
	}
	return names, nil
}

// One samples a single name. Words with no match under the filter are
// empty, and the animal's emoji (if any) is appended after formatting.
func (g *Generator) One(opts Options) string {
	words := make([]string, 0, opts.NumAdjectives+1)
	for i := 0; i < opts.NumAdjectives; i++ {
		adj, _ := g.sampler.RandomAdjective(opts.Initial)
		words = append(words, adj)
	}

	animal, _ := g.sampler.RandomAnimal(opts.Filter())
	words = append(words, animal.Name)

	return Format(opts.Style, words) + animal.Emoji
}

// Name creates an anonymous handle in the format "adjective-animal-NN".
func (g *Generator) Name() string {
	adj, _ := g.sampler.RandomAdjective(vocab.AnyInitial)
	animal, _ := g.sampler.RandomAnimal(vocab.Filter{})
	return fmt.Sprintf("%s-%02d", Format(Kebab, []string{adj, animal.Name}), g.sampler.IntN(100))
}
