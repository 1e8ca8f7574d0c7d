// Package vocab holds the read-only word lists the name generator samples from.
package vocab

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
)

//go:embed data/animals.json
var animalsJSON []byte

//go:embed data/adjectives.json
var adjectivesJSON []byte

// Animal is a vocabulary entry for an animal name.
type Animal struct {
	Name  string `json:"name" yaml:"name"`
	Emoji string `json:"emoji,omitempty" yaml:"emoji,omitempty"`
}

// HasEmoji reports whether the animal has an emoji.
func (a Animal) HasEmoji() bool {
	return a.Emoji != ""
}

// Vocabulary is an immutable set of animals and adjectives.
type Vocabulary struct {
	animals    []Animal
	adjectives []string
}

var (
	defaultOnce  sync.Once
	defaultVocab *Vocabulary
)

// Default returns the built-in vocabulary. It is parsed once per process.
func Default() *Vocabulary {
	defaultOnce.Do(func() {
		var animals []Animal
		if err := json.Unmarshal(animalsJSON, &animals); err != nil {
			panic(fmt.Sprintf("vocab: embedded animals.json: %v", err))
		}
		var adjectives []string
		if err := json.Unmarshal(adjectivesJSON, &adjectives); err != nil {
			panic(fmt.Sprintf("vocab: embedded adjectives.json: %v", err))
		}
		defaultVocab = New(animals, adjectives)
	})
	return defaultVocab
}

// New creates a vocabulary from copies of the given lists. Blank entries are dropped.
func New(animals []Animal, adjectives []string) *Vocabulary {
	v := &Vocabulary{
		animals:    make([]Animal, 0, len(animals)),
		adjectives: make([]string, 0, len(adjectives)),
	}
	for _, a := range animals {
		a.Name = strings.TrimSpace(a.Name)
		if a.Name == "" {
			continue
		}
		a.Emoji = strings.TrimSpace(a.Emoji)
		v.animals = append(v.animals, a)
	}
	for _, adj := range adjectives {
		adj = strings.TrimSpace(adj)
		if adj == "" {
			continue
		}
		v.adjectives = append(v.adjectives, adj)
	}
	return v
}

// Animals returns a copy of the animal list.
func (v *Vocabulary) Animals() []Animal {
	return slices.Clone(v.animals)
}

// Adjectives returns a copy of the adjective list.
func (v *Vocabulary) Adjectives() []string {
	return slices.Clone(v.adjectives)
}

// MatchAnimals returns the animals accepted by the filter.
func (v *Vocabulary) MatchAnimals(f Filter) []Animal {
	var out []Animal
	for _, a := range v.animals {
		if f.MatchAnimal(a) {
			out = append(out, a)
		}
	}
	return out
}

// MatchAdjectives returns the adjectives starting with initial.
func (v *Vocabulary) MatchAdjectives(initial string) []string {
	f := Filter{Initial: initial}
	var out []string
	for _, adj := range v.adjectives {
		if f.MatchWord(adj) {
			out = append(out, adj)
		}
	}
	return out
}

// Letters returns the selectable initial letters A-Z.
func Letters() []string {
	letters := make([]string, 0, 26)
	for c := 'A'; c <= 'Z'; c++ {
		letters = append(letters, string(c))
	}
	return letters
}
