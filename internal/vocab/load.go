package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Load builds a vocabulary from files. Each pattern may be a plain path or a
// doublestar glob; matching files are read in sorted order and concatenated.
// An empty pattern keeps the built-in list for that part.
func Load(animalsPattern, adjectivesPattern string) (*Vocabulary, error) {
	def := Default()
	animals := def.animals
	adjectives := def.adjectives

	if animalsPattern != "" {
		var loaded []Animal
		if err := loadAll(animalsPattern, func(path string, data []byte) error {
			var part []Animal
			if err := decode(path, data, &part); err != nil {
				return err
			}
			loaded = append(loaded, part...)
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to load animals: %w", err)
		}
		animals = loaded
	}

	if adjectivesPattern != "" {
		var loaded []string
		if err := loadAll(adjectivesPattern, func(path string, data []byte) error {
			var part []string
			if err := decode(path, data, &part); err != nil {
				return err
			}
			loaded = append(loaded, part...)
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to load adjectives: %w", err)
		}
		adjectives = loaded
	}

	return New(animals, adjectives), nil
}

// loadAll expands pattern and calls fn for each matching file.
func loadAll(pattern string, fn func(path string, data []byte) error) error {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no files match %q", pattern)
	}
	sort.Strings(matches)

	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return err
		}
	}
	return nil
}

// decode unmarshals JSON or YAML depending on the file extension.
func decode(path string, data []byte, out any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported vocabulary file %s (want .json, .yaml or .yml)", path)
	}
	return nil
}
