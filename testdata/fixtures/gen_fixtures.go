//go:build ignore

// gen_fixtures generates test fixture files.
// Run with: go run gen_fixtures.go
package main

import (
	"encoding/json"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	if err := generateBytes(); err != nil {
		log.Fatalf("Failed to generate bytes.bin: %v", err)
	}
	if err := generateAnimals(); err != nil {
		log.Fatalf("Failed to generate animals.json: %v", err)
	}
	if err := generateAdjectives(); err != nil {
		log.Fatalf("Failed to generate adjectives.yaml: %v", err)
	}
	log.Println("All fixtures generated successfully")
}

// bytes.bin - every byte value once, so text decoding would mangle it
func generateBytes() error {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	return os.WriteFile("bytes.bin", data, 0o644)
}

// animals.json - a small vocabulary with and without emoji
func generateAnimals() error {
	animals := []map[string]string{
		{"name": "fox", "emoji": "🦊"},
		{"name": "lynx"},
		{"name": "owl", "emoji": "🦉"},
		{"name": "yak"},
	}
	data, err := json.MarshalIndent(animals, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile("animals.json", append(data, '\n'), 0o644)
}

// adjectives.yaml - adjectives covering a handful of letters
func generateAdjectives() error {
	data, err := yaml.Marshal([]string{"brave", "lucky", "odd", "quiet", "young"})
	if err != nil {
		return err
	}
	return os.WriteFile("adjectives.yaml", data, 0o644)
}
