// Package testutil provides test utilities for toolbox tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Fixture returns a temporary copy of a file from testdata/fixtures.
func Fixture(t *testing.T, fixtureName string) string {
	t.Helper()

	srcPath := filepath.Join(FindFixturesDir(t), fixtureName)
	dstPath := filepath.Join(t.TempDir(), fixtureName)

	if err := copyFile(srcPath, dstPath); err != nil {
		t.Fatalf("failed to copy fixture %s: %v", fixtureName, err)
	}
	return dstPath
}

// ReadFixture returns the contents of a file from testdata/fixtures.
func ReadFixture(t *testing.T, fixtureName string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(FindFixturesDir(t), fixtureName))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", fixtureName, err)
	}
	return data
}

// TempFile writes content to a new file in a per-test directory and returns its path.
func TempFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// FindFixturesDir locates the testdata/fixtures directory.
func FindFixturesDir(t *testing.T) string {
	t.Helper()
	return findTestdata(t, "fixtures")
}

// FindGoldenDir locates the testdata/golden directory.
func FindGoldenDir(t *testing.T) string {
	t.Helper()
	return findTestdata(t, "golden")
}

// findTestdata walks up from the working directory looking for testdata/<sub>.
func findTestdata(t *testing.T, sub string) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for i := 0; i < 10; i++ {
		candidate := filepath.Join(dir, "testdata", sub)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	t.Fatalf("could not find testdata/%s directory", sub)
	return ""
}

// Golden compares output against a golden file.
// If GOLDEN_UPDATE=1 is set, updates the golden file instead.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	goldenPath := filepath.Join(FindGoldenDir(t), name+".golden")

	if os.Getenv("GOLDEN_UPDATE") == "1" {
		if err := os.WriteFile(goldenPath, got, 0o644); err != nil {
			t.Fatalf("failed to update golden file: %v", err)
		}
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	want, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file not found: %s\nGot:\n%s\n\nRun with GOLDEN_UPDATE=1 to create", goldenPath, got)
		}
		t.Fatalf("failed to read golden file: %v", err)
	}

	if !bytes.Equal(normalizeNewlines(got), normalizeNewlines(want)) {
		t.Errorf("output mismatch for %s\nGot:\n%s\nWant:\n%s", name, got, want)
	}
}

// GoldenJSON compares JSON output against a golden file (normalized).
func GoldenJSON(t *testing.T, name string, got []byte) {
	t.Helper()

	var gotObj any
	if err := json.Unmarshal(got, &gotObj); err != nil {
		t.Fatalf("failed to parse output as JSON: %v\nGot: %s", err, got)
	}

	normalized, err := json.MarshalIndent(gotObj, "", "  ")
	if err != nil {
		t.Fatalf("failed to normalize JSON: %v", err)
	}

	Golden(t, name, normalized)
}

// OutputCapture is a helper for capturing CLI output.
type OutputCapture struct {
	Out bytes.Buffer
	Err bytes.Buffer
}

// Stdout returns captured stdout as string.
func (c *OutputCapture) Stdout() string {
	return c.Out.String()
}

// Stderr returns captured stderr as string.
func (c *OutputCapture) Stderr() string {
	return c.Err.String()
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	return err
}

func normalizeNewlines(b []byte) []byte {
	return []byte(strings.ReplaceAll(string(b), "\r\n", "\n"))
}
