package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"
)

// Algorithm is one of the supported hash functions.
type Algorithm string

const (
	MD5    Algorithm = "MD5"
	SHA1   Algorithm = "SHA1"
	SHA256 Algorithm = "SHA256"
	SHA384 Algorithm = "SHA384"
	SHA512 Algorithm = "SHA512"
)

// Algorithms returns all algorithms in display order.
func Algorithms() []Algorithm {
	return []Algorithm{MD5, SHA1, SHA256, SHA384, SHA512}
}

func (a Algorithm) String() string {
	return string(a)
}

// New returns a fresh hash.Hash for the algorithm.
func (a Algorithm) New() hash.Hash {
	switch a {
	case MD5:
		return md5.New()
	case SHA1:
		return sha1.New()
	case SHA256:
		return sha256.New()
	case SHA384:
		return sha512.New384()
	case SHA512:
		return sha512.New()
	}
	return nil
}

// ParseAlgorithm parses an algorithm name such as "sha256" or "SHA-256".
func ParseAlgorithm(s string) (Algorithm, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", ""))
	for _, a := range Algorithms() {
		if string(a) == norm {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown algorithm %q", s)
}

// Result is the digest of one algorithm as lowercase hex.
type Result struct {
	Algorithm Algorithm `json:"algorithm"`
	Hex       string    `json:"hex"`
}

// Sum returns the lowercase hex digest of data.
func Sum(a Algorithm, data []byte) string {
	h := a.New()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Compute hashes data with every algorithm.
func Compute(data []byte) []Result {
	results := make([]Result, 0, len(Algorithms()))
	for _, a := range Algorithms() {
		results = append(results, Result{Algorithm: a, Hex: Sum(a, data)})
	}
	return results
}

// ComputeInput decodes input and hashes it with every algorithm.
func ComputeInput(input string, t InputType) ([]Result, error) {
	data, err := Decode(input, t)
	if err != nil {
		return nil, err
	}
	return Compute(data), nil
}

// ComputeReader hashes r in a single pass with every algorithm and returns
// the number of bytes read.
func ComputeReader(r io.Reader) ([]Result, int64, error) {
	algos := Algorithms()
	hashes := make([]hash.Hash, len(algos))
	writers := make([]io.Writer, len(algos))
	for i, a := range algos {
		hashes[i] = a.New()
		writers[i] = hashes[i]
	}

	n, err := io.Copy(io.MultiWriter(writers...), r)
	if err != nil {
		return nil, n, fmt.Errorf("failed to read input: %w", err)
	}

	results := make([]Result, len(algos))
	for i, a := range algos {
		results[i] = Result{Algorithm: a, Hex: hex.EncodeToString(hashes[i].Sum(nil))}
	}
	return results, n, nil
}

// Lookup returns the digest for a in results.
func Lookup(results []Result, a Algorithm) (string, bool) {
	for _, r := range results {
		if r.Algorithm == a {
			return r.Hex, true
		}
	}
	return "", false
}
