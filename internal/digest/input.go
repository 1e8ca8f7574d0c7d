// Package digest decodes user input and computes message digests over it.
package digest

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// InputType selects how raw input text is turned into bytes.
type InputType string

const (
	Text         InputType = "Text"
	Base64Binary InputType = "Base64Binary"
	HexBinary    InputType = "HexBinary"
	// File input is carried as Base64 of the file's bytes.
	File InputType = "File"
)

var (
	// ErrMalformedInput is returned when Base64 or hex input cannot be decoded.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnknownInputType is returned for an unrecognised input type.
	ErrUnknownInputType = errors.New("unknown input type")
)

// InputTypes returns all input types in display order.
func InputTypes() []InputType {
	return []InputType{Text, Base64Binary, HexBinary, File}
}

func (t InputType) String() string {
	return string(t)
}

// ParseInputType parses an input type label or short alias.
func ParseInputType(s string) (InputType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "utf8", "utf-8":
		return Text, nil
	case "base64binary", "base64", "b64":
		return Base64Binary, nil
	case "hexbinary", "hex":
		return HexBinary, nil
	case "file":
		return File, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownInputType, s)
}

// Decode converts input to bytes under the given interpretation.
// Whitespace is ignored in Base64 and hex input; padding is optional for Base64.
func Decode(input string, t InputType) ([]byte, error) {
	switch t {
	case Text:
		return []byte(input), nil
	case Base64Binary, File:
		s := stripSpace(input)
		// Missing padding is restored; surplus padding stays and is rejected
		if n := len(s) % 4; n != 0 {
			s += strings.Repeat("=", 4-n)
		}
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: base64: %v", ErrMalformedInput, err)
		}
		return data, nil
	case HexBinary:
		data, err := hex.DecodeString(stripSpace(input))
		if err != nil {
			return nil, fmt.Errorf("%w: hex: %v", ErrMalformedInput, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownInputType, t)
}

// EncodeFile reads r to the end and returns its contents as standard Base64,
// the form File input is carried in.
func EncodeFile(r io.Reader) (string, error) {
	var buf bytes.Buffer
	enc := base64.NewEncoder(base64.StdEncoding, &buf)
	if _, err := io.Copy(enc, r); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			return -1
		}
		return r
	}, s)
}
