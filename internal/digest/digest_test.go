package digest

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var emptyDigests = map[Algorithm]string{
	MD5:    "d41d8cd98f00b204e9800998ecf8427e",
	SHA1:   "da39a3ee5e6b4b0d3255bfef95601890afd80709",
	SHA256: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
	SHA384: "38b060a751ac96384cd9327eb1b1e36a21fdb71114be07434c0cc7bf63f6e1da274edebfe76f65fbd51ad2f14898b95b",
	SHA512: "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e",
}

func TestComputeInput_EmptyText(t *testing.T) {
	results, err := ComputeInput("", Text)
	require.NoError(t, err)
	require.Len(t, results, len(Algorithms()))

	for i, r := range results {
		assert.Equal(t, Algorithms()[i], r.Algorithm, "results keep display order")
		assert.Equal(t, emptyDigests[r.Algorithm], r.Hex, r.Algorithm)
	}
}

func TestComputeInput_SameBytesAcrossEncodings(t *testing.T) {
	inputs := []struct {
		input string
		t     InputType
	}{
		{"abc", Text},
		{"YWJj", Base64Binary},
		{"YWJj\n", File},
		{"616263", HexBinary},
		{"61 62\n63", HexBinary},
	}

	for _, in := range inputs {
		results, err := ComputeInput(in.input, in.t)
		require.NoError(t, err, in)

		md5, _ := Lookup(results, MD5)
		sha1, _ := Lookup(results, SHA1)
		sha256, _ := Lookup(results, SHA256)
		assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", md5, in)
		assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", sha1, in)
		assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sha256, in)
	}
}

func TestComputeInput_EncodingChangesDigest(t *testing.T) {
	asText, err := ComputeInput("abcd", Text)
	require.NoError(t, err)
	asBase64, err := ComputeInput("abcd", Base64Binary)
	require.NoError(t, err)
	asHex, err := ComputeInput("abcd", HexBinary)
	require.NoError(t, err)

	for i := range asText {
		assert.NotEqual(t, asText[i].Hex, asBase64[i].Hex)
		assert.NotEqual(t, asText[i].Hex, asHex[i].Hex)
		assert.NotEqual(t, asBase64[i].Hex, asHex[i].Hex)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		t     InputType
	}{
		{"odd hex", "abc", HexBinary},
		{"non-hex", "zz", HexBinary},
		{"bad base64 char", "YW*j", Base64Binary},
		{"truncated base64", "Y", Base64Binary},
		{"surplus padding", "YQ======", Base64Binary},
		{"padding past a full quantum", "YWJj====", Base64Binary},
		{"padding only", "==", Base64Binary},
		{"padding mid-stream", "YQ==YQ==", Base64Binary},
		{"bad file payload", "!!!", File},
		{"file payload with surplus padding", "YQ======", File},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input, tt.t)
			assert.ErrorIs(t, err, ErrMalformedInput)

			_, err = ComputeInput(tt.input, tt.t)
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestDecode_Base64Padding(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"YQ==", "a"},
		{"YQ=", "a"},
		{"YQ", "a"},
		{"YWI=", "ab"},
		{"YWI", "ab"},
		{"YWJj", "abc"},
		{" YW Jj\n", "abc"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Decode(tt.input, Base64Binary)
			require.NoError(t, err)
			assert.Equal(t, []byte(tt.want), got)
		})
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode("x", InputType("Octal"))
	assert.ErrorIs(t, err, ErrUnknownInputType)
}

func TestEncodeFile_RoundTrip(t *testing.T) {
	original := make([]byte, 4099)
	_, err := rand.Read(original)
	require.NoError(t, err)

	encoded, err := EncodeFile(bytes.NewReader(original))
	require.NoError(t, err)

	decoded, err := Decode(encoded, File)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	fromFile, err := ComputeInput(encoded, File)
	require.NoError(t, err)
	assert.Equal(t, Compute(original), fromFile)
}

func TestComputeReader_MatchesCompute(t *testing.T) {
	data := strings.Repeat("toolbox", 10000)

	results, n, err := ComputeReader(strings.NewReader(data))
	require.NoError(t, err)
	assert.EqualValues(t, len(data), n)
	assert.Equal(t, Compute([]byte(data)), results)
}

func TestParseInputType(t *testing.T) {
	for in, want := range map[string]InputType{
		"text":         Text,
		"Base64Binary": Base64Binary,
		"b64":          Base64Binary,
		"HEX":          HexBinary,
		"file":         File,
	} {
		got, err := ParseInputType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseInputType("binary")
	assert.ErrorIs(t, err, ErrUnknownInputType)
}

func TestParseAlgorithm(t *testing.T) {
	for in, want := range map[string]Algorithm{
		"md5":     MD5,
		"SHA-1":   SHA1,
		"sha256":  SHA256,
		"Sha-384": SHA384,
		"SHA512":  SHA512,
	} {
		got, err := ParseAlgorithm(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseAlgorithm("crc32")
	assert.Error(t, err)
}
