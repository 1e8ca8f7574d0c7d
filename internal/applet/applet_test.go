package applet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroups(t *testing.T) {
	groups := Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Generators", groups[0].Title)
	require.Len(t, groups[0].Applets, 2)
}

func TestFind(t *testing.T) {
	a, ok := Find(PathHashDigest)
	require.True(t, ok)
	assert.Equal(t, "Hash Digest Generator", a.Title)

	_, ok = Find("generator/missing")
	assert.False(t, ok)
}

func TestAll_UniquePaths(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range All() {
		assert.False(t, seen[a.Path], "duplicate path %s", a.Path)
		seen[a.Path] = true
	}
}
