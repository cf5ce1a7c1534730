package token

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLength(t *testing.T) {
	for _, length := range []int{0, -2, 3, 7} {
		_, err := New(length)
		assert.Error(t, err, "length %d", length)
	}
}

func TestGenerate(t *testing.T) {
	g, err := New(8)
	require.NoError(t, err)
	assert.Equal(t, 8, g.Length())

	tok, err := g.Generate()
	require.NoError(t, err)
	assert.Len(t, tok, 8)

	_, err = hex.DecodeString(tok)
	assert.NoError(t, err, "token must be hex")
}

func TestGenerate_Unique(t *testing.T) {
	g, err := New(32)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := g.Generate()
		require.NoError(t, err)
		assert.False(t, seen[tok], "duplicate token %s", tok)
		seen[tok] = true
	}
}
