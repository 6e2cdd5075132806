package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUCIIntent(t *testing.T) {
	t.Parallel()

	intent, err := ParseUCIIntent("e2e4")
	require.NoError(t, err)
	require.NotNil(t, intent.Origin)
	assert.Equal(t, "e2", intent.Origin.String())
	assert.Equal(t, "e4", intent.Target.String())
	assert.Empty(t, intent.Promotion)

	intent, err = ParseUCIIntent("e7e8q")
	require.NoError(t, err)
	assert.Equal(t, Queen, intent.Promotion)

	intent, err = ParseUCIIntent("a7a8n")
	require.NoError(t, err)
	assert.Equal(t, Knight, intent.Promotion)

	for _, bad := range []string{"", "e2", "e2e", "e2e4qq", "z2e4", "e2z4", "e9e4", "e7e8x"} {
		_, err := ParseUCIIntent(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestParseSquare(t *testing.T) {
	t.Parallel()

	sq, err := ParseSquare("a1")
	require.NoError(t, err)
	assert.Equal(t, Square{File: 1, Rank: 1}, sq)

	sq, err = ParseSquare("h8")
	require.NoError(t, err)
	assert.Equal(t, Square{File: 8, Rank: 8}, sq)

	for _, bad := range []string{"", "a", "a9", "i1", "11", "aa"} {
		_, err := ParseSquare(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
