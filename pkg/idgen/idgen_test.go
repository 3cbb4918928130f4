package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIsPrefixedAndUnique(t *testing.T) {
	require.NoError(t, Init(3))

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := Next(PrefixOrder)
		assert.True(t, strings.HasPrefix(id, "ORD-"), id)
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
}

func TestInitRejectsOutOfRangeNode(t *testing.T) {
	assert.Error(t, Init(5000))
}
