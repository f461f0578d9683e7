package catalog

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestMakesAreUnique(t *testing.T) {
	require.Len(t, Makes, 20)

	seen := make(map[string]struct{}, len(Makes))
	for _, m := range Makes {
		_, dup := seen[m]
		require.False(t, dup, "duplicate make %q", m)
		seen[m] = struct{}{}
	}
}

func TestColors(t *testing.T) {
	require.Len(t, Colors, 20)
	require.Contains(t, Colors, "Navy Blue")
}
