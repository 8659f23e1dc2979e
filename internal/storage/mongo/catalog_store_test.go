package mongo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCollectCounts(t *testing.T) {
	t.Parallel()

	rows := []countRow{
		{ProductID: strPtr("p1"), Count: 3},
		{ProductID: strPtr("p2"), Count: 1},
		{ProductID: nil, Count: 2},
		{ProductID: strPtr(""), Count: 4},
	}

	counts, dropped := collectCounts(rows)
	require.Equal(t, map[string]int64{"p1": 3, "p2": 1}, counts)
	require.EqualValues(t, 6, dropped)
}

func TestCollectCounts_Empty(t *testing.T) {
	t.Parallel()

	counts, dropped := collectCounts(nil)
	require.Empty(t, counts)
	require.Zero(t, dropped)
}
