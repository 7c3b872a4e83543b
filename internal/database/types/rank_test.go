package types_test

import (
	"testing"
	"time"

	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRankPositions(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("orders by votes descending", func(t *testing.T) {
		t.Parallel()

		entries := []types.RankEntry{
			{ServerID: 1, Votes: 42, CreatedAt: base},
			{ServerID: 2, Votes: 50, CreatedAt: base.Add(time.Hour)},
			{ServerID: 3, Votes: 42, CreatedAt: base.Add(2 * time.Hour)},
		}

		positions := types.ComputeRankPositions(entries)
		require.Len(t, positions, 3)

		assert.Equal(t, types.RankPosition{ServerID: 2, Rank: 1, Votes: 50}, positions[0])
		assert.Equal(t, types.RankPosition{ServerID: 1, Rank: 2, Votes: 42}, positions[1])
		assert.Equal(t, types.RankPosition{ServerID: 3, Rank: 3, Votes: 42}, positions[2])
	})

	t.Run("ties break by earlier creation", func(t *testing.T) {
		t.Parallel()

		entries := []types.RankEntry{
			{ServerID: 1, Votes: 10, CreatedAt: base.Add(time.Hour)},
			{ServerID: 2, Votes: 10, CreatedAt: base},
		}

		positions := types.ComputeRankPositions(entries)
		require.Len(t, positions, 2)

		assert.Equal(t, int64(2), positions[0].ServerID)
		assert.Equal(t, int64(1), positions[1].ServerID)
	})

	t.Run("ranks cover one through n", func(t *testing.T) {
		t.Parallel()

		entries := []types.RankEntry{
			{ServerID: 5, Votes: 3, CreatedAt: base},
			{ServerID: 6, Votes: 3, CreatedAt: base},
			{ServerID: 7, Votes: 1, CreatedAt: base},
			{ServerID: 8, Votes: 9, CreatedAt: base},
		}

		positions := types.ComputeRankPositions(entries)
		require.Len(t, positions, 4)

		seen := make(map[int]bool)
		for i, pos := range positions {
			assert.Equal(t, i+1, pos.Rank)
			assert.False(t, seen[pos.Rank], "duplicate rank %d", pos.Rank)
			seen[pos.Rank] = true
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		t.Parallel()

		entries := []types.RankEntry{
			{ServerID: 1, Votes: 1, CreatedAt: base},
			{ServerID: 2, Votes: 2, CreatedAt: base},
		}

		types.ComputeRankPositions(entries)
		assert.Equal(t, int64(1), entries[0].ServerID)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, types.ComputeRankPositions(nil))
	})
}
