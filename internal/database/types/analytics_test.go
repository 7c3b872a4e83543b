package types_test

import (
	"testing"

	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("totals and rates", func(t *testing.T) {
		t.Parallel()

		rows := []*types.DailyAnalytics{
			{Impressions: 600, Clicks: 60, Copies: 20, Votes: 5, Reviews: 1, UniqueVisitors: 300},
			{Impressions: 400, Clicks: 40, Copies: 30, Votes: 3, Reviews: 2, UniqueVisitors: 150},
		}

		summary := types.Summarize(7, rows)

		assert.Equal(t, int64(7), summary.ServerID)
		assert.Equal(t, 2, summary.Days)
		assert.Equal(t, int64(1000), summary.Impressions)
		assert.Equal(t, int64(100), summary.Clicks)
		assert.Equal(t, int64(50), summary.Copies)
		assert.Equal(t, int64(8), summary.Votes)
		assert.Equal(t, int64(3), summary.Reviews)
		assert.Equal(t, int64(450), summary.UniqueVisitors)
		assert.InDelta(t, 0.1, summary.ClickRate, 1e-9)
		assert.InDelta(t, 0.05, summary.CopyRate, 1e-9)
		assert.Equal(t, int64(25), summary.EstimatedJoins)
	})

	t.Run("no impressions yields zero rates", func(t *testing.T) {
		t.Parallel()

		rows := []*types.DailyAnalytics{{Copies: 3}}

		summary := types.Summarize(1, rows)

		assert.Zero(t, summary.ClickRate)
		assert.Zero(t, summary.CopyRate)
		assert.Equal(t, int64(1), summary.EstimatedJoins)
	})

	t.Run("no rows", func(t *testing.T) {
		t.Parallel()

		summary := types.Summarize(1, nil)

		assert.Zero(t, summary.Days)
		assert.Zero(t, summary.Impressions)
		assert.Zero(t, summary.EstimatedJoins)
	})
}
