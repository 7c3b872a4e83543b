package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyticsRollupIncrementsDaily(t *testing.T) {
	// A click event must insert-or-increment the clicks column of the daily
	// aggregate row for (server, UTC date).
	assert.Contains(t, analyticsRollupFunctionSQL, `(NEW.kind = 'click')::int`)
	assert.Contains(t, analyticsRollupFunctionSQL, `(NEW.created_at AT TIME ZONE 'UTC')::date`)
	assert.Contains(t, analyticsRollupFunctionSQL, "ON CONFLICT (server_id, date) DO UPDATE")
	assert.Contains(t, analyticsRollupFunctionSQL,
		"clicks = analytics_daily.clicks + EXCLUDED.clicks")
}

func TestAnalyticsRollupCountsEveryKind(t *testing.T) {
	for _, kind := range []string{"impression", "click", "copy", "vote", "review"} {
		assert.Contains(t, analyticsRollupFunctionSQL, "(NEW.kind = '"+kind+"')::int")
	}
}

func TestAnalyticsRollupUniqueVisitorPredicate(t *testing.T) {
	// unique_visitors only advances for the first event of an ip_hash on a
	// given server and day; the NOT EXISTS check excludes the row itself.
	assert.Contains(t, analyticsRollupFunctionSQL, "e.ip_hash = NEW.ip_hash")
	assert.Contains(t, analyticsRollupFunctionSQL, "e.id <> NEW.id")
	assert.Contains(t, analyticsRollupFunctionSQL, "NOT EXISTS")
}

func TestVoteDeltaMirrorsVoteRows(t *testing.T) {
	assert.Contains(t, voteDeltaFunctionSQL, "votes = votes + 1")
	// Deletions floor at zero rather than letting counter drift go negative.
	assert.Contains(t, voteDeltaFunctionSQL, "votes = greatest(votes - 1, 0)")
	assert.Contains(t, voteDeltaFunctionSQL, "WHERE id = NEW.server_id")
	assert.Contains(t, voteDeltaFunctionSQL, "WHERE id = OLD.server_id")
}
