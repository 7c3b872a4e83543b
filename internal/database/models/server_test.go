package models

import (
	"database/sql"
	"testing"

	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"
)

// newQueryDB builds a bun.DB that renders Postgres SQL without ever dialing.
func newQueryDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithAddr("127.0.0.1:1"),
		pgdriver.WithInsecure(true),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestScanBatchQueryRotatesOnScannedAt(t *testing.T) {
	model := NewServer(newQueryDB(t), zap.NewNop())

	var servers []*types.Server

	query := model.scanBatchQuery(&servers, 50).String()

	// A batch ordered by last_checked_at would starve online servers once
	// enough offline ones accumulate, since failed checks keep that column
	// NULL. The batch must rotate on the always-advancing scanned_at.
	assert.Contains(t, query, "ORDER BY scanned_at ASC NULLS FIRST")
	assert.NotContains(t, query, "ORDER BY last_checked_at")
	assert.Contains(t, query, "LIMIT 50")
	assert.Contains(t, query, "'approved'")
}

func TestLiveStatusQueryOnline(t *testing.T) {
	model := NewServer(newQueryDB(t), zap.NewNop())

	query := model.liveStatusQuery(7, true, 12, 100).String()

	assert.Contains(t, query, "online = TRUE")
	assert.Contains(t, query, "players_online = 12")
	assert.Contains(t, query, "players_max = 100")
	assert.Contains(t, query, "last_checked_at = now()")
	assert.Contains(t, query, "scanned_at = now()")
}

func TestLiveStatusQueryOffline(t *testing.T) {
	model := NewServer(newQueryDB(t), zap.NewNop())

	query := model.liveStatusQuery(7, false, 0, 0).String()

	// Failed checks clear the public freshness marker but still advance
	// the scan cursor.
	assert.Contains(t, query, "online = FALSE")
	assert.Contains(t, query, "players_online = 0")
	assert.Contains(t, query, "players_max = 0")
	assert.Contains(t, query, "last_checked_at = NULL")
	assert.Contains(t, query, "scanned_at = now()")
}
