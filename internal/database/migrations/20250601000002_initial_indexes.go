package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			// Listing queries: approved servers ordered by votes with
			// creation-time tie break.
			`CREATE INDEX IF NOT EXISTS idx_servers_status_votes
				ON servers (status, votes DESC, created_at ASC)`,
			`CREATE INDEX IF NOT EXISTS idx_servers_owner
				ON servers (owner_id)`,
			`CREATE INDEX IF NOT EXISTS idx_servers_categories
				ON servers USING GIN (categories)`,

			// Scanner rotates through approved servers by scan cursor.
			`CREATE INDEX IF NOT EXISTS idx_servers_scan_cursor
				ON servers (scanned_at ASC NULLS FIRST)
				WHERE status = 'approved'`,

			`CREATE INDEX IF NOT EXISTS idx_status_samples_server_time
				ON status_samples (server_id, checked_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_status_samples_time
				ON status_samples (checked_at)`,

			`CREATE INDEX IF NOT EXISTS idx_rank_hourly_time
				ON rank_hourly (timestamp)`,
			`CREATE INDEX IF NOT EXISTS idx_rank_daily_date
				ON rank_daily (date)`,

			`CREATE INDEX IF NOT EXISTS idx_votes_server
				ON votes (server_id, created_at DESC)`,

			// One vote per voter identity per server per 8-hour bucket.
			// 28800 = 8h in seconds; epoch extraction is immutable for
			// timestamptz so the expression is indexable.
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_votes_cooldown
				ON votes (server_id, voter_id,
					(floor(extract(epoch FROM created_at) / 28800)))`,

			`CREATE INDEX IF NOT EXISTS idx_reviews_server
				ON reviews (server_id, created_at DESC)`,

			`CREATE INDEX IF NOT EXISTS idx_analytics_events_server_time
				ON analytics_events (server_id, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_analytics_events_time
				ON analytics_events (created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_analytics_daily_date
				ON analytics_daily (date)`,

			`CREATE INDEX IF NOT EXISTS idx_promotions_window
				ON promotions (starts_at, ends_at)`,
		}

		for _, index := range indexes {
			if _, err := db.NewRaw(index).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"idx_servers_status_votes",
			"idx_servers_owner",
			"idx_servers_categories",
			"idx_servers_scan_cursor",
			"idx_status_samples_server_time",
			"idx_status_samples_time",
			"idx_rank_hourly_time",
			"idx_rank_daily_date",
			"idx_votes_server",
			"idx_votes_cooldown",
			"idx_reviews_server",
			"idx_analytics_events_server_time",
			"idx_analytics_events_time",
			"idx_analytics_daily_date",
			"idx_promotions_window",
		}

		for _, index := range indexes {
			if _, err := db.NewRaw("DROP INDEX IF EXISTS " + index).Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop index %s: %w", index, err)
			}
		}

		return nil
	})
}
