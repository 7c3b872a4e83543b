package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// servers.votes mirrors the count of vote rows. The counter is
// trigger-maintained, not recomputed on read.
const voteDeltaFunctionSQL = `CREATE OR REPLACE FUNCTION apply_vote_delta() RETURNS trigger AS $$
BEGIN
	IF TG_OP = 'INSERT' THEN
		UPDATE servers SET votes = votes + 1, updated_at = now()
			WHERE id = NEW.server_id;
		RETURN NEW;
	ELSIF TG_OP = 'DELETE' THEN
		UPDATE servers SET votes = greatest(votes - 1, 0), updated_at = now()
			WHERE id = OLD.server_id;
		RETURN OLD;
	END IF;
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`

// Each analytics event increments the matching daily aggregate row in place,
// creating the row when absent.
const analyticsRollupFunctionSQL = `CREATE OR REPLACE FUNCTION apply_analytics_event() RETURNS trigger AS $$
BEGIN
	INSERT INTO analytics_daily
		(server_id, date, impressions, clicks, copies, votes, reviews, unique_visitors)
	VALUES (
		NEW.server_id,
		(NEW.created_at AT TIME ZONE 'UTC')::date,
		(NEW.kind = 'impression')::int,
		(NEW.kind = 'click')::int,
		(NEW.kind = 'copy')::int,
		(NEW.kind = 'vote')::int,
		(NEW.kind = 'review')::int,
		(NOT EXISTS (
			SELECT 1 FROM analytics_events e
			WHERE e.server_id = NEW.server_id
				AND e.ip_hash = NEW.ip_hash
				AND (e.created_at AT TIME ZONE 'UTC')::date =
					(NEW.created_at AT TIME ZONE 'UTC')::date
				AND e.id <> NEW.id
		))::int
	)
	ON CONFLICT (server_id, date) DO UPDATE SET
		impressions = analytics_daily.impressions + EXCLUDED.impressions,
		clicks = analytics_daily.clicks + EXCLUDED.clicks,
		copies = analytics_daily.copies + EXCLUDED.copies,
		votes = analytics_daily.votes + EXCLUDED.votes,
		reviews = analytics_daily.reviews + EXCLUDED.reviews,
		unique_visitors = analytics_daily.unique_visitors + EXCLUDED.unique_visitors;
	RETURN NEW;
END;
$$ LANGUAGE plpgsql`

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		statements := []string{
			voteDeltaFunctionSQL,

			`DROP TRIGGER IF EXISTS votes_counter ON votes`,
			`CREATE TRIGGER votes_counter
				AFTER INSERT OR DELETE ON votes
				FOR EACH ROW EXECUTE FUNCTION apply_vote_delta()`,

			analyticsRollupFunctionSQL,

			`DROP TRIGGER IF EXISTS analytics_rollup ON analytics_events`,
			`CREATE TRIGGER analytics_rollup
				AFTER INSERT ON analytics_events
				FOR EACH ROW EXECUTE FUNCTION apply_analytics_event()`,
		}

		for _, statement := range statements {
			if _, err := db.NewRaw(statement).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create trigger: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		statements := []string{
			`DROP TRIGGER IF EXISTS analytics_rollup ON analytics_events`,
			`DROP FUNCTION IF EXISTS apply_analytics_event`,
			`DROP TRIGGER IF EXISTS votes_counter ON votes`,
			`DROP FUNCTION IF EXISTS apply_vote_delta`,
		}

		for _, statement := range statements {
			if _, err := db.NewRaw(statement).Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop trigger: %w", err)
			}
		}

		return nil
	})
}
