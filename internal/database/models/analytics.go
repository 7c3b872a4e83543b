package models

import (
	"context"
	"fmt"
	"time"

	"github.com/craftlist/craftlist/internal/database/dbretry"
	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// AnalyticsModel handles database operations for interaction events and
// their daily aggregates.
type AnalyticsModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewAnalytics creates a new AnalyticsModel.
func NewAnalytics(db *bun.DB, logger *zap.Logger) *AnalyticsModel {
	return &AnalyticsModel{
		db:     db,
		logger: logger.Named("db_analytics"),
	}
}

// InsertEvent appends one interaction event. The analytics_rollup trigger
// increments the matching daily aggregate row synchronously.
func (r *AnalyticsModel) InsertEvent(ctx context.Context, event *types.AnalyticsEvent) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(event).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert analytics event: %w", err)
		}

		return nil
	})
}

// GetDailyRange retrieves a server's daily aggregates inside [from, to].
func (r *AnalyticsModel) GetDailyRange(
	ctx context.Context, serverID int64, from, to time.Time,
) ([]*types.DailyAnalytics, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.DailyAnalytics, error) {
		var rows []*types.DailyAnalytics

		err := r.db.NewSelect().
			Model(&rows).
			Where("server_id = ?", serverID).
			Where("date >= ? AND date <= ?", from, to).
			Order("date ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get daily analytics for server %d: %w", serverID, err)
		}

		return rows, nil
	})
}

// PurgeOldEvents removes events older than the cutoff date.
func (r *AnalyticsModel) PurgeOldEvents(ctx context.Context, cutoffDate time.Time) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		result, err := r.db.NewDelete().
			Model((*types.AnalyticsEvent)(nil)).
			Where("created_at < ?", cutoffDate).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to purge old events: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		r.logger.Debug("Purged old analytics events",
			zap.Int64("rowsAffected", rowsAffected),
			zap.Time("cutoffDate", cutoffDate))

		return nil
	})
}

// PurgeOldDaily removes daily aggregates older than the cutoff date.
func (r *AnalyticsModel) PurgeOldDaily(ctx context.Context, cutoffDate time.Time) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		result, err := r.db.NewDelete().
			Model((*types.DailyAnalytics)(nil)).
			Where("date < ?", cutoffDate).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to purge old daily aggregates: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		r.logger.Debug("Purged old daily aggregates",
			zap.Int64("rowsAffected", rowsAffected),
			zap.Time("cutoffDate", cutoffDate))

		return nil
	})
}
