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

// RankModel handles database operations for rank snapshots.
type RankModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewRank creates a new RankModel.
func NewRank(db *bun.DB, logger *zap.Logger) *RankModel {
	return &RankModel{
		db:     db,
		logger: logger.Named("db_rank"),
	}
}

// UpsertDaily writes daily snapshots in bulk; a recomputation within the same
// date overwrites the prior value. Takes an IDB so callers can run it inside
// the snapshot transaction.
func (r *RankModel) UpsertDaily(ctx context.Context, db bun.IDB, snapshots []*types.DailyRank) error {
	if len(snapshots) == 0 {
		return nil
	}

	_, err := db.NewInsert().
		Model(&snapshots).
		On("CONFLICT (server_id, date) DO UPDATE").
		Set("rank = EXCLUDED.rank").
		Set("votes = EXCLUDED.votes").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert daily ranks: %w", err)
	}

	return nil
}

// InsertHourly appends hourly snapshots in bulk.
func (r *RankModel) InsertHourly(ctx context.Context, snapshots []*types.HourlyRank) error {
	if len(snapshots) == 0 {
		return nil
	}

	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(&snapshots).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert hourly ranks: %w", err)
		}

		return nil
	})
}

// GetDailyHistory retrieves a server's daily snapshots since the given date,
// oldest first.
func (r *RankModel) GetDailyHistory(
	ctx context.Context, serverID int64, since time.Time,
) ([]*types.DailyRank, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.DailyRank, error) {
		var snapshots []*types.DailyRank

		err := r.db.NewSelect().
			Model(&snapshots).
			Where("server_id = ?", serverID).
			Where("date >= ?", since).
			Order("date ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get daily ranks for server %d: %w", serverID, err)
		}

		return snapshots, nil
	})
}

// GetLatestDaily retrieves the most recent daily snapshot for a server.
// Returns nil when no snapshot exists yet.
func (r *RankModel) GetLatestDaily(ctx context.Context, serverID int64) (*types.DailyRank, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.DailyRank, error) {
		var snapshots []*types.DailyRank

		err := r.db.NewSelect().
			Model(&snapshots).
			Where("server_id = ?", serverID).
			Order("date DESC").
			Limit(1).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest daily rank for server %d: %w", serverID, err)
		}

		if len(snapshots) == 0 {
			return nil, nil
		}

		return snapshots[0], nil
	})
}

// PurgeDaily removes daily snapshots older than the cutoff date.
func (r *RankModel) PurgeDaily(ctx context.Context, cutoffDate time.Time) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		result, err := r.db.NewDelete().
			Model((*types.DailyRank)(nil)).
			Where("date < ?", cutoffDate).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to purge daily ranks: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		r.logger.Debug("Purged old daily ranks",
			zap.Int64("rowsAffected", rowsAffected),
			zap.Time("cutoffDate", cutoffDate))

		return nil
	})
}

// PurgeHourly removes hourly snapshots older than the cutoff timestamp.
func (r *RankModel) PurgeHourly(ctx context.Context, cutoff time.Time) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		result, err := r.db.NewDelete().
			Model((*types.HourlyRank)(nil)).
			Where("timestamp < ?", cutoff).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to purge hourly ranks: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		r.logger.Debug("Purged old hourly ranks",
			zap.Int64("rowsAffected", rowsAffected),
			zap.Time("cutoff", cutoff))

		return nil
	})
}
