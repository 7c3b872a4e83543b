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

// StatusModel handles database operations for status samples.
type StatusModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewStatus creates a new StatusModel.
func NewStatus(db *bun.DB, logger *zap.Logger) *StatusModel {
	return &StatusModel{
		db:     db,
		logger: logger.Named("db_status"),
	}
}

// InsertSample appends one check result. Samples are recorded for every
// check, successful or not.
func (r *StatusModel) InsertSample(ctx context.Context, sample *types.StatusSample) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(sample).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert status sample: %w", err)
		}

		return nil
	})
}

// GetSamples retrieves a server's samples since the given time, oldest first.
func (r *StatusModel) GetSamples(
	ctx context.Context, serverID int64, since time.Time,
) ([]*types.StatusSample, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.StatusSample, error) {
		var samples []*types.StatusSample

		err := r.db.NewSelect().
			Model(&samples).
			Where("server_id = ?", serverID).
			Where("checked_at >= ?", since).
			Order("checked_at ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get samples for server %d: %w", serverID, err)
		}

		return samples, nil
	})
}

// PurgeOldSamples removes samples older than the cutoff date.
func (r *StatusModel) PurgeOldSamples(ctx context.Context, cutoffDate time.Time) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		result, err := r.db.NewDelete().
			Model((*types.StatusSample)(nil)).
			Where("checked_at < ?", cutoffDate).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to purge old samples: %w (cutoffDate=%s)",
				err, cutoffDate.Format(time.RFC3339))
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		r.logger.Debug("Purged old status samples",
			zap.Int64("rowsAffected", rowsAffected),
			zap.Time("cutoffDate", cutoffDate))

		return nil
	})
}
