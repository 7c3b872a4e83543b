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

// PromotionModel handles database operations for sponsored listings.
type PromotionModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPromotion creates a new PromotionModel.
func NewPromotion(db *bun.DB, logger *zap.Logger) *PromotionModel {
	return &PromotionModel{
		db:     db,
		logger: logger.Named("db_promotion"),
	}
}

// Create inserts a sponsored listing slot.
func (r *PromotionModel) Create(ctx context.Context, promotion *types.Promotion) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(promotion).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create promotion: %w", err)
		}

		return nil
	})
}

// GetActive retrieves promotions covering the given instant, highest tier first.
func (r *PromotionModel) GetActive(ctx context.Context, now time.Time) ([]*types.Promotion, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Promotion, error) {
		var promotions []*types.Promotion

		err := r.db.NewSelect().
			Model(&promotions).
			Where("starts_at <= ?", now).
			Where("ends_at > ?", now).
			Order("tier DESC", "created_at ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get active promotions: %w", err)
		}

		return promotions, nil
	})
}

// PurgeExpired removes promotions that ended before the cutoff.
func (r *PromotionModel) PurgeExpired(ctx context.Context, cutoff time.Time) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		result, err := r.db.NewDelete().
			Model((*types.Promotion)(nil)).
			Where("ends_at < ?", cutoff).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to purge expired promotions: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		r.logger.Debug("Purged expired promotions",
			zap.Int64("rowsAffected", rowsAffected),
			zap.Time("cutoff", cutoff))

		return nil
	})
}
