package models

import (
	"context"
	"fmt"

	"github.com/craftlist/craftlist/internal/database/dbretry"
	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ReviewModel handles database operations for reviews.
type ReviewModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewReview creates a new ReviewModel.
func NewReview(db *bun.DB, logger *zap.Logger) *ReviewModel {
	return &ReviewModel{
		db:     db,
		logger: logger.Named("db_review"),
	}
}

// Insert appends one review.
func (r *ReviewModel) Insert(ctx context.Context, review *types.Review) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(review).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert review: %w", err)
		}

		return nil
	})
}

// ListForServer retrieves a server's reviews, newest first.
func (r *ReviewModel) ListForServer(
	ctx context.Context, serverID int64, limit int,
) ([]*types.Review, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Review, error) {
		var reviews []*types.Review

		err := r.db.NewSelect().
			Model(&reviews).
			Where("server_id = ?", serverID).
			Order("created_at DESC").
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews for server %d: %w", serverID, err)
		}

		return reviews, nil
	})
}
