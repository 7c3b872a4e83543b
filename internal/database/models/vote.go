package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/craftlist/craftlist/internal/database/dbretry"
	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// VoteModel handles database operations for votes.
type VoteModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewVote creates a new VoteModel.
func NewVote(db *bun.DB, logger *zap.Logger) *VoteModel {
	return &VoteModel{
		db:     db,
		logger: logger.Named("db_vote"),
	}
}

// Insert appends one vote. The database-side cooldown index may still reject
// the row when two requests race; IsCooldownViolation identifies that case.
func (r *VoteModel) Insert(ctx context.Context, vote *types.Vote) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(vote).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}

		return nil
	})
}

// HasRecentVote reports whether the voter identity has voted for the server
// within the cooldown window.
func (r *VoteModel) HasRecentVote(
	ctx context.Context, serverID int64, voterID string,
) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		cutoff := time.Now().UTC().Add(-types.VoteCooldown)

		exists, err := r.db.NewSelect().
			Model((*types.Vote)(nil)).
			Where("server_id = ?", serverID).
			Where("voter_id = ?", voterID).
			Where("created_at >= ?", cutoff).
			Exists(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to check recent vote: %w", err)
		}

		return exists, nil
	})
}

// ListForServer retrieves a server's votes, newest first.
func (r *VoteModel) ListForServer(ctx context.Context, serverID int64, limit int) ([]*types.Vote, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Vote, error) {
		var votes []*types.Vote

		err := r.db.NewSelect().
			Model(&votes).
			Where("server_id = ?", serverID).
			Order("created_at DESC").
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list votes for server %d: %w", serverID, err)
		}

		return votes, nil
	})
}

// IsCooldownViolation reports whether an insert error came from the
// cooldown unique index.
func IsCooldownViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "idx_votes_cooldown")
}
