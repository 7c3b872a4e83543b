package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/craftlist/craftlist/internal/database/dbretry"
	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ErrUserNotFound is returned when a lookup matches no user row.
var ErrUserNotFound = errors.New("user not found")

// UserModel handles database operations for site accounts.
type UserModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewUser creates a new UserModel.
func NewUser(db *bun.DB, logger *zap.Logger) *UserModel {
	return &UserModel{
		db:     db,
		logger: logger.Named("db_user"),
	}
}

// GetByID retrieves a user by id.
func (r *UserModel) GetByID(ctx context.Context, id int64) (*types.User, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.User, error) {
		user := new(types.User)

		err := r.db.NewSelect().
			Model(user).
			Where("id = ?", id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrUserNotFound
			}

			return nil, fmt.Errorf("failed to get user %d: %w", id, err)
		}

		return user, nil
	})
}

// SetBan records or clears a user ban.
func (r *UserModel) SetBan(ctx context.Context, id int64, reason string, banned bool) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		q := r.db.NewUpdate().
			Model((*types.User)(nil)).
			Where("id = ?", id)

		if banned {
			q = q.Set("banned_at = ?", time.Now().UTC()).Set("ban_reason = ?", reason)
		} else {
			q = q.Set("banned_at = NULL").Set("ban_reason = ''")
		}

		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to update ban for user %d: %w", id, err)
		}

		return nil
	})
}
