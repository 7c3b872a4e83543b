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

// IconModel handles database operations for cached server icons.
type IconModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewIcon creates a new IconModel.
func NewIcon(db *bun.DB, logger *zap.Logger) *IconModel {
	return &IconModel{
		db:     db,
		logger: logger.Named("db_icon"),
	}
}

// GetHash returns the stored content hash for a server's icon, or the empty
// string when no icon is cached.
func (r *IconModel) GetHash(ctx context.Context, serverID int64) (string, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (string, error) {
		var hash string

		err := r.db.NewSelect().
			Model((*types.ServerIcon)(nil)).
			Column("hash").
			Where("server_id = ?", serverID).
			Scan(ctx, &hash)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", nil
			}

			return "", fmt.Errorf("failed to get icon hash for server %d: %w", serverID, err)
		}

		return hash, nil
	})
}

// Get retrieves a server's cached icon.
func (r *IconModel) Get(ctx context.Context, serverID int64) (*types.ServerIcon, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.ServerIcon, error) {
		icon := new(types.ServerIcon)

		err := r.db.NewSelect().
			Model(icon).
			Where("server_id = ?", serverID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}

			return nil, fmt.Errorf("failed to get icon for server %d: %w", serverID, err)
		}

		return icon, nil
	})
}

// Upsert writes a validated icon keyed by server id, overwriting any prior
// payload for the server.
func (r *IconModel) Upsert(ctx context.Context, icon *types.ServerIcon) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		icon.UpdatedAt = time.Now().UTC()

		_, err := r.db.NewInsert().
			Model(icon).
			On("CONFLICT (server_id) DO UPDATE").
			Set("data = EXCLUDED.data").
			Set("hash = EXCLUDED.hash").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert icon for server %d: %w", icon.ServerID, err)
		}

		return nil
	})
}

// Delete removes a server's cached icon, if any.
func (r *IconModel) Delete(ctx context.Context, serverID int64) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewDelete().
			Model((*types.ServerIcon)(nil)).
			Where("server_id = ?", serverID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete icon for server %d: %w", serverID, err)
		}

		return nil
	})
}
