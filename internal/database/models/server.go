package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/craftlist/craftlist/internal/database/dbretry"
	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/craftlist/craftlist/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ErrServerNotFound is returned when a lookup matches no server row.
var ErrServerNotFound = errors.New("server not found")

// ServerModel handles database operations for listed servers.
type ServerModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewServer creates a new ServerModel.
func NewServer(db *bun.DB, logger *zap.Logger) *ServerModel {
	return &ServerModel{
		db:     db,
		logger: logger.Named("db_server"),
	}
}

// ListFilter narrows public listing queries.
type ListFilter struct {
	Category string
	Family   enum.ClientFamily
	Search   string
	Limit    int
	Offset   int
}

// Create inserts a new server submission in pending state.
func (r *ServerModel) Create(ctx context.Context, server *types.Server) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(server).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return nil
	})
}

// GetByID retrieves a single server by id.
func (r *ServerModel) GetByID(ctx context.Context, id int64) (*types.Server, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Server, error) {
		server := new(types.Server)

		err := r.db.NewSelect().
			Model(server).
			Where("id = ?", id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrServerNotFound
			}

			return nil, fmt.Errorf("failed to get server %d: %w", id, err)
		}

		return server, nil
	})
}

// GetBySlug retrieves a single server by its public slug.
func (r *ServerModel) GetBySlug(ctx context.Context, slug string) (*types.Server, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Server, error) {
		server := new(types.Server)

		err := r.db.NewSelect().
			Model(server).
			Where("slug = ?", slug).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrServerNotFound
			}

			return nil, fmt.Errorf("failed to get server %q: %w", slug, err)
		}

		return server, nil
	})
}

// List retrieves approved servers for the public listing, ordered by votes
// with creation time breaking ties.
func (r *ServerModel) List(ctx context.Context, filter ListFilter) ([]*types.Server, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Server, error) {
		var servers []*types.Server

		q := r.db.NewSelect().
			Model(&servers).
			Where("status = ?", enum.ServerStatusApproved)

		if filter.Category != "" {
			q = q.Where("? = ANY (categories)", filter.Category)
		}

		if filter.Family != "" {
			q = q.Where("family IN (?)", bun.In([]enum.ClientFamily{filter.Family, enum.ClientFamilyBoth}))
		}

		if filter.Search != "" {
			q = q.Where("name ILIKE ?", "%"+filter.Search+"%")
		}

		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}

		err := q.Order("votes DESC", "created_at ASC").
			Offset(filter.Offset).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list servers: %w", err)
		}

		return servers, nil
	})
}

// GetByStatus retrieves servers in the given moderation state, newest first.
func (r *ServerModel) GetByStatus(
	ctx context.Context, status enum.ServerStatus, limit int,
) ([]*types.Server, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Server, error) {
		var servers []*types.Server

		err := r.db.NewSelect().
			Model(&servers).
			Where("status = ?", status).
			Order("created_at DESC").
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get servers with status %s: %w", status, err)
		}

		return servers, nil
	})
}

// GetScanBatch retrieves approved servers due for a status check, least
// recently scanned first, never-scanned servers ahead of everything.
// Ordering uses scanned_at rather than last_checked_at so servers that keep
// failing checks still rotate out of the batch.
func (r *ServerModel) GetScanBatch(ctx context.Context, limit int) ([]*types.Server, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Server, error) {
		var servers []*types.Server

		err := r.scanBatchQuery(&servers, limit).Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get scan batch: %w", err)
		}

		return servers, nil
	})
}

func (r *ServerModel) scanBatchQuery(servers *[]*types.Server, limit int) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(servers).
		Where("status = ?", enum.ServerStatusApproved).
		OrderExpr("scanned_at ASC NULLS FIRST").
		Limit(limit)
}

// GetRankEntries retrieves the vote counter and creation time of every
// approved server, in rank order.
func (r *ServerModel) GetRankEntries(ctx context.Context) ([]types.RankEntry, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]types.RankEntry, error) {
		var entries []types.RankEntry

		err := r.db.NewSelect().
			Model((*types.Server)(nil)).
			ColumnExpr("id AS server_id, votes, created_at").
			Where("status = ?", enum.ServerStatusApproved).
			Order("votes DESC", "created_at ASC").
			Scan(ctx, &entries)
		if err != nil {
			return nil, fmt.Errorf("failed to get rank entries: %w", err)
		}

		return entries, nil
	})
}

// Update persists owner-editable fields of a server.
func (r *ServerModel) Update(ctx context.Context, server *types.Server) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		server.UpdatedAt = time.Now().UTC()

		_, err := r.db.NewUpdate().
			Model(server).
			Column("name", "description", "host", "java_port", "bedrock_port",
				"family", "categories", "version_min", "version_max",
				"website", "discord_url", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update server %d: %w", server.ID, err)
		}

		return nil
	})
}

// SetStatus applies an admin moderation transition.
func (r *ServerModel) SetStatus(ctx context.Context, id int64, status enum.ServerStatus) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewUpdate().
			Model((*types.Server)(nil)).
			Set("status = ?", status).
			Set("updated_at = now()").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to set server %d status to %s: %w", id, status, err)
		}

		return nil
	})
}

// UpdateLiveStatus writes the scanner's observation into the server row.
// A failed or offline check zeroes the counts and clears the last-check
// timestamp: stale data is treated as worse than no data.
func (r *ServerModel) UpdateLiveStatus(
	ctx context.Context, id int64, online bool, playersOnline, playersMax int,
) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		q := r.liveStatusQuery(id, online, playersOnline, playersMax)

		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to update live status for server %d: %w", id, err)
		}

		return nil
	})
}

func (r *ServerModel) liveStatusQuery(
	id int64, online bool, playersOnline, playersMax int,
) *bun.UpdateQuery {
	q := r.db.NewUpdate().
		Model((*types.Server)(nil)).
		Set("online = ?", online).
		Set("scanned_at = now()").
		Set("updated_at = now()").
		Where("id = ?", id)

	if online {
		return q.
			Set("players_online = ?", playersOnline).
			Set("players_max = ?", playersMax).
			Set("last_checked_at = now()")
	}

	return q.
		Set("players_online = 0").
		Set("players_max = 0").
		Set("last_checked_at = NULL")
}

// Delete removes a server row; dependent rows cascade via foreign keys.
func (r *ServerModel) Delete(ctx context.Context, id int64) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		result, err := r.db.NewDelete().
			Model((*types.Server)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete server %d: %w", id, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return ErrServerNotFound
		}

		r.logger.Debug("Deleted server", zap.Int64("serverID", id))

		return nil
	})
}
