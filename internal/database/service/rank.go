package service

import (
	"context"
	"fmt"
	"time"

	"github.com/craftlist/craftlist/internal/database/models"
	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

const (
	// rankLockKey is the advisory lock key serializing rank recomputation.
	// The scheduled cadence and the vote-delta path share one entry point,
	// so two writers can never upsert conflicting snapshots for the same day.
	rankLockKey = 0x72616E6B

	// DailyRetention is how long daily snapshots are kept.
	DailyRetention = 90 * 24 * time.Hour
	// HourlyRetention is how long hourly snapshots are kept.
	HourlyRetention = 7 * 24 * time.Hour

	// VoteDeltaThreshold is how far a server's vote counter may drift from
	// its last daily snapshot before an off-schedule recomputation runs.
	VoteDeltaThreshold = 10
)

// RankService owns rank snapshot computation for both cadences.
type RankService struct {
	db     *bun.DB
	server *models.ServerModel
	rank   *models.RankModel
	logger *zap.Logger
}

// NewRank creates a new rank service.
func NewRank(
	db *bun.DB, server *models.ServerModel, rank *models.RankModel, logger *zap.Logger,
) *RankService {
	return &RankService{
		db:     db,
		server: server,
		rank:   rank,
		logger: logger.Named("rank_service"),
	}
}

// SnapshotDaily recomputes every approved server's position and upserts the
// snapshot for today's UTC date, then prunes rows outside the retention
// window. Runs under an advisory lock so concurrent callers serialize.
func (s *RankService) SnapshotDaily(ctx context.Context) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw("SELECT pg_advisory_xact_lock(?)", rankLockKey).Exec(ctx); err != nil {
			return fmt.Errorf("failed to acquire rank lock: %w", err)
		}

		positions, err := s.computePositions(ctx, tx)
		if err != nil {
			return err
		}

		if len(positions) == 0 {
			return nil
		}

		date := time.Now().UTC().Truncate(24 * time.Hour)

		snapshots := make([]*types.DailyRank, len(positions))
		for i, position := range positions {
			snapshots[i] = &types.DailyRank{
				ServerID: position.ServerID,
				Date:     date,
				Rank:     position.Rank,
				Votes:    position.Votes,
			}
		}

		if err := s.rank.UpsertDaily(ctx, tx, snapshots); err != nil {
			return err
		}

		s.logger.Debug("Saved daily rank snapshots", zap.Int("count", len(snapshots)))

		return nil
	})
	if err != nil {
		return fmt.Errorf("daily rank snapshot failed: %w", err)
	}

	return s.rank.PurgeDaily(ctx, time.Now().UTC().Add(-DailyRetention))
}

// SnapshotHourly appends every approved server's position at the current
// hour, then prunes rows outside the retention window.
func (s *RankService) SnapshotHourly(ctx context.Context) error {
	entries, err := s.server.GetRankEntries(ctx)
	if err != nil {
		return err
	}

	if len(entries) > 0 {
		positions := types.ComputeRankPositions(entries)
		timestamp := time.Now().UTC().Truncate(time.Hour)

		snapshots := make([]*types.HourlyRank, len(positions))
		for i, position := range positions {
			snapshots[i] = &types.HourlyRank{
				ServerID:  position.ServerID,
				Timestamp: timestamp,
				Rank:      position.Rank,
				Votes:     position.Votes,
			}
		}

		if err := s.rank.InsertHourly(ctx, snapshots); err != nil {
			return err
		}

		s.logger.Debug("Saved hourly rank snapshots", zap.Int("count", len(snapshots)))
	}

	return s.rank.PurgeHourly(ctx, time.Now().UTC().Add(-HourlyRetention))
}

// MaybeRecompute runs a daily recomputation when a server's vote counter has
// drifted at least VoteDeltaThreshold votes from its last daily snapshot.
// Shares SnapshotDaily's advisory lock with the scheduled cadence.
func (s *RankService) MaybeRecompute(ctx context.Context, serverID, currentVotes int64) error {
	latest, err := s.rank.GetLatestDaily(ctx, serverID)
	if err != nil {
		return err
	}

	if latest != nil {
		delta := currentVotes - latest.Votes
		if delta < 0 {
			delta = -delta
		}

		if delta < VoteDeltaThreshold {
			return nil
		}
	}

	return s.SnapshotDaily(ctx)
}

// computePositions loads approved servers inside the transaction and assigns
// ordinal positions: votes descending, earlier creation time first.
func (s *RankService) computePositions(ctx context.Context, tx bun.Tx) ([]types.RankPosition, error) {
	var entries []types.RankEntry

	err := tx.NewSelect().
		Model((*types.Server)(nil)).
		ColumnExpr("id AS server_id, votes, created_at").
		Where("status = 'approved'").
		Order("votes DESC", "created_at ASC").
		Scan(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to load rank entries: %w", err)
	}

	return types.ComputeRankPositions(entries), nil
}

// History returns a server's daily snapshots for the trailing window.
func (s *RankService) History(ctx context.Context, serverID int64, days int) ([]*types.DailyRank, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	return s.rank.GetDailyHistory(ctx, serverID, since)
}
