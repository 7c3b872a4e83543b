package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/craftlist/craftlist/internal/database/models"
	"github.com/craftlist/craftlist/internal/database/types"
	"go.uber.org/zap"
)

// ErrVoteCooldown is returned when a voter identity has already voted for the
// server within the cooldown window.
var ErrVoteCooldown = errors.New("already voted for this server within the last 8 hours")

// voteStore is the slice of the vote model CastVote depends on.
type voteStore interface {
	Insert(ctx context.Context, vote *types.Vote) error
	HasRecentVote(ctx context.Context, serverID int64, voterID string) (bool, error)
}

// serverGetter resolves a server row by id.
type serverGetter interface {
	GetByID(ctx context.Context, id int64) (*types.Server, error)
}

// rankRecomputer decides whether a vote warrants an off-schedule rank pass.
type rankRecomputer interface {
	MaybeRecompute(ctx context.Context, serverID, currentVotes int64) error
}

// VoteService handles vote-related business logic.
type VoteService struct {
	vote   voteStore
	server serverGetter
	rank   rankRecomputer
	logger *zap.Logger
}

// NewVote creates a new vote service.
func NewVote(
	vote *models.VoteModel, server *models.ServerModel, rank *RankService, logger *zap.Logger,
) *VoteService {
	return &VoteService{
		vote:   vote,
		server: server,
		rank:   rank,
		logger: logger.Named("vote_service"),
	}
}

// CastVote records one vote for a server. The cooldown is checked before the
// insert for a friendly error; the unique cooldown index closes the remaining
// race window. A successful vote may trigger an off-schedule rank
// recomputation when the counter has drifted far enough.
func (s *VoteService) CastVote(
	ctx context.Context, serverID int64, voterID, username string,
) error {
	server, err := s.server.GetByID(ctx, serverID)
	if err != nil {
		return err
	}

	recent, err := s.vote.HasRecentVote(ctx, serverID, voterID)
	if err != nil {
		return err
	}

	if recent {
		return ErrVoteCooldown
	}

	err = s.vote.Insert(ctx, &types.Vote{
		ServerID:  serverID,
		VoterID:   voterID,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if models.IsCooldownViolation(err) {
			return ErrVoteCooldown
		}

		return fmt.Errorf("failed to cast vote: %w", err)
	}

	// The insert trigger has already advanced the counter by one.
	if err := s.rank.MaybeRecompute(ctx, serverID, server.Votes+1); err != nil {
		s.logger.Warn("Failed to recompute ranks after vote",
			zap.Error(err),
			zap.Int64("serverID", serverID))
		// The scheduled cadence will catch up.
	}

	return nil
}
