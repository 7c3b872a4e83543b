package service

import (
	"context"
	"errors"
	"testing"

	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVoteStore struct {
	recent    bool
	recentErr error
	insertErr error
	inserted  []*types.Vote
}

func (f *fakeVoteStore) Insert(_ context.Context, vote *types.Vote) error {
	if f.insertErr != nil {
		return f.insertErr
	}

	f.inserted = append(f.inserted, vote)

	return nil
}

func (f *fakeVoteStore) HasRecentVote(_ context.Context, _ int64, _ string) (bool, error) {
	return f.recent, f.recentErr
}

type fakeServerGetter struct {
	server *types.Server
	err    error
}

func (f *fakeServerGetter) GetByID(_ context.Context, _ int64) (*types.Server, error) {
	return f.server, f.err
}

type fakeRankRecomputer struct {
	calls []int64
	err   error
}

func (f *fakeRankRecomputer) MaybeRecompute(_ context.Context, _, currentVotes int64) error {
	f.calls = append(f.calls, currentVotes)

	return f.err
}

func newVoteService(
	votes *fakeVoteStore, servers *fakeServerGetter, ranks *fakeRankRecomputer,
) *VoteService {
	return &VoteService{
		vote:   votes,
		server: servers,
		rank:   ranks,
		logger: zap.NewNop(),
	}
}

func TestCastVote(t *testing.T) {
	votes := &fakeVoteStore{}
	ranks := &fakeRankRecomputer{}
	svc := newVoteService(votes, &fakeServerGetter{server: &types.Server{ID: 1, Votes: 41}}, ranks)

	err := svc.CastVote(context.Background(), 1, "voter-a", "Steve")
	require.NoError(t, err)

	require.Len(t, votes.inserted, 1)
	assert.Equal(t, int64(1), votes.inserted[0].ServerID)
	assert.Equal(t, "voter-a", votes.inserted[0].VoterID)
	assert.Equal(t, "Steve", votes.inserted[0].Username)
	assert.False(t, votes.inserted[0].CreatedAt.IsZero())

	// The counter trigger has already applied the new vote.
	assert.Equal(t, []int64{42}, ranks.calls)
}

func TestCastVoteCooldownPrecheck(t *testing.T) {
	votes := &fakeVoteStore{recent: true}
	ranks := &fakeRankRecomputer{}
	svc := newVoteService(votes, &fakeServerGetter{server: &types.Server{ID: 1}}, ranks)

	err := svc.CastVote(context.Background(), 1, "voter-a", "Steve")
	require.ErrorIs(t, err, ErrVoteCooldown)

	assert.Empty(t, votes.inserted)
	assert.Empty(t, ranks.calls)
}

func TestCastVoteCooldownIndexRace(t *testing.T) {
	// The pre-check can miss a concurrent vote; the unique cooldown index
	// rejects the insert and the violation maps to the same sentinel.
	votes := &fakeVoteStore{
		insertErr: errors.New(`duplicate key value violates unique constraint "idx_votes_cooldown"`),
	}
	ranks := &fakeRankRecomputer{}
	svc := newVoteService(votes, &fakeServerGetter{server: &types.Server{ID: 1}}, ranks)

	err := svc.CastVote(context.Background(), 1, "voter-a", "Steve")
	require.ErrorIs(t, err, ErrVoteCooldown)

	assert.Empty(t, ranks.calls)
}

func TestCastVoteInsertError(t *testing.T) {
	votes := &fakeVoteStore{insertErr: errors.New("connection reset")}
	svc := newVoteService(votes, &fakeServerGetter{server: &types.Server{ID: 1}}, &fakeRankRecomputer{})

	err := svc.CastVote(context.Background(), 1, "voter-a", "Steve")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVoteCooldown)
}

func TestCastVoteUnknownServer(t *testing.T) {
	getterErr := errors.New("server not found")
	svc := newVoteService(&fakeVoteStore{}, &fakeServerGetter{err: getterErr}, &fakeRankRecomputer{})

	err := svc.CastVote(context.Background(), 9, "voter-a", "Steve")
	require.ErrorIs(t, err, getterErr)
}

func TestCastVoteRecomputeFailureIsNonFatal(t *testing.T) {
	votes := &fakeVoteStore{}
	ranks := &fakeRankRecomputer{err: errors.New("lock timeout")}
	svc := newVoteService(votes, &fakeServerGetter{server: &types.Server{ID: 1, Votes: 10}}, ranks)

	err := svc.CastVote(context.Background(), 1, "voter-a", "Steve")
	require.NoError(t, err)
	assert.Len(t, votes.inserted, 1)
}
