package scan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/craftlist/craftlist/internal/database/types/enum"
	"github.com/craftlist/craftlist/internal/progress"
	"github.com/craftlist/craftlist/internal/status"
	"github.com/craftlist/craftlist/internal/worker/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errUpdateFailed = errors.New("update failed")

type fakeServerStore struct {
	batch      []*types.Server
	updates    []int64
	failUpdate map[int64]bool
}

func (f *fakeServerStore) GetScanBatch(_ context.Context, _ int) ([]*types.Server, error) {
	return f.batch, nil
}

func (f *fakeServerStore) UpdateLiveStatus(
	_ context.Context, id int64, _ bool, _, _ int,
) error {
	if f.failUpdate[id] {
		return errUpdateFailed
	}

	f.updates = append(f.updates, id)

	return nil
}

type fakeSampleStore struct {
	samples []*types.StatusSample
}

func (f *fakeSampleStore) InsertSample(_ context.Context, sample *types.StatusSample) error {
	f.samples = append(f.samples, sample)
	return nil
}

type fakeIconRefresher struct {
	refreshed []int64
}

func (f *fakeIconRefresher) Refresh(_ context.Context, serverID int64, _ string) error {
	f.refreshed = append(f.refreshed, serverID)
	return nil
}

type fakeChecker struct {
	results map[int]status.Result
}

func (f *fakeChecker) Check(_ context.Context, req status.Request) status.Result {
	return f.results[req.Port]
}

func newTestWorker(servers *fakeServerStore, samples *fakeSampleStore,
	icons *fakeIconRefresher, checker *fakeChecker,
) *Worker {
	return &Worker{
		servers:      servers,
		samples:      samples,
		icons:        icons,
		checker:      checker,
		bar:          progress.NewBar(100, 25, "test"),
		reporter:     core.NewStatusReporter(nil, "scan", zap.NewNop()),
		logger:       zap.NewNop(),
		batchSize:    DefaultBatchSize,
		scanDelay:    time.Millisecond,
		scanInterval: time.Minute,
	}
}

func testServer(id int64, slug string) *types.Server {
	return &types.Server{
		ID:       id,
		Slug:     slug,
		Host:     slug + ".example.com",
		JavaPort: 25565,
		Family:   enum.ClientFamilyJava,
		Status:   enum.ServerStatusApproved,
	}
}

func TestScanBatchRecordsSamples(t *testing.T) {
	t.Parallel()

	servers := &fakeServerStore{
		batch: []*types.Server{
			testServer(1, "alpha"),
			testServer(2, "beta"),
			testServer(3, "gamma"),
		},
	}
	samples := &fakeSampleStore{}
	icons := &fakeIconRefresher{}
	checker := &fakeChecker{results: map[int]status.Result{
		25565: {Online: true, PlayersOnline: 12, PlayersMax: 100},
	}}

	w := newTestWorker(servers, samples, icons, checker)
	w.scanBatch(context.Background(), servers.batch)

	require.Len(t, samples.samples, 3)
	assert.Equal(t, []int64{1, 2, 3}, servers.updates)

	for _, sample := range samples.samples {
		assert.True(t, sample.Online)
		assert.Equal(t, 12, sample.PlayersOnline)
	}
}

func TestScanBatchIsolatesFailures(t *testing.T) {
	t.Parallel()

	servers := &fakeServerStore{
		batch: []*types.Server{
			testServer(1, "alpha"),
			testServer(2, "beta"),
			testServer(3, "gamma"),
		},
		failUpdate: map[int64]bool{2: true},
	}
	samples := &fakeSampleStore{}
	icons := &fakeIconRefresher{}
	checker := &fakeChecker{results: map[int]status.Result{
		25565: {Online: true, PlayersOnline: 5, PlayersMax: 20},
	}}

	w := newTestWorker(servers, samples, icons, checker)
	w.scanBatch(context.Background(), servers.batch)

	// The failed update must not prevent later servers from being scanned,
	// and the sample for the failed server is still recorded.
	require.Len(t, samples.samples, 3)
	assert.Equal(t, []int64{1, 3}, servers.updates)
}

func TestScanServerRefreshesIconWhenOnline(t *testing.T) {
	t.Parallel()

	servers := &fakeServerStore{}
	samples := &fakeSampleStore{}
	icons := &fakeIconRefresher{}
	checker := &fakeChecker{results: map[int]status.Result{
		25565: {Online: true, Icon: "aWNvbi1ieXRlcw=="},
		19132: {Online: false},
	}}

	w := newTestWorker(servers, samples, icons, checker)

	require.NoError(t, w.scanServer(context.Background(), testServer(1, "alpha")))

	offline := testServer(2, "beta")
	offline.Family = enum.ClientFamilyBedrock
	offline.BedrockPort = 19132
	require.NoError(t, w.scanServer(context.Background(), offline))

	// Only the online server with an icon payload triggers a refresh.
	assert.Equal(t, []int64{1}, icons.refreshed)
}

func TestScanServerZeroesCountsWhenOffline(t *testing.T) {
	t.Parallel()

	servers := &fakeServerStore{}
	samples := &fakeSampleStore{}
	checker := &fakeChecker{results: map[int]status.Result{}}

	w := newTestWorker(servers, samples, &fakeIconRefresher{}, checker)

	require.NoError(t, w.scanServer(context.Background(), testServer(7, "ghost")))

	require.Len(t, samples.samples, 1)
	assert.False(t, samples.samples[0].Online)
	assert.Zero(t, samples.samples[0].PlayersOnline)
	assert.Equal(t, []int64{7}, servers.updates)
}
