package core_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/craftlist/craftlist/internal/worker/core"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTest(t *testing.T) (*core.Monitor, func()) {
	t.Helper()
	// Start miniredis server
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Create Redis client
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	// Create test logger
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	monitor := core.NewMonitor(client, logger)

	cleanup := func() {
		mr.Close()
		client.Close()
		logger.Sync()
	}

	return monitor, cleanup
}

func TestReportStatus(t *testing.T) {
	t.Parallel()
	monitor, cleanup := setupTest(t)
	defer cleanup()

	ctx := t.Context()
	err := monitor.ReportStatus(ctx, core.Status{
		WorkerID:    "abc123",
		WorkerType:  "scan",
		CurrentTask: "Scanning servers",
		Progress:    40,
		IsHealthy:   true,
	})
	require.NoError(t, err)

	statuses, err := monitor.GetAllStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)

	status := statuses[0]
	assert.Equal(t, "abc123", status.WorkerID)
	assert.Equal(t, "scan", status.WorkerType)
	assert.Equal(t, "Scanning servers", status.CurrentTask)
	assert.Equal(t, 40, status.Progress)
	assert.True(t, status.IsHealthy)
	assert.WithinDuration(t, time.Now(), status.LastSeen, 5*time.Second)
}

func TestGetAllStatuses(t *testing.T) {
	t.Parallel()
	monitor, cleanup := setupTest(t)
	defer cleanup()

	ctx := t.Context()
	workers := []core.Status{
		{WorkerID: "w1", WorkerType: "scan", IsHealthy: true},
		{WorkerID: "w2", WorkerType: "scan", IsHealthy: false},
		{WorkerID: "w3", WorkerType: "rank", IsHealthy: true},
	}
	for _, status := range workers {
		require.NoError(t, monitor.ReportStatus(ctx, status))
	}

	statuses, err := monitor.GetAllStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 3)

	seen := make(map[string]bool)
	for _, status := range statuses {
		seen[status.WorkerID] = true
	}

	assert.True(t, seen["w1"])
	assert.True(t, seen["w2"])
	assert.True(t, seen["w3"])
}

func TestGetAllStatusesEmpty(t *testing.T) {
	t.Parallel()
	monitor, cleanup := setupTest(t)
	defer cleanup()

	statuses, err := monitor.GetAllStatuses(t.Context())
	require.NoError(t, err)
	assert.Empty(t, statuses)
}
