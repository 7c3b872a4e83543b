// Package scan implements the fleet scanner that refreshes live status for
// every approved listing.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/craftlist/craftlist/internal/database/types/enum"
	"github.com/craftlist/craftlist/internal/progress"
	"github.com/craftlist/craftlist/internal/setup"
	"github.com/craftlist/craftlist/internal/status"
	"github.com/craftlist/craftlist/internal/worker/core"
	"github.com/craftlist/craftlist/pkg/utils"
	"go.uber.org/zap"
)

const (
	// DefaultBatchSize is used when the configured batch size is zero.
	DefaultBatchSize = 50
	// DefaultScanDelay spaces out per-server checks to stay polite to the
	// upstream status APIs.
	DefaultScanDelay = 2 * time.Second
	// DefaultScanInterval is the pause between scan cycles.
	DefaultScanInterval = 5 * time.Minute
)

// serverStore is the slice of the server model the scanner needs.
type serverStore interface {
	GetScanBatch(ctx context.Context, limit int) ([]*types.Server, error)
	UpdateLiveStatus(ctx context.Context, id int64, online bool, playersOnline, playersMax int) error
}

// sampleStore records one status sample per check.
type sampleStore interface {
	InsertSample(ctx context.Context, sample *types.StatusSample) error
}

// iconRefresher reconciles cached icons against freshly observed payloads.
type iconRefresher interface {
	Refresh(ctx context.Context, serverID int64, payload string) error
}

// statusChecker performs one liveness check.
type statusChecker interface {
	Check(ctx context.Context, req status.Request) status.Result
}

// Worker walks the approved fleet in stalest-first batches, recording a
// status sample and refreshing the live fields and icon for each server.
type Worker struct {
	servers  serverStore
	samples  sampleStore
	icons    iconRefresher
	checker  statusChecker
	bar      *progress.Bar
	reporter *core.StatusReporter
	logger   *zap.Logger

	batchSize    int
	scanDelay    time.Duration
	scanInterval time.Duration
}

// New creates a new scan worker.
func New(app *setup.App, bar *progress.Bar, logger *zap.Logger) *Worker {
	cfg := app.Config.Worker

	batchSize := cfg.ScanBatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	scanDelay := time.Duration(cfg.ScanDelay) * time.Millisecond
	if scanDelay <= 0 {
		scanDelay = DefaultScanDelay
	}

	scanInterval := time.Duration(cfg.ScanInterval) * time.Second
	if scanInterval <= 0 {
		scanInterval = DefaultScanInterval
	}

	return &Worker{
		servers:      app.DB.Model().Server(),
		samples:      app.DB.Model().Status(),
		icons:        app.DB.Service().Icon(),
		checker:      app.StatusChecker,
		bar:          bar,
		reporter:     core.NewStatusReporter(app.StatusClient, "scan", logger),
		logger:       logger.Named("scan_worker"),
		batchSize:    batchSize,
		scanDelay:    scanDelay,
		scanInterval: scanInterval,
	}
}

// Start begins the scan worker's main loop.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Scan Worker started", zap.String("workerID", w.reporter.GetWorkerID()))
	w.reporter.Start(ctx)

	defer w.reporter.Stop()

	w.bar.SetTotal(100)

	for {
		if utils.ContextGuardWithLog(ctx, w.logger, "Context cancelled, stopping scan worker") {
			w.bar.SetStepMessage("Shutting down", 100)
			w.reporter.UpdateStatus("Shutting down", 100)

			return
		}

		w.bar.Reset()
		w.reporter.SetHealthy(true)

		w.bar.SetStepMessage("Fetching scan batch", 10)
		w.reporter.UpdateStatus("Fetching scan batch", 10)

		batch, err := w.servers.GetScanBatch(ctx, w.batchSize)
		if err != nil {
			w.logger.Error("Error fetching scan batch", zap.Error(err))
			w.reporter.SetHealthy(false)

			if !utils.ErrorSleep(ctx, time.Minute, w.logger, "scan worker") {
				return
			}

			continue
		}

		if len(batch) == 0 {
			w.bar.SetStepMessage("No servers to scan", 100)
			w.reporter.UpdateStatus("No servers to scan", 100)

			if !utils.IntervalSleep(ctx, w.scanInterval, w.logger, "scan worker") {
				return
			}

			continue
		}

		w.scanBatch(ctx, batch)

		w.bar.SetStepMessage("Scan cycle complete", 100)
		w.reporter.UpdateStatus("Scan cycle complete", 100)
		w.logger.Info("Scan cycle complete", zap.Int("servers", len(batch)))

		if !utils.IntervalSleep(ctx, w.scanInterval, w.logger, "scan worker") {
			return
		}
	}
}

// scanBatch checks each server in order, pausing between checks. Failures
// are isolated per server so one bad listing cannot stall the cycle.
func (w *Worker) scanBatch(ctx context.Context, batch []*types.Server) {
	for i, server := range batch {
		if utils.ContextGuardWithLog(ctx, w.logger, "Context cancelled mid-batch, stopping scan") {
			return
		}

		prog := int64(10 + (i+1)*90/len(batch))
		w.bar.SetStepMessage(fmt.Sprintf("Checking %s (%d/%d)", server.Slug, i+1, len(batch)), prog)
		w.reporter.UpdateStatus("Checking servers", int(prog))

		if err := w.scanServer(ctx, server); err != nil {
			w.logger.Warn("Server scan failed",
				zap.Int64("serverID", server.ID),
				zap.String("slug", server.Slug),
				zap.Error(err))
		}

		if i < len(batch)-1 {
			if !utils.IntervalSleep(ctx, w.scanDelay, w.logger, "scan worker") {
				return
			}
		}
	}
}

// scanServer performs one check and persists every observation it yields.
// The sample is recorded even when the later writes fail, so history stays
// complete.
func (w *Worker) scanServer(ctx context.Context, server *types.Server) error {
	family := server.CheckFamily()

	port := server.JavaPort
	if family == enum.ClientFamilyBedrock {
		port = server.BedrockPort
	}

	started := time.Now()
	result := w.checker.Check(ctx, status.Request{
		Host:   server.Host,
		Port:   port,
		Family: family,
	})
	latency := time.Since(started)

	if err := w.samples.InsertSample(ctx, &types.StatusSample{
		ServerID:      server.ID,
		Online:        result.Online,
		PlayersOnline: result.PlayersOnline,
		PlayersMax:    result.PlayersMax,
		Version:       result.Version,
		LatencyMS:     latency.Milliseconds(),
		CheckedAt:     time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("failed to record status sample: %w", err)
	}

	if result.Online && result.Icon != "" {
		if err := w.icons.Refresh(ctx, server.ID, result.Icon); err != nil {
			w.logger.Debug("Icon refresh skipped",
				zap.Int64("serverID", server.ID),
				zap.Error(err))
		}
	}

	if err := w.servers.UpdateLiveStatus(
		ctx, server.ID, result.Online, result.PlayersOnline, result.PlayersMax,
	); err != nil {
		return fmt.Errorf("failed to update live status: %w", err)
	}

	return nil
}
