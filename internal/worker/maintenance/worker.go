// Package maintenance implements the worker that purges expired rows on a
// fixed cadence.
package maintenance

import (
	"context"
	"time"

	"github.com/craftlist/craftlist/internal/database"
	"github.com/craftlist/craftlist/internal/progress"
	"github.com/craftlist/craftlist/internal/setup"
	"github.com/craftlist/craftlist/internal/worker/core"
	"github.com/craftlist/craftlist/pkg/utils"
	"go.uber.org/zap"
)

const (
	// RunInterval is the pause between maintenance cycles.
	RunInterval = 1 * time.Hour

	// DefaultSampleRetentionDays bounds the status sample history.
	DefaultSampleRetentionDays = 90
	// DefaultEventRetentionDays bounds the raw analytics event history.
	DefaultEventRetentionDays = 90
)

// Worker purges aged status samples, raw analytics events, and expired
// promotions.
type Worker struct {
	db       database.Client
	bar      *progress.Bar
	reporter *core.StatusReporter
	logger   *zap.Logger

	sampleRetention time.Duration
	eventRetention  time.Duration
}

// New creates a new maintenance worker.
func New(app *setup.App, bar *progress.Bar, logger *zap.Logger) *Worker {
	cfg := app.Config.Worker

	sampleDays := cfg.SampleRetentionDays
	if sampleDays <= 0 {
		sampleDays = DefaultSampleRetentionDays
	}

	eventDays := cfg.EventRetentionDays
	if eventDays <= 0 {
		eventDays = DefaultEventRetentionDays
	}

	return &Worker{
		db:              app.DB,
		bar:             bar,
		reporter:        core.NewStatusReporter(app.StatusClient, "maintenance", logger),
		logger:          logger.Named("maintenance_worker"),
		sampleRetention: time.Duration(sampleDays) * 24 * time.Hour,
		eventRetention:  time.Duration(eventDays) * 24 * time.Hour,
	}
}

// Start begins the maintenance worker's main loop.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Maintenance Worker started", zap.String("workerID", w.reporter.GetWorkerID()))
	w.reporter.Start(ctx)

	defer w.reporter.Stop()

	w.bar.SetTotal(100)

	for {
		if utils.ContextGuardWithLog(ctx, w.logger, "Context cancelled, stopping maintenance worker") {
			w.bar.SetStepMessage("Shutting down", 100)
			w.reporter.UpdateStatus("Shutting down", 100)

			return
		}

		w.bar.Reset()
		w.reporter.SetHealthy(true)

		now := time.Now().UTC()

		w.bar.SetStepMessage("Purging old status samples", 25)
		w.reporter.UpdateStatus("Purging old status samples", 25)

		if err := w.db.Model().Status().PurgeOldSamples(ctx, now.Add(-w.sampleRetention)); err != nil {
			w.logger.Error("Error purging status samples", zap.Error(err))
			w.reporter.SetHealthy(false)
		}

		w.bar.SetStepMessage("Purging old analytics data", 50)
		w.reporter.UpdateStatus("Purging old analytics data", 50)

		if err := w.db.Service().Analytics().Cleanup(ctx, w.eventRetention); err != nil {
			w.logger.Error("Error purging analytics data", zap.Error(err))
			w.reporter.SetHealthy(false)
		}

		w.bar.SetStepMessage("Purging expired promotions", 75)
		w.reporter.UpdateStatus("Purging expired promotions", 75)

		if err := w.db.Model().Promotion().PurgeExpired(ctx, now); err != nil {
			w.logger.Error("Error purging expired promotions", zap.Error(err))
			w.reporter.SetHealthy(false)
		}

		w.bar.SetStepMessage("Maintenance cycle complete", 100)
		w.reporter.UpdateStatus("Maintenance cycle complete", 100)
		w.logger.Info("Maintenance cycle complete")

		if !utils.IntervalSleep(ctx, RunInterval, w.logger, "maintenance worker") {
			return
		}
	}
}
