// Package rank implements the worker that takes hourly and daily leaderboard
// snapshots.
package rank

import (
	"context"
	"time"

	"github.com/craftlist/craftlist/internal/database/service"
	"github.com/craftlist/craftlist/internal/progress"
	"github.com/craftlist/craftlist/internal/setup"
	"github.com/craftlist/craftlist/internal/worker/core"
	"github.com/craftlist/craftlist/pkg/utils"
	"go.uber.org/zap"
)

// Worker wakes at the top of every hour to snapshot the hourly leaderboard,
// and once per UTC day to snapshot the daily one.
type Worker struct {
	ranks    *service.RankService
	bar      *progress.Bar
	reporter *core.StatusReporter
	logger   *zap.Logger
}

// New creates a new rank worker.
func New(app *setup.App, bar *progress.Bar, logger *zap.Logger) *Worker {
	return &Worker{
		ranks:    app.DB.Service().Rank(),
		bar:      bar,
		reporter: core.NewStatusReporter(app.StatusClient, "rank", logger),
		logger:   logger.Named("rank_worker"),
	}
}

// Start begins the rank worker's main loop.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Rank Worker started", zap.String("workerID", w.reporter.GetWorkerID()))
	w.reporter.Start(ctx)

	defer w.reporter.Stop()

	w.bar.SetTotal(100)

	var lastDaily time.Time

	for {
		if utils.ContextGuardWithLog(ctx, w.logger, "Context cancelled, stopping rank worker") {
			w.bar.SetStepMessage("Shutting down", 100)
			w.reporter.UpdateStatus("Shutting down", 100)

			return
		}

		// Wait until the top of the next hour so snapshots land on stable
		// timestamps.
		nextHour := time.Now().UTC().Truncate(time.Hour).Add(time.Hour)
		w.bar.SetStepMessage("Waiting for next snapshot", 0)
		w.reporter.UpdateStatus("Waiting for next snapshot", 0)

		if utils.ContextSleepUntilWithLog(ctx, nextHour, w.logger,
			"Context cancelled during wait, stopping rank worker") == utils.SleepCancelled {
			return
		}

		w.bar.Reset()
		w.reporter.SetHealthy(true)

		w.bar.SetStepMessage("Taking hourly snapshot", 40)
		w.reporter.UpdateStatus("Taking hourly snapshot", 40)

		if err := w.ranks.SnapshotHourly(ctx); err != nil {
			w.logger.Error("Error taking hourly rank snapshot", zap.Error(err))
			w.reporter.SetHealthy(false)
		}

		// The first snapshot of each UTC day also refreshes the daily ranks.
		today := time.Now().UTC().Truncate(24 * time.Hour)
		if today.After(lastDaily) {
			w.bar.SetStepMessage("Taking daily snapshot", 80)
			w.reporter.UpdateStatus("Taking daily snapshot", 80)

			if err := w.ranks.SnapshotDaily(ctx); err != nil {
				w.logger.Error("Error taking daily rank snapshot", zap.Error(err))
				w.reporter.SetHealthy(false)
			} else {
				lastDaily = today
			}
		}

		w.bar.SetStepMessage("Snapshots complete", 100)
		w.reporter.UpdateStatus("Snapshots complete", 100)
	}
}
