package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftlist/craftlist/internal/progress"
	"github.com/craftlist/craftlist/internal/setup"
	"github.com/craftlist/craftlist/internal/worker/maintenance"
	"github.com/craftlist/craftlist/internal/worker/rank"
	"github.com/craftlist/craftlist/internal/worker/scan"
	"github.com/craftlist/craftlist/pkg/utils"
	"github.com/sourcegraph/conc"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// ScanWorker refreshes live status for approved listings.
	ScanWorker = "scan"

	// RankWorker takes hourly and daily leaderboard snapshots.
	RankWorker = "rank"

	// MaintenanceWorker purges expired rows.
	MaintenanceWorker = "maintenance"
)

// ctxWorker is the interface every worker loop implements.
type ctxWorker interface {
	Start(ctx context.Context)
}

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "worker",
		Usage: "Start the craftlist workers",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Value:   1,
				Usage:   "Number of workers to start",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  ScanWorker,
				Usage: "Start fleet scan workers",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runWorkers(ctx, ScanWorker, c.Int("workers"))
				},
			},
			{
				Name:  RankWorker,
				Usage: "Start rank snapshot worker",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runWorkers(ctx, RankWorker, 1)
				},
			},
			{
				Name:  MaintenanceWorker,
				Usage: "Start maintenance worker",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runWorkers(ctx, MaintenanceWorker, 1)
				},
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

// runWorkers starts multiple instances of a worker type and blocks until
// they stop.
func runWorkers(ctx context.Context, workerType string, count int64) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := setup.InitializeApp(ctx, "worker")
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup(ctx)

	if app.DB == nil {
		return cli.Exit("workers require a configured database", 1)
	}

	bars := make([]*progress.Bar, count)
	for i := range count {
		bars[i] = progress.NewBar(100, 25, fmt.Sprintf("Worker %d", i))
	}

	renderer := progress.NewRenderer(bars)
	go renderer.Render()

	var wg conc.WaitGroup

	for i := range count {
		workerLogger := app.Logger.Named(fmt.Sprintf("%s_worker_%d", workerType, i))
		bar := bars[i]

		var w ctxWorker

		switch workerType {
		case ScanWorker:
			w = scan.New(app, bar, workerLogger)
		case RankWorker:
			w = rank.New(app, bar, workerLogger)
		case MaintenanceWorker:
			w = maintenance.New(app, bar, workerLogger)
		default:
			return cli.Exit("invalid worker type: "+workerType, 1)
		}

		wg.Go(func() {
			runWorker(ctx, w, workerLogger)
		})
	}

	log.Printf("Started %d %s workers", count, workerType)
	wg.Wait()
	renderer.Stop()
	log.Println("All workers have finished. Exiting.")

	return nil
}

// runWorker runs a single worker in a loop with error recovery.
func runWorker(ctx context.Context, w ctxWorker, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Context cancelled, stopping worker")
			return
		default:
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Error("Worker execution failed",
							zap.String("worker_type", fmt.Sprintf("%T", w)),
							zap.Any("panic", r),
						)
						logger.Info("Restarting worker in 5 seconds...")
						utils.ContextSleep(ctx, 5*time.Second)
					}
				}()

				logger.Info("Starting worker")
				w.Start(ctx)
			}()

			if ctx.Err() != nil {
				continue
			}

			logger.Warn("Worker stopped unexpectedly",
				zap.String("worker_type", fmt.Sprintf("%T", w)),
			)
			utils.ContextSleep(ctx, 5*time.Second)
		}
	}
}
