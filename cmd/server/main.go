package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/craftlist/craftlist/internal/rest"
	"github.com/craftlist/craftlist/internal/setup"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Server timeouts.
const (
	ReadTimeout     = 5 * time.Second
	WriteTimeout    = 30 * time.Second
	ShutdownTimeout = 30 * time.Second
)

// DefaultListenAddr is used when no listen address is configured.
const DefaultListenAddr = ":8080"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := setup.InitializeApp(ctx, "server")
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup(context.Background())

	if app.DB == nil {
		app.Logger.Fatal("REST server requires a configured database")
	}

	addr := app.Config.Common.API.ListenAddr
	if addr == "" {
		addr = DefaultListenAddr
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      rest.NewServer(app),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info("REST server started", zap.String("addr", addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		app.Logger.Error("Server exited with error", zap.Error(err))
	}

	app.Logger.Info("Server stopped")
}
