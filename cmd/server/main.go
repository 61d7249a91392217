package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	"presence/internal/platform/config"
	"presence/internal/platform/httpserver"
	"presence/internal/platform/logger"
)

// main wires dependencies, serves the HTTP API and runs the outbox relay
// until SIGINT or SIGTERM. Business logic lives in the internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Info(fmt.Sprintf(format, args...))
	})); err != nil {
		log.Warn("failed to set GOMAXPROCS", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.Close()

	srv := httpserver.New(cfg.Addr, deps.Router())
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting presence", "addr", cfg.Addr, "storage", deps.storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if deps.relay != nil {
		g.Go(func() error {
			log.Info("starting audit outbox relay", "topic", cfg.AuditTopic)
			return deps.relay.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
