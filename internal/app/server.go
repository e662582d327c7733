package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"colhash/internal/config"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the HTTP server and the store maintenance scheduler until ctx
// is cancelled, then shuts both down. If ready is non-nil it receives the
// bound address once the listener is open.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, ready chan<- net.Addr) error {
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	a, err := New(ctx, Deps{Cfg: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			logger.Error("close mapping store", "error", err)
		}
	}()

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}

	srv := &http.Server{
		Handler:           a.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", ln.Addr().String(), "ui", cfg.UIEnabled, "auth", cfg.Auth.Enabled())
		if ready != nil {
			ready <- ln.Addr()
		}
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		a.Maintenance.Start()
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.Maintenance.Stop(shutdownCtx)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
