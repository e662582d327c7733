package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"colhash/internal/app"
	"colhash/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("could not load .env", "error", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ready := make(chan net.Addr, 1)
	go func() {
		select {
		case addr := <-ready:
			logger.Info(curlHint(addr.String()))
		case <-ctx.Done():
		}
	}()
	return app.Serve(ctx, cfg, logger, ready)
}

// curlHint is the startup log line showing how to hash a statement against
// the server listening on listenAddr.
func curlHint(listenAddr string) string {
	return "try: curl -X POST -d '{\"sql\":\"SELECT id FROM users\",\"database\":\"mysql\"}' " +
		"'http://" + curlHostForListenAddr(listenAddr) + "/v1/sql?hash=true'"
}

// curlHostForListenAddr turns a listen address into a host:port usable from
// the local machine. Wildcard and empty hosts become localhost.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
