// Package app wires configuration, the mapping store, the hashing service
// and the HTTP transport into a runnable application.
package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"colhash/internal/anonymize"
	"colhash/internal/api"
	"colhash/internal/config"
	internaldb "colhash/internal/db"
	"colhash/internal/db/repository"
	"colhash/internal/middleware"
	"colhash/internal/sqlast"
	"colhash/internal/ui"
)

// Deps holds what New cannot create itself.
type Deps struct {
	Cfg    *config.Config
	Logger *slog.Logger
	// Rand seeds token secrets. Defaults to crypto/rand.
	Rand io.Reader
}

// App is the fully wired application.
type App struct {
	Cfg         *config.Config
	Store       *internaldb.Store
	Repo        *repository.HashRecordRepo
	Service     *anonymize.Service
	Maintenance *internaldb.Maintenance
	Validator   middleware.JWTValidator
	logger      *slog.Logger
}

// New opens the mapping store and wires the service on top of it. The
// caller owns the returned App and must Close it.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	random := deps.Rand
	if random == nil {
		random = rand.Reader
	}

	driver, err := internaldb.ParseDriver(cfg.StoreDriver)
	if err != nil {
		return nil, err
	}
	store, err := internaldb.Open(ctx, driver, cfg.StorePath, cfg.StoreReadPool)
	if err != nil {
		return nil, fmt.Errorf("open mapping store: %w", err)
	}
	logger.Info("mapping store ready", "driver", driver, "path", cfg.StorePath)

	repo := repository.NewHashRecordRepo(store.WriteDB, store.ReadDB)

	svc := anonymize.NewService(
		sqlast.NewCodec(),
		repo,
		anonymize.NewGenerator(random, cfg.TokenAlgorithm),
		logger.With("component", "anonymize"),
	)
	svc.SetDefaultDialect(cfg.Dialect())

	maint, err := internaldb.NewMaintenance(store, repo, cfg.MaintenanceSchedule, logger.With("component", "maintenance"))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("maintenance: %w", err)
	}

	validator, err := middleware.NewValidator(ctx, cfg.Auth)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("auth: %w", err)
	}

	return &App{
		Cfg:         cfg,
		Store:       store,
		Repo:        repo,
		Service:     svc,
		Maintenance: maint,
		Validator:   validator,
		logger:      logger,
	}, nil
}

// Handler builds the HTTP handler. ctx bounds background middleware work.
func (a *App) Handler(ctx context.Context) http.Handler {
	opts := api.RouterOptions{
		Handler:   api.NewHandler(a.Service, a.Store, a.logger.With("component", "api")),
		Validator: a.Validator,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: a.Cfg.RateLimitRPS,
			Burst:             a.Cfg.RateLimitBurst,
		},
		CORSAllowedOrigins: a.Cfg.CORSAllowedOrigins,
		Logger:             a.logger,
	}
	if a.Cfg.UIEnabled {
		h := ui.NewHandler(a.Service, a.Validator, a.Cfg.Dialect(), a.Cfg.IsProduction())
		opts.MountUI = func(r chi.Router) { ui.MountRoutes(r, h, a.logger.With("component", "ui")) }
	}
	return api.NewRouter(ctx, opts)
}

// Close checkpoints and closes the mapping store.
func (a *App) Close(ctx context.Context) error {
	if err := a.Store.Checkpoint(ctx); err != nil {
		a.logger.Warn("final checkpoint failed", "error", err)
	}
	return a.Store.Close()
}
