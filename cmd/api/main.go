package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/api/routes"
	"github.com/stockroomhq/stockroom-backend/internal/conn"
	"github.com/stockroomhq/stockroom-backend/internal/registry"
	"github.com/stockroomhq/stockroom-backend/internal/storage"
	"github.com/stockroomhq/stockroom-backend/internal/storage/docstore"
	"github.com/stockroomhq/stockroom-backend/internal/storage/localstore"
	"github.com/stockroomhq/stockroom-backend/internal/storage/memory"
	"github.com/stockroomhq/stockroom-backend/internal/storage/sqlstore"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
	"github.com/stockroomhq/stockroom-backend/pkg/migrate"
	"github.com/stockroomhq/stockroom-backend/pkg/security"
)

const shutdownTimeout = 10 * time.Second

// backendResources holds everything a storage backend contributes to the
// running service: the wired collections, the connection managers the
// readiness probe inspects, the gorm handle the registry can join with, and
// the release hooks invoked at shutdown.
type backendResources struct {
	cols     map[string]storage.Collection
	managers []*conn.Manager
	sqlDB    *gorm.DB
	closers  []func() error
}

func (r *backendResources) release() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return multierr.Combine(errs...)
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	adminHash, err := security.HashPassword(cfg.Admin.Password, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to hash admin credential", err)
		os.Exit(1)
	}

	storageMetrics := metrics.NewStorageMetrics(prometheus.DefaultRegisterer)

	res, err := buildBackend(context.Background(), cfg, logg, storageMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap storage backend", err)
		os.Exit(1)
	}
	defer func() {
		if err := res.release(); err != nil {
			logg.Error(context.Background(), "error releasing storage backend", err)
		}
	}()

	regOpts := []registry.Option{registry.WithLogger(logg)}
	if res.sqlDB != nil {
		regOpts = append(regOpts, registry.WithSQL(res.sqlDB))
	}
	reg, err := registry.New(cfg.Storage.Backend, res.cols, regOpts...)
	if err != nil {
		logg.Error(context.Background(), "failed to build collection registry", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": cfg.Storage.Backend,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, reg, adminHash, res.managers...),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}

// buildBackend wires the collections for the configured storage backend.
func buildBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger, m *metrics.StorageMetrics) (*backendResources, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return buildMemory(cfg, m)
	case config.BackendLocal:
		return buildLocal(ctx, cfg, m)
	case config.BackendDocstore:
		return buildDocstore(ctx, cfg, logg, m)
	case config.BackendSQL:
		return buildSQL(ctx, cfg, logg, m)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func buildMemory(cfg *config.Config, m *metrics.StorageMetrics) (*backendResources, error) {
	res := &backendResources{cols: make(map[string]storage.Collection, len(storage.Collections))}
	seeds := memory.Fixtures()
	for _, name := range storage.Collections {
		col := memory.NewCollection(name, seeds[name])
		res.cols[name] = storage.Instrument(col, cfg.Storage.Backend, name, m)
	}
	return res, nil
}

func buildLocal(ctx context.Context, cfg *config.Config, m *metrics.StorageMetrics) (*backendResources, error) {
	store, err := localstore.Open(cfg.Local.Path)
	if err != nil {
		return nil, err
	}

	res := &backendResources{
		cols:    make(map[string]storage.Collection, len(storage.Collections)),
		closers: []func() error{store.Close},
	}
	for _, name := range storage.Collections {
		col, err := localstore.NewCollection(ctx, store, cfg.Local.SlotPrefix, name)
		if err != nil {
			return nil, multierr.Append(err, store.Close())
		}
		res.cols[name] = storage.Instrument(col, cfg.Storage.Backend, name, m)
	}
	return res, nil
}

func buildDocstore(ctx context.Context, cfg *config.Config, logg *logger.Logger, m *metrics.StorageMetrics) (*backendResources, error) {
	var client *redis.Client
	mgr := conn.New(config.BackendDocstore, func(ctx context.Context, raw any) error {
		rc, ok := raw.(config.RedisConfig)
		if !ok {
			return fmt.Errorf("expected redis config, got %T", raw)
		}
		c, err := docstore.Dial(ctx, rc)
		if err != nil {
			return err
		}
		client = c
		return nil
	}, conn.WithCloser(func(ctx context.Context) error {
		return client.Close()
	}))

	if _, err := mgr.Connect(ctx, cfg.Redis); err != nil {
		return nil, err
	}

	res := &backendResources{
		cols:     make(map[string]storage.Collection, len(storage.Collections)),
		managers: []*conn.Manager{mgr},
		closers:  []func() error{func() error { return mgr.Disconnect(context.Background()) }},
	}
	for _, name := range storage.Collections {
		col := docstore.NewCollection(client, cfg.Redis.DBName, name, cfg.Storage.OpTimeout, logg)
		res.cols[name] = storage.Instrument(col, cfg.Storage.Backend, name, m)
	}
	return res, nil
}

func buildSQL(ctx context.Context, cfg *config.Config, logg *logger.Logger, m *metrics.StorageMetrics) (*backendResources, error) {
	var client *db.Client
	mgr := conn.New(config.BackendSQL, func(ctx context.Context, raw any) error {
		dc, ok := raw.(config.DBConfig)
		if !ok {
			return fmt.Errorf("expected database config, got %T", raw)
		}
		c, err := db.New(ctx, dc, logg)
		if err != nil {
			return err
		}
		client = c
		return nil
	}, conn.WithCloser(func(ctx context.Context) error {
		return client.Close()
	}))

	if _, err := mgr.Connect(ctx, cfg.DB); err != nil {
		return nil, err
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
		return nil, multierr.Append(err, mgr.Disconnect(context.Background()))
	}

	res := &backendResources{
		cols:     make(map[string]storage.Collection, len(storage.Collections)),
		managers: []*conn.Manager{mgr},
		sqlDB:    client.DB(),
		closers:  []func() error{func() error { return mgr.Disconnect(context.Background()) }},
	}
	for _, name := range storage.Collections {
		col := sqlstore.NewCollection(client.DB(), name, cfg.Storage.OpTimeout, logg)
		res.cols[name] = storage.Instrument(col, cfg.Storage.Backend, name, m)
	}
	return res, nil
}
