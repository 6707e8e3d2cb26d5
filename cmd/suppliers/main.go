package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/supplier-service/cmd/suppliers/cli"
	"github.com/odyssey-erp/supplier-service/internal/app"
	"github.com/odyssey-erp/supplier-service/internal/observability"
	"github.com/odyssey-erp/supplier-service/internal/platform/cache"
	"github.com/odyssey-erp/supplier-service/internal/platform/db"
	"github.com/odyssey-erp/supplier-service/internal/suppliers"
	"github.com/odyssey-erp/supplier-service/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		if err := runJobsCLI(ctx, cfg, os.Args[2:]); err != nil {
			logger.Error("jobs cli", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("supplier service", slog.Any("error", err))
		os.Exit(1)
	}
}

func runJobsCLI(ctx context.Context, cfg *app.Config, args []string) error {
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() { _ = jobsCLI.Close() }()
	return jobsCLI.Run(ctx, args, os.Stdout)
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, db.Config{DSN: cfg.PGDSN, MaxConns: cfg.PGMaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.PGBootstrapSchema {
		if err := db.EnsureSchema(ctx, pool, suppliers.Schema...); err != nil {
			return err
		}
		logger.Info("supplier schema ensured")
	}

	metrics := observability.NewMetrics()

	var redisClient *redis.Client
	if cfg.CacheEnabled() {
		redisClient, err = cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			// The service keeps running against Postgres alone.
			logger.Warn("redis unavailable, cache disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
		}
	}

	var supplierCache *suppliers.Cache
	if redisClient != nil {
		supplierCache = suppliers.NewCache(redisClient, cfg.CacheTTL)
	}

	service := suppliers.NewService(suppliers.NewRepository(pool), suppliers.ServiceConfig{
		Cache:   supplierCache,
		Logger:  logger,
		Metrics: metrics,
	})

	var (
		inspector  *asynq.Inspector
		jobsClient *jobs.Client
	)
	if redisClient != nil {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		inspector = asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobsClient, err = jobs.NewClient(redisOpts)
		if err != nil {
			return err
		}
		defer func() { _ = jobsClient.Close() }()
	}

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SupplierHandler: suppliers.NewHandler(logger, service),
		JobHandler:      jobs.NewHandler(inspector, logger),
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	onBump := func(ctx context.Context, version int64) {
		if jobsClient == nil || !cfg.WarmCacheOnBump {
			return
		}
		if _, err := jobsClient.EnqueueCacheWarm(ctx, jobs.CacheWarmPayload{Version: version, Reason: "bump"}); err != nil {
			logger.Warn("enqueue cache warm", slog.Any("error", err))
		}
	}
	g.Go(func() error {
		listenForInvalidation(gctx, supplierCache, logger, onBump)
		return nil
	})

	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// listenForInvalidation starts the cache bump listener. A failed subscription
// only disables the warm-up trigger; the server keeps running.
func listenForInvalidation(ctx context.Context, c *suppliers.Cache, logger *slog.Logger, onBump func(context.Context, int64)) bool {
	if err := c.ListenForInvalidation(ctx, logger, onBump); err != nil {
		logger.Warn("cache invalidation listener disabled", slog.Any("error", err))
		return false
	}
	return true
}
