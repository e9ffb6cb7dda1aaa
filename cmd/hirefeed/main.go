package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"hirefeed/internal/api"
	"hirefeed/internal/cache"
	"hirefeed/internal/cache/memory"
	"hirefeed/internal/cache/redis"
	"hirefeed/internal/config"
	"hirefeed/internal/database"
	"hirefeed/internal/database/schema"
	"hirefeed/internal/database/schema/migrations"
	"hirefeed/internal/ingest"
	"hirefeed/internal/messaging"
	"hirefeed/internal/store"
	chstore "hirefeed/internal/store/clickhouse"
	"hirefeed/internal/store/sqlite"
	"hirefeed/internal/telemetry"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// Sync on a terminal stderr reports EINVAL; nothing to act on.
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}

func newTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	shutdown, err := telemetry.Setup(context.Background(), cfg.OTelCollectorURL)
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := shutdown(ctx); err != nil {
				logger.Warn("failed to shut down tracer", zap.Error(err))
			}
			return nil
		},
	})
	return nil
}

func newCache(lc fx.Lifecycle, cfg *config.Config) cache.Cache {
	opts := cache.Options{
		DefaultTTL:    cfg.CacheTTL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}

	var c cache.Cache
	if opts.RedisAddr != "" {
		c = redis.New(opts)
	} else {
		c = memory.New(opts)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})
	return c
}

func newStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	ctx := context.Background()

	var s store.Store
	switch cfg.StoreDriver {
	case config.StoreDriverClickHouse:
		conn, err := database.OpenClickHouse(ctx, database.ClickHouseOptions{
			DSN:             cfg.ClickHouseDSN,
			MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
			MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
			ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
			Username:        cfg.ClickHouseUsername,
			Password:        cfg.ClickHousePassword,
			Database:        cfg.ClickHouseDatabase,
		}, logger)
		if err != nil {
			return nil, err
		}
		chStore := chstore.New(conn, logger)
		if err := chStore.EnsureSchema(ctx); err != nil {
			_ = chStore.Close()
			return nil, err
		}
		s = chStore

	default:
		db, err := database.OpenSQLite(ctx, database.SQLiteOptions{
			Path:  cfg.DatabasePath,
			Debug: cfg.LogLevel == "debug",
		}, logger)
		if err != nil {
			return nil, err
		}
		if _, err := schema.NewMigrator(db, logger).Migrate(ctx, migrations.All); err != nil {
			_ = db.Close()
			return nil, err
		}
		s = sqlite.New(db, logger)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return s.Close()
		},
	})
	return s, nil
}

func newPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (messaging.Publisher, error) {
	p, err := messaging.NewPublisher(logger, cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			p.Close()
			return nil
		},
	})
	return p, nil
}

// runOnce starts the run after every constructor has succeeded and shuts
// the application down when it finishes.
func runOnce(lc fx.Lifecycle, shutdowner fx.Shutdowner, runner *ingest.Runner, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				summary := runner.Run(ctx)
				fmt.Fprintln(os.Stdout, summary.String())

				if err := shutdowner.Shutdown(); err != nil {
					logger.Error("failed to request shutdown", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func main() {
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newCache,
			newStore,
			newPublisher,
			api.NewSearchClient,
			ingest.NewRunner,
		),
		fx.Invoke(
			newTracing,
			runOnce,
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
