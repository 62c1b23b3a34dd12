// Package backends selects and opens the configured storage backend.
package backends

import (
	"context"
	"fmt"

	"github.com/smallbiznis/rythudepot/internal/config"
	"github.com/smallbiznis/rythudepot/internal/migration"
	"github.com/smallbiznis/rythudepot/internal/observability/logger"
	"github.com/smallbiznis/rythudepot/internal/storage"
	"github.com/smallbiznis/rythudepot/internal/storage/gormstore"
	"github.com/smallbiznis/rythudepot/internal/storage/memory"
	"github.com/smallbiznis/rythudepot/internal/storage/redisstore"
	"github.com/smallbiznis/rythudepot/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(NewBackend),
)

// NewBackend opens the configured persistence backend and closes it when the
// application stops.
func NewBackend(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (storage.Backend, error) {
	log = log.Named("storage")

	backend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.StorageCompress {
		backend = storage.WithSnappy(backend)
	}

	log.Info("storage backend ready",
		zap.String("backend", cfg.StorageBackend),
		zap.Bool("compress", cfg.StorageCompress),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return backend.Close()
		},
	})
	return backend, nil
}

func openBackend(cfg config.Config) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageRedis:
		store, err := redisstore.New(redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		if err := store.Ping(context.Background()); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return store, nil
	case config.StorageSQLite, config.StoragePostgres, config.StorageMySQL:
		conn, err := db.Open(db.FromAppConfig(cfg), logger.NewGormLogger(logger.DefaultGormLoggerConfig()))
		if err != nil {
			return nil, err
		}
		if err := migration.Migrate(cfg.StorageBackend, conn); err != nil {
			return nil, fmt.Errorf("migrate %s: %w", cfg.StorageBackend, err)
		}
		return gormstore.New(conn), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}
