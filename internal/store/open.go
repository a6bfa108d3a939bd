package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wichananm65/grocery-store/internal/config"
)

// Open connects the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Info("using in-memory store")
		return NewMemory(), nil
	case config.DriverBolt, "":
		log.Info("using bolt store", zap.String("path", cfg.BoltPath))
		return OpenBolt(cfg.BoltPath)
	case config.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres store: DATABASE_URL is not set")
		}
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		s := NewPostgres(db, cfg.DatabaseURL)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("using postgres store")
		return s, nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		log.Info("using redis store", zap.String("addr", cfg.RedisAddr), zap.String("namespace", cfg.Namespace))
		return NewRedis(client, cfg.Namespace), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
