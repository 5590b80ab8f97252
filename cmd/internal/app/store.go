package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/reservation"
)

// backend owns the registration store and the connections behind it.
//
// Ownership model:
// - backend owns pool / redis client lifecycle
// - stores never close what they were handed
type backend struct {
	kind  string
	store reservation.Store
	pool  *pgxpool.Pool
	redis *redis.Client
}

// openBackend builds the store selected by cfg.Store.
func openBackend(ctx context.Context, cfg Config, log Logger) (*backend, error) {
	switch cfg.Store {
	case StoreMemory:
		log.Info("store.memory.enabled")
		return &backend{kind: StoreMemory, store: reservation.NewMemoryStore()}, nil

	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("store: FOUNDATHON_STORE=postgres requires FOUNDATHON_DATABASE_URL")
		}
		pool, err := NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.DBMigrate {
			if err := Migrate(ctx, pool, MigrateUp, log); err != nil {
				pool.Close()
				return nil, fmt.Errorf("store: migrate: %w", err)
			}
		}
		st, err := reservation.NewPostgresStore(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("store.postgres.enabled")
		return &backend{kind: StorePostgres, store: st, pool: pool}, nil

	case StoreRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("store: FOUNDATHON_STORE=redis requires FOUNDATHON_REDIS_ADDR")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("store: redis ping: %w", err)
		}
		st, err := reservation.NewRedisStore(client, reservation.WithKeyPrefix(cfg.RedisKeyPrefix))
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		log.Info("store.redis.enabled", "addr", cfg.RedisAddr)
		return &backend{kind: StoreRedis, store: st, redis: client}, nil

	default:
		return nil, fmt.Errorf("store: unknown FOUNDATHON_STORE %q", cfg.Store)
	}
}

// Ping checks the backing service within timeout. The memory store is always ready.
func (b *backend) Ping(ctx context.Context, timeout time.Duration) error {
	switch {
	case b == nil:
		return errors.New("store: not configured")
	case b.pool != nil:
		return PingDB(ctx, b.pool, timeout)
	case b.redis != nil:
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return b.redis.Ping(pingCtx).Err()
	default:
		return nil
	}
}

// Durable reports whether records survive a restart.
func (b *backend) Durable() bool {
	return b != nil && b.kind != StoreMemory
}

func (b *backend) Close() error {
	if b == nil {
		return nil
	}
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		return b.redis.Close()
	}
	return nil
}
