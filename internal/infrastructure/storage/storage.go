// Package storage provides the client-side persistent key/value store that
// stands in for browser local storage: the bearer token, the cached user and
// the cart snapshot live here between runs.
package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Well-known keys. They match the keys the web client used so an exported
// local storage dump can be imported as-is.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyCart  = "cart-storage"
)

// Errors returned by the storage package.
var (
	ErrClosed        = errors.New("storage: store is closed")
	ErrUnknownDriver = errors.New("storage: unknown driver")
)

// Store is a string key/value store. Get reports whether the key exists.
// Implementations are safe for concurrent use within one process; there is
// no coordination between processes sharing the same backend.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Config selects a backend.
type Config struct {
	Driver    string // file, sqlite, redis, memory
	Path      string
	KeyPrefix string
	Redis     RedisConfig

	// FallbackToMemory returns an in-memory store when the configured
	// backend cannot be opened, instead of failing.
	FallbackToMemory bool
}

// Open creates the store named by cfg.Driver.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "file", "":
		store, err = NewFileStore(cfg.Path)
	case "sqlite":
		store, err = NewSQLiteStore(cfg.Path)
	case "redis":
		store, err = NewRedisStore(ctx, cfg.Redis, cfg.KeyPrefix)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}

	if err != nil {
		if cfg.FallbackToMemory {
			logger.Warn("Local storage unavailable, falling back to in-memory store",
				zap.String("driver", cfg.Driver),
				zap.Error(err),
			)
			return NewMemoryStore(), nil
		}
		return nil, err
	}

	logger.Debug("Local storage opened", zap.String("driver", cfg.Driver))
	return store, nil
}
