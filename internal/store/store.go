// Package store persists JSON documents under string keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jimezsa/jobpilot/internal/config"
)

var (
	ErrNotFound = errors.New("key not found")
	// ErrNoChange may be returned by an Update function to leave the key as is.
	ErrNoChange = errors.New("no change")
)

// UpdateFunc receives the current value (nil when the key is missing) and
// returns the value to write.
type UpdateFunc func(current []byte) ([]byte, error)

// Backend is a key-value store of JSON documents.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	// Update runs a read-modify-write on key. Concurrent updates of the
	// same key are serialized so no write is lost.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

// Open builds the backend selected by cfg. dataDir is the file backend's
// directory when cfg.Path is empty.
func Open(ctx context.Context, cfg config.StoreConfig, dataDir string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "file":
		dir := cfg.Path
		if dir == "" {
			dir = dataDir
		}
		return NewFile(dir)
	case "memory":
		return NewMemory(), nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, errors.New("store: redis backend needs redis_url")
		}
		return NewRedis(ctx, cfg.RedisURL)
	case "postgres", "postgresql":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("store: postgres backend needs database_url")
		}
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}

// GetJSON decodes the value at key into v.
func GetJSON(ctx context.Context, b Backend, key string, v any) error {
	data, err := b.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, b Backend, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return b.Set(ctx, key, data)
}

// UpdateJSON decodes key into a T (the zero value when missing), lets fn
// modify it and writes it back. fn may return ErrNoChange to skip the write.
func UpdateJSON[T any](ctx context.Context, b Backend, key string, fn func(*T) error) error {
	return b.Update(ctx, key, func(current []byte) ([]byte, error) {
		var value T
		if current != nil {
			if err := json.Unmarshal(current, &value); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
		}
		if err := fn(&value); err != nil {
			return nil, err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		return data, nil
	})
}

// applyUpdate runs fn and reports whether its result should be written.
func applyUpdate(current []byte, fn UpdateFunc) ([]byte, bool, error) {
	next, err := fn(current)
	if errors.Is(err, ErrNoChange) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return next, true, nil
}
