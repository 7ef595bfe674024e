package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mmuslimabdulj/goat-rooms/internal/config"
)

// Open builds the store selected by cfg.StorageDriver
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StorageDriver {
	case "", "file":
		b, err := NewFileBackend(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return New("file", b), nil

	case "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.DataDir, "chat.db")
		}
		b, err := NewSQLiteBackend(path)
		if err != nil {
			return nil, err
		}
		return New("sqlite", b), nil

	case "redis":
		b, err := NewRedisBackend(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		return New("redis", b), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
