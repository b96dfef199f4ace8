// Package redis is a Redis-backed key-value persistence backend.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/tally/internal/store"
)

// Storage is a Redis implementation of store.Backend.
type Storage struct {
	client *redis.Client
	cfg    Config
}

var _ store.Backend = (*Storage)(nil)

// New connects to Redis and verifies the connection.
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing client (for testing).
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection.
func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) key(name string) string {
	if s.cfg.Prefix == "" {
		return name
	}
	return fmt.Sprintf("%s:%s", s.cfg.Prefix, name)
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

// SetMany writes all entries in a MULTI/EXEC transaction.
func (s *Storage) SetMany(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	for key, value := range entries {
		pipe.Set(ctx, s.key(key), value, 0)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = s.key(key)
	}
	return s.client.Del(ctx, full...).Err()
}
