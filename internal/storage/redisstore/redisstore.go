// Package redisstore keeps ledger collections in redis strings.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/rythudepot/internal/storage"
)

const defaultPrefix = "rythudepot:"

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Backend struct {
	client redis.UniversalClient
	prefix string
}

func New(opts Options) (*Backend, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewWithClient(client, opts.Prefix), nil
}

func NewWithClient(client redis.UniversalClient, prefix string) *Backend {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Backend{client: client, prefix: prefix}
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Backend) Load(ctx context.Context, key string) ([]byte, error) {
	payload, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return payload, nil
}

// Save writes all records in one MULTI/EXEC block.
func (b *Backend) Save(ctx context.Context, records []storage.Record) error {
	if len(records) == 0 {
		return nil
	}
	for _, rec := range records {
		if rec.Key == "" {
			return errors.New("empty collection key")
		}
	}
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, rec := range records {
			pipe.Set(ctx, b.prefix+rec.Key, rec.Payload, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save collections: %w", err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}
