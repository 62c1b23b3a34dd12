// Package memory is an in-process storage backend for tests and
// throwaway sessions.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/smallbiznis/rythudepot/internal/storage"
)

type Backend struct {
	mu   sync.RWMutex
	data map[string][]byte

	failSave error
}

func New() *Backend {
	return &Backend{data: map[string][]byte{}}
}

func (b *Backend) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	payload, ok := b.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), payload...), nil
}

func (b *Backend) Save(ctx context.Context, records []storage.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failSave != nil {
		return b.failSave
	}
	for _, rec := range records {
		if rec.Key == "" {
			return errors.New("empty key")
		}
	}
	for _, rec := range records {
		b.data[rec.Key] = append([]byte(nil), rec.Payload...)
	}
	return nil
}

func (b *Backend) Close() error {
	return nil
}

// FailSaves makes every following Save return err without writing.
// Pass nil to restore normal behavior.
func (b *Backend) FailSaves(err error) {
	b.mu.Lock()
	b.failSave = err
	b.mu.Unlock()
}

// Keys lists the stored keys.
func (b *Backend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	return keys
}
