package storage

import (
	"context"
	"fmt"

	"github.com/golang/snappy"
)

type snappyBackend struct {
	next Backend
}

// WithSnappy compresses payloads before they reach next.
func WithSnappy(next Backend) Backend {
	return &snappyBackend{next: next}
}

func (b *snappyBackend) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := b.next.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	out, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func (b *snappyBackend) Save(ctx context.Context, records []Record) error {
	compressed := make([]Record, 0, len(records))
	for _, rec := range records {
		compressed = append(compressed, Record{
			Key:     rec.Key,
			Payload: snappy.Encode(nil, rec.Payload),
		})
	}
	return b.next.Save(ctx, compressed)
}

func (b *snappyBackend) Close() error {
	return b.next.Close()
}
