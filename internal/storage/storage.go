// Package storage defines the key/value collection store the ledger
// persists to. Each entity collection lives under one key.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not_found")

// Record is one collection payload to write.
type Record struct {
	Key     string
	Payload []byte
}

// Backend reads single collections and writes batches of them atomically:
// either every record in a Save call is stored or none is.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, records []Record) error
	Close() error
}
