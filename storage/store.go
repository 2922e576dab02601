package storage

import (
	"context"
	"errors"
)

var (
	// ErrStoreClosed is returned by writes to a closed store
	ErrStoreClosed = errors.New("store is closed")

	// ErrInvalidDocument is returned when restoring something that is not JSON
	ErrInvalidDocument = errors.New("invalid JSON document")
)

// Store is a JSON document addressed by gjson/sjson paths.
type Store interface {
	Set(ctx context.Context, key []byte, value interface{}) error
	Get(ctx context.Context, key []byte) ([]byte, error)

	Restore(values []byte) error
	Backup() ([]byte, error)

	ListenToUpdates() <-chan *Update

	Close() error
}

// Update tells listeners that Key now holds the raw JSON Value.
type Update struct {
	Key   []byte
	Value []byte
}
