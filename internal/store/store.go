// Package store is the persistence port of the grocery data layer: a flat
// key-value space of JSON documents, one document per entity collection.
package store

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("store closed")

// Store is implemented by every persistence backend.
type Store interface {
	// Get returns the raw value under key; found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists every key starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Change describes a write observed on a shared backend.
type Change struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// Watcher is implemented by backends that can report writes made by other
// processes sharing the same data.
type Watcher interface {
	// Origin identifies writes made through this handle.
	Origin() string
	// Watch streams changes until ctx is done.
	Watch(ctx context.Context) (<-chan Change, error)
}

// BulkDeleter is implemented by backends that can drop many keys in one call.
type BulkDeleter interface {
	DeleteMany(ctx context.Context, keys []string) error
}
