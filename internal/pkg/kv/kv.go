// Package kv defines the durable key-value facility the store persists into.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kv: key not found")

// Backend is a durable get/set-by-key store of opaque payloads.
// SetMulti must apply all entries or none.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetMulti(ctx context.Context, entries map[string][]byte) error
	Close() error
}
