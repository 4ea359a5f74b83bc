// Package store persists the registry's whole-collection snapshots in
// string-keyed slots. Redis, Postgres and SQLite backends share the KV
// interface.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get for a slot that was never written.
var ErrNotFound = errors.New("slot not found")

// KV is a string-keyed slot store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
