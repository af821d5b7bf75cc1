package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
)

// Storage is a hash-shaped key/value store: each key holds a set of named
// fields that can be read, written and incremented independently.
type Storage interface {
	GetAttr(ctx context.Context, key, field string, val any) error
	SetAttr(ctx context.Context, key, field string, val any) error
	IncrAttr(ctx context.Context, key, field string, delta int64) (int64, error)
	Expire(ctx context.Context, key string, expiresAt time.Time) error
	Delete(ctx context.Context, key string) error
}
