package store

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/cast"
)

type memoryHash struct {
	fields    map[string]any
	expiresAt time.Time
}

func (h *memoryHash) expired() bool {
	return !h.expiresAt.IsZero() && h.expiresAt.Before(time.Now())
}

// MemoryStorage is the in-process fallback used when no Redis is configured.
// Counter state is then lost on restart, which only resets rate-limit windows.
type MemoryStorage struct {
	mu     sync.Mutex
	hashes map[string]*memoryHash
}

func (s *MemoryStorage) getHash(key string, create bool) *memoryHash {
	h, ok := s.hashes[key]
	if ok && h.expired() {
		delete(s.hashes, key)
		ok = false
	}
	if !ok && create {
		h = &memoryHash{fields: make(map[string]any)}
		s.hashes[key] = h
	} else if !ok {
		return nil
	}
	return h
}

func (s *MemoryStorage) GetAttr(ctx context.Context, key, field string, val any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.getHash(key, false)
	if h == nil {
		return ErrNotFound
	}
	stored, ok := h.fields[field]
	if !ok {
		return ErrNotFound
	}
	switch dst := val.(type) {
	case *int:
		n, err := cast.ToIntE(stored)
		if err != nil {
			return err
		}
		*dst = n
	case *int64:
		n, err := cast.ToInt64E(stored)
		if err != nil {
			return err
		}
		*dst = n
	case *string:
		str, err := cast.ToStringE(stored)
		if err != nil {
			return err
		}
		*dst = str
	case *bool:
		b, err := cast.ToBoolE(stored)
		if err != nil {
			return err
		}
		*dst = b
	default:
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStorage) SetAttr(ctx context.Context, key string, field string, val any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.getHash(key, true)
	h.fields[field] = val
	return nil
}

func (s *MemoryStorage) IncrAttr(ctx context.Context, key, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.getHash(key, true)
	current := cast.ToInt64(h.fields[field])
	current += delta
	h.fields[field] = current
	return current, nil
}

func (s *MemoryStorage) Expire(ctx context.Context, key string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.getHash(key, false)
	if h == nil {
		return ErrNotFound
	}
	h.expiresAt = expiresAt
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getHash(key, false) == nil {
		return ErrNotFound
	}
	delete(s.hashes, key)
	return nil
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		hashes: make(map[string]*memoryHash),
	}
}
