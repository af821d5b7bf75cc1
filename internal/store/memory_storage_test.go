package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStorageAttrs(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	var count int
	if err := storage.GetAttr(ctx, "k1", "fail_count", &count); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a missing key, got %v", err)
	}

	if err := storage.SetAttr(ctx, "k1", "fail_count", 3); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}
	if err := storage.GetAttr(ctx, "k1", "fail_count", &count); err != nil {
		t.Fatalf("GetAttr failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}

	var missing string
	if err := storage.GetAttr(ctx, "k1", "other", &missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a missing field, got %v", err)
	}
}

func TestMemoryStorageIncr(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	for want := int64(1); want <= 3; want++ {
		got, err := storage.IncrAttr(ctx, "k1", "fail_count", 1)
		if err != nil {
			t.Fatalf("IncrAttr failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	// increment on top of a value written by SetAttr
	if err := storage.SetAttr(ctx, "k2", "fail_count", 10); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}
	got, err := storage.IncrAttr(ctx, "k2", "fail_count", 5)
	if err != nil {
		t.Fatalf("IncrAttr failed: %v", err)
	}
	if got != 15 {
		t.Fatalf("expected 15, got %d", got)
	}
}

func TestMemoryStorageExpire(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	if err := storage.Expire(ctx, "k1", time.Now().Add(time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a missing key, got %v", err)
	}

	if _, err := storage.IncrAttr(ctx, "k1", "fail_count", 1); err != nil {
		t.Fatalf("IncrAttr failed: %v", err)
	}
	if err := storage.Expire(ctx, "k1", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("Expire failed: %v", err)
	}

	var count int
	if err := storage.GetAttr(ctx, "k1", "fail_count", &count); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired key to be gone, got %v", err)
	}
}

func TestMemoryStorageDelete(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	if err := storage.Delete(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := storage.SetAttr(ctx, "k1", "fail_count", 1); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}
	if err := storage.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	var count int
	if err := storage.GetAttr(ctx, "k1", "fail_count", &count); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected key to be gone after delete, got %v", err)
	}
}

func TestStorageWithPrefix(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryStorage()
	prefixed := StorageWithPrefix(backing, "2fa:u:")

	if _, err := prefixed.IncrAttr(ctx, "abc", "fail_count", 1); err != nil {
		t.Fatalf("IncrAttr failed: %v", err)
	}

	var count int
	if err := backing.GetAttr(ctx, "2fa:u:abc", "fail_count", &count); err != nil {
		t.Fatalf("prefixed key not found in backing storage: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1, got %d", count)
	}
	if err := backing.GetAttr(ctx, "abc", "fail_count", &count); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unprefixed key should not exist, got %v", err)
	}
}
