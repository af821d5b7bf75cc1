package twofactor

import (
	"context"
	"errors"
	"time"

	"folioauth/internal/store"
	"folioauth/params"
)

// userStateStore tracks failed challenge attempts per user+ip so that repeated
// bad codes lock the challenge flow out without touching the user record.
type userStateStore struct {
	storage store.Storage
}

func (s *userStateStore) GetFailCount(ctx context.Context, id string) (int, error) {
	var failCount int
	err := s.storage.GetAttr(ctx, id, "fail_count", &failCount)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	return failCount, err
}

func (s *userStateStore) IncreaseFailCount(ctx context.Context, id string) (int, error) {
	failCount, err := s.storage.IncrAttr(ctx, id, "fail_count", 1)
	if err != nil {
		return 0, err
	}
	s.storage.Expire(ctx, id, time.Now().Add(params.TwoFactorStateMaxAge))
	return int(failCount), nil
}

func (s *userStateStore) ResetFailCount(ctx context.Context, id string) error {
	return s.storage.SetAttr(ctx, id, "fail_count", 0)
}

func newUserStateStore(storage store.Storage) *userStateStore {
	return &userStateStore{
		storage: store.StorageWithPrefix(storage, params.UserStateKeyPrefix),
	}
}
