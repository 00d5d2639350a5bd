package redis

import (
	"context"
	"errors"

	"artquiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ProgressStore keeps progress records as plain string keys (progress:{key}) without expiry.
type ProgressStore struct {
	client *redis.Client
}

func NewProgressStore(client *redis.Client) *ProgressStore {
	return &ProgressStore{client: client}
}

func (s *ProgressStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrProgressNotFound
	}
	return data, err
}

func (s *ProgressStore) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *ProgressStore) key(key string) string {
	return "progress:" + key
}
