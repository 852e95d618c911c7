package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/pescastur/storefront/internal/domain/product"
)

// Store persists cart snapshots between requests and across restarts.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]product.Product, bool, error)
	Save(ctx context.Context, sessionID string, items []product.Product) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps cart snapshots in Redis as JSON values with a TTL, so
// abandoned carts expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore with the given snapshot TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func snapshotKey(sessionID string) string {
	return "cart:" + sessionID
}

// Load fetches the snapshot for a session. The second return value is
// false when no snapshot exists.
func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]product.Product, bool, error) {
	data, err := s.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis get")
	}

	var items []product.Product
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, errors.Wrap(err, "unmarshal cart snapshot")
	}
	return items, true, nil
}

// Save writes the snapshot and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, sessionID string, items []product.Product) error {
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "marshal cart snapshot")
	}
	if err := s.client.Set(ctx, snapshotKey(sessionID), data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Delete removes the snapshot.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, snapshotKey(sessionID)).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}
