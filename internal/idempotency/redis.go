// Package idempotency stores request outcomes keyed by client-supplied
// idempotency keys so retried mutations replay the original response
// instead of running twice.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrInFlight means another request holding the same key has started but
// not yet recorded its outcome.
var ErrInFlight = errors.New("idempotency: request in flight")

const pendingMarker = "__pending__"

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Begin claims the key. It returns (nil, nil) when the caller owns the key
// and should proceed, the recorded response when a previous attempt
// finished, or ErrInFlight when a previous attempt is still running.
func (s *Store) Begin(ctx context.Context, key string) ([]byte, error) {
	ok, err := s.client.SetNX(ctx, s.redisKey(key), pendingMarker, s.ttl).Result()
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}

	val, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Key expired between SetNX and Get; treat as fresh.
			return nil, nil
		}
		return nil, err
	}
	if val == pendingMarker {
		return nil, ErrInFlight
	}
	return []byte(val), nil
}

// Finish records the response body for future replays of the same key.
func (s *Store) Finish(ctx context.Context, key string, response []byte) error {
	return s.client.Set(ctx, s.redisKey(key), string(response), s.ttl).Err()
}

// Release drops the claim so the client may retry after a failure.
func (s *Store) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.redisKey(key)).Err()
}

func (s *Store) redisKey(key string) string {
	return "idem:" + key
}
