package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// idem:order:place:{account_id}:{key} -> order_id
	KeyOrderPlace = "idem:order:place:%s:%s"
	// idem:cart:checkout:{account_id}:{key} -> checkout result JSON
	KeyCartCheckout = "idem:cart:checkout:%s:%s"

	// Pending marks a claimed key whose request has not finished yet
	Pending = "__pending__"
)

var TTLIdempotency = 24 * time.Hour

func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Key formats one of the key templates above
func Key(template, accountID, key string) string {
	return fmt.Sprintf(template, accountID, key)
}

// Store remembers the outcome of requests carrying an Idempotency-Key
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = TTLIdempotency
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Begin claims key. When the key was already claimed it returns the stored
// value (Pending while the first request is still running) and started=false.
func (s *Store) Begin(ctx context.Context, key string) (existing string, started bool, err error) {
	ok, err := s.rdb.SetNX(ctx, key, Pending, s.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// expired between the two calls; try once more
		ok, err = s.rdb.SetNX(ctx, key, Pending, s.ttl).Result()
		if err != nil {
			return "", false, err
		}
		if ok {
			return "", true, nil
		}
		return Pending, false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, false, nil
}

// Complete stores the result for replays
func (s *Store) Complete(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, s.ttl).Err()
}

// Abort releases the claim so the client may retry
func (s *Store) Abort(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
