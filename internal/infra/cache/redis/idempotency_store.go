// Package redis keeps replayable command results in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"eventmarket/internal/app/middleware"
)

const keyPrefix = "eventmarket:idem:"

func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// IdempotencyStore writes each record under its own key with a TTL, so
// expired entries vanish without a sweeper.
type IdempotencyStore struct {
	client goredis.Cmdable
	ttl    time.Duration
}

func NewIdempotencyStore(client goredis.Cmdable, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

type storedRecord struct {
	Payload    []byte    `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	var rec storedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	return middleware.IdempotencyRecord{Key: key, Payload: rec.Payload, OccurredAt: rec.OccurredAt}, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	payload, err := json.Marshal(storedRecord{Payload: rec.Payload, OccurredAt: rec.OccurredAt.UTC()})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+rec.Key, payload, s.ttl).Err()
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
