package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventmarket/internal/app/middleware"
	"eventmarket/internal/infra/inbox"
)

// IdempotencyStore keeps replayable command results until they expire.
type IdempotencyStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

func NewIdempotencyStore(pool *pgxpool.Pool, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{pool: pool, ttl: ttl}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	rec := middleware.IdempotencyRecord{Key: key}
	err := s.pool.QueryRow(ctx, `
		SELECT payload, occurred_at FROM idempotency_keys
		WHERE key = $1 AND expires_at > now()`, key).Scan(&rec.Payload, &rec.OccurredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.IdempotencyRecord{}, false, nil
		}
		return middleware.IdempotencyRecord{}, false, err
	}
	return rec, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (key, payload, occurred_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, occurred_at = EXCLUDED.occurred_at, expires_at = EXCLUDED.expires_at`,
		rec.Key, rec.Payload, rec.OccurredAt.UTC(), time.Now().UTC().Add(s.ttl))
	return err
}

// Inbox records processed message ids per consumer.
type Inbox struct {
	pool     *pgxpool.Pool
	consumer string
}

func NewInbox(pool *pgxpool.Pool, consumer string) *Inbox {
	return &Inbox{pool: pool, consumer: consumer}
}

func (i *Inbox) Seen(ctx context.Context, eventID string) (bool, error) {
	tag, err := i.pool.Exec(ctx, `
		INSERT INTO inbox_messages (event_id, consumer) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, eventID, i.consumer)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 0, nil
}

func (i *Inbox) Processed(ctx context.Context, eventID string) (bool, error) {
	var found bool
	err := i.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM inbox_messages WHERE event_id = $1 AND consumer = $2)`,
		eventID, i.consumer).Scan(&found)
	return found, err
}

var (
	_ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
	_ inbox.Deduplicator          = (*Inbox)(nil)
)
