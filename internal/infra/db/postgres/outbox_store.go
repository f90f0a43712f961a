package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appoutbox "eventmarket/internal/app/outbox"
	"eventmarket/internal/infra/outbox"
)

// OutboxStore stages events in outbox_events. Add runs on the transaction
// carried by ctx, so records commit together with the aggregate rows.
type OutboxStore struct {
	pool *pgxpool.Pool
}

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{pool: pool}
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	headers, err := json.Marshal(record.Headers)
	if err != nil {
		return err
	}
	_, err = conn(ctx, s.pool).Exec(ctx, `
		INSERT INTO outbox_events (id, name, aggregate_type, aggregate_id, payload, headers, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		record.ID, record.Name, record.AggregateType, record.Aggregate, record.Payload, headers, record.OccurredAt.UTC())
	return err
}

func (s *OutboxStore) Flush(context.Context) error {
	return nil
}

// Claim locks the oldest due record with SKIP LOCKED so that several relays
// can run side by side.
func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*outbox.Message, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE outbox_events SET state = 'CLAIMED', claimed_by = $1
		WHERE id = (
			SELECT id FROM outbox_events
			WHERE state IN ('NEW', 'FAILED') AND next_attempt_at <= now()
			ORDER BY next_attempt_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, name, aggregate_type, aggregate_id, payload, headers, occurred_at, attempts`, workerID)
	var (
		msg     outbox.Message
		headers []byte
	)
	err := row.Scan(&msg.ID, &msg.Name, &msg.AggregateType, &msg.Aggregate, &msg.Payload, &headers, &msg.OccurredAt, &msg.Attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(headers, &msg.Headers); err != nil {
		return nil, err
	}
	msg.OccurredAt = msg.OccurredAt.UTC()
	return &msg, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE outbox_events SET state = 'SENT' WHERE id = $1`, id)
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE outbox_events
		SET state = 'FAILED', next_attempt_at = $2, last_error = $3, attempts = attempts + 1
		WHERE id = $1`, id, next.UTC(), errMsg)
	return err
}

var (
	_ appoutbox.Outbox = (*OutboxStore)(nil)
	_ outbox.Store     = (*OutboxStore)(nil)
)
