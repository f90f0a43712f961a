package outbox

import (
	"context"
	"time"

	appoutbox "eventmarket/internal/app/outbox"
)

// Message is a staged event as seen by the relay.
type Message struct {
	ID            string
	Name          string
	AggregateType string
	Aggregate     string
	Payload       []byte
	OccurredAt    time.Time
	Headers       map[string]string
	Attempts      int
}

func MessageFrom(rec appoutbox.EventRecord) Message {
	headers := make(map[string]string, len(rec.Headers))
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return Message{
		ID:            rec.ID,
		Name:          rec.Name,
		AggregateType: rec.AggregateType,
		Aggregate:     rec.Aggregate,
		Payload:       append([]byte(nil), rec.Payload...),
		OccurredAt:    rec.OccurredAt,
		Headers:       headers,
	}
}

// Store is the relay side of an outbox. Claim returns nil, nil when nothing
// is due.
type Store interface {
	Claim(ctx context.Context, workerID string) (*Message, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}
