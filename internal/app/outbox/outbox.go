package outbox

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventmarket/internal/domain/shared/events"
)

// EventRecord is a serialized domain event waiting to be relayed.
type EventRecord struct {
	ID            string
	Name          string
	AggregateType string
	Aggregate     string
	Payload       []byte
	OccurredAt    time.Time
	Headers       map[string]string
}

// Outbox stages records inside the caller's transaction. Flush is invoked
// once the command succeeded and lets the store hand records to its relay.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

type JSONEventEncoder struct {
	IDGenerator func() string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	idGen := e.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}
	return EventRecord{
		ID:            idGen(),
		Name:          ev.EventName(),
		AggregateType: AggregateType(ev.EventName()),
		Aggregate:     ev.AggregateID(),
		Payload:       payload,
		OccurredAt:    ev.OccurredAt().UTC(),
		Headers:       map[string]string{},
	}, nil
}

// AggregateType is the event name prefix, "booking" for "booking.cancelled".
func AggregateType(eventName string) string {
	if idx := strings.IndexRune(eventName, '.'); idx > 0 {
		return eventName[:idx]
	}
	return eventName
}

// Recorder is implemented by aggregates embedding events.EventRecorder.
type Recorder interface {
	PendingEvents() []events.DomainEvent
	ClearEvents()
}

// Drain encodes and stages the pending events of every recorder, then
// clears them.
func Drain(ctx context.Context, box Outbox, encoder EventEncoder, recorders ...Recorder) error {
	for _, r := range recorders {
		if err := RecordDomainEvents(ctx, box, encoder, r.PendingEvents()); err != nil {
			return err
		}
		r.ClearEvents()
	}
	return nil
}

func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
