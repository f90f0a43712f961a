package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmarket/internal/domain/shared/events"
)

type sampleEvent struct {
	BookingID string
	At        time.Time
}

func (e sampleEvent) EventName() string     { return "booking.sample" }
func (e sampleEvent) AggregateID() string   { return e.BookingID }
func (e sampleEvent) OccurredAt() time.Time { return e.At }

type recordingBox struct {
	records []EventRecord
}

func (b *recordingBox) Add(_ context.Context, r EventRecord) error {
	b.records = append(b.records, r)
	return nil
}

func (b *recordingBox) Flush(context.Context) error { return nil }

type aggregate struct {
	events.EventRecorder
}

func TestDrainEncodesAndClears(t *testing.T) {
	at := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	agg := &aggregate{}
	agg.Record(sampleEvent{BookingID: "bk-1", At: at})

	box := &recordingBox{}
	enc := JSONEventEncoder{IDGenerator: func() string { return "evt-1" }}
	require.NoError(t, Drain(context.Background(), box, enc, agg))

	require.Len(t, box.records, 1)
	rec := box.records[0]
	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, "booking.sample", rec.Name)
	assert.Equal(t, "booking", rec.AggregateType)
	assert.Equal(t, "bk-1", rec.Aggregate)
	assert.Equal(t, at, rec.OccurredAt)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Payload, &decoded))
	assert.Equal(t, "bk-1", decoded["BookingID"])
	assert.Empty(t, agg.PendingEvents())
}

func TestAggregateType(t *testing.T) {
	assert.Equal(t, "offer", AggregateType("offer.accepted"))
	assert.Equal(t, "plain", AggregateType("plain"))
}
