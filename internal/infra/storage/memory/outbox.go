package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "eventmarket/internal/app/outbox"
	"eventmarket/internal/infra/outbox"
)

type outboxState string

const (
	outboxNew     outboxState = "NEW"
	outboxClaimed outboxState = "CLAIMED"
	outboxSent    outboxState = "SENT"
	outboxFailed  outboxState = "FAILED"
)

type outboxEntry struct {
	msg         outbox.Message
	state       outboxState
	nextAttempt time.Time
	lastError   string
}

// Outbox keeps staged events in memory and serves them to the relay worker
// in insertion order.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
	now     func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{now: time.Now}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, &outboxEntry{
		msg:         outbox.MessageFrom(record),
		state:       outboxNew,
		nextAttempt: o.now(),
	})
	return nil
}

// Flush is a no-op; records become visible to Claim as soon as they are added.
func (o *Outbox) Flush(ctx context.Context) error {
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*outbox.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	for _, e := range o.entries {
		if (e.state == outboxNew || e.state == outboxFailed) && !e.nextAttempt.After(now) {
			e.state = outboxClaimed
			msg := e.msg
			return &msg, nil
		}
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		e.state = outboxSent
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		e.state = outboxFailed
		e.nextAttempt = next
		e.lastError = errMsg
		e.msg.Attempts++
	}
	return nil
}

// Records returns the names of staged events that were not yet sent.
func (o *Outbox) Records() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.entries))
	for _, e := range o.entries {
		if e.state != outboxSent {
			out = append(out, e.msg.Name)
		}
	}
	return out
}

func (o *Outbox) find(id string) *outboxEntry {
	for _, e := range o.entries {
		if e.msg.ID == id {
			return e
		}
	}
	return nil
}

var (
	_ appoutbox.Outbox = (*Outbox)(nil)
	_ outbox.Store     = (*Outbox)(nil)
)
