package outbox

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "eventmarket/internal/app/outbox"
)

const (
	stateNew     = "NEW"
	stateClaimed = "CLAIMED"
	stateSent    = "SENT"
	stateFailed  = "FAILED"
)

// MongoStore keeps outbox records in the app_outbox collection. Add joins
// the session carried by ctx, so records commit with the aggregate writes.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	col := db.Collection("app_outbox")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}}}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, err
	}
	return &MongoStore{col: col}, nil
}

func (s *MongoStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	now := time.Now().UTC()
	doc := EventDocument{
		ID:            record.ID,
		Name:          record.Name,
		AggregateType: record.AggregateType,
		Aggregate:     record.Aggregate,
		Payload:       record.Payload,
		OccurredAt:    record.OccurredAt,
		Headers:       record.Headers,
		State:         stateNew,
		NextAttempt:   now,
		CreatedAt:     now,
	}
	_, err := s.col.InsertOne(ctx, doc)
	return err
}

func (s *MongoStore) Flush(context.Context) error {
	return nil
}

type EventDocument struct {
	ID            string            `bson:"_id"`
	Name          string            `bson:"name"`
	AggregateType string            `bson:"aggregate_type"`
	Aggregate     string            `bson:"aggregate"`
	Payload       []byte            `bson:"payload"`
	OccurredAt    time.Time         `bson:"occurred_at"`
	Headers       map[string]string `bson:"headers"`
	State         string            `bson:"state"`
	Attempts      int               `bson:"attempts"`
	NextAttempt   time.Time         `bson:"next_attempt_at"`
	CreatedAt     time.Time         `bson:"created_at"`
	ClaimedBy     string            `bson:"claimed_by,omitempty"`
	ClaimedAt     time.Time         `bson:"claimed_at,omitempty"`
	SentAt        time.Time         `bson:"sent_at,omitempty"`
	LastError     string            `bson:"last_error,omitempty"`
}

func (d EventDocument) message() *Message {
	return &Message{
		ID:            d.ID,
		Name:          d.Name,
		AggregateType: d.AggregateType,
		Aggregate:     d.Aggregate,
		Payload:       d.Payload,
		OccurredAt:    d.OccurredAt,
		Headers:       d.Headers,
		Attempts:      d.Attempts,
	}
}

func (s *MongoStore) Claim(ctx context.Context, workerID string) (*Message, error) {
	now := time.Now().UTC()
	filter := bson.M{"state": bson.M{"$in": []string{stateNew, stateFailed}}, "next_attempt_at": bson.M{"$lte": now}}
	update := bson.M{"$set": bson.M{"state": stateClaimed, "claimed_by": workerID, "claimed_at": now}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "next_attempt_at", Value: 1}})
	var doc EventDocument
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.message(), nil
}

func (s *MongoStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"state": stateSent, "sent_at": time.Now().UTC()}})
	return err
}

func (s *MongoStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	update := bson.M{
		"$set": bson.M{
			"state":           stateFailed,
			"next_attempt_at": next,
			"last_error":      errMsg,
		},
		"$inc": bson.M{"attempts": 1},
	}
	_, err := s.col.UpdateByID(ctx, id, update)
	return err
}

var (
	_ appoutbox.Outbox = (*MongoStore)(nil)
	_ Store            = (*MongoStore)(nil)
)
