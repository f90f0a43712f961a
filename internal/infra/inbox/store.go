// Package inbox deduplicates inbound broker messages per consumer.
package inbox

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Deduplicator tracks processed message ids. Processed only reads; Seen
// records the id and reports whether it was already there. Consumers record
// an id after the message reached a final outcome.
type Deduplicator interface {
	Processed(ctx context.Context, eventID string) (bool, error)
	Seen(ctx context.Context, eventID string) (bool, error)
}

type Store struct {
	col      *mongo.Collection
	consumer string
}

func NewStore(ctx context.Context, db *mongo.Database, consumer string) (*Store, error) {
	col := db.Collection("app_inbox")
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &Store{col: col, consumer: consumer}, nil
}

func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	doc := bson.M{"event_id": eventID, "consumer": s.consumer, "received_at": time.Now().UTC()}
	_, err := s.col.InsertOne(ctx, doc)
	if err == nil {
		return false, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	return false, err
}

func (s *Store) Processed(ctx context.Context, eventID string) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"event_id": eventID, "consumer": s.consumer}, options.Count().SetLimit(1))
	return n > 0, err
}

var _ Deduplicator = (*Store)(nil)
