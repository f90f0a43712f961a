package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Client struct {
	DB *mongo.Database
}

func New(ctx context.Context, uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}

func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}

// EnsureIndexes creates the indexes the repositories rely on. It is safe to
// call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	offers := db.Collection(offersCollection)
	if _, err := offers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bsonKeys("seller_id", "status")},
		{Keys: bsonKeys("buyer_id", "status")},
		{Keys: bsonKeys("status", "valid_until")},
	}); err != nil {
		return err
	}
	bookings := db.Collection(bookingsCollection)
	_, err := bookings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bsonKeys("supplier_id", "event_date")},
		{Keys: bsonKeys("client_id", "event_date")},
		{
			Keys: bsonKeys("supplier_id", "event_date", "slot_held"),
			Options: options.Index().
				SetName(supplierSlotIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"slot_held": true}),
		},
	})
	return err
}
