package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "eventmarket/internal/domain/booking"
)

// supplierSlotIndex holds one blocking booking per supplier and day.
const supplierSlotIndex = "bookings_supplier_slot"

func isSlotConflict(err error) bool {
	return mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), supplierSlotIndex)
}

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(bookingsCollection)}
}

func (r *BookingRepository) Create(ctx context.Context, b domainbooking.Booking) (domainbooking.Booking, error) {
	if err := b.Validate(); err != nil {
		return domainbooking.Booking{}, err
	}
	b.Version = 1
	if _, err := r.col.InsertOne(ctx, newBookingDocument(b)); err != nil {
		if isSlotConflict(err) {
			return domainbooking.Booking{}, domainbooking.ErrSupplierUnavailable
		}
		return domainbooking.Booking{}, err
	}
	b.ClearEvents()
	return b, nil
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainbooking.Booking{}, domainbooking.ErrNotFound
		}
		return domainbooking.Booking{}, err
	}
	return doc.toAggregate()
}

// Save replaces the document when the stored version still equals b.Version.
func (r *BookingRepository) Save(ctx context.Context, b domainbooking.Booking) (domainbooking.Booking, error) {
	if err := b.Validate(); err != nil {
		return domainbooking.Booking{}, err
	}
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.ReplaceOne(ctx, filter, doc)
	if err != nil {
		if isWriteConflict(err) {
			return domainbooking.Booking{}, domainbooking.ErrConcurrentUpdate
		}
		return domainbooking.Booking{}, err
	}
	if res.MatchedCount == 0 {
		if _, lookupErr := r.ByID(ctx, b.ID); lookupErr != nil {
			return domainbooking.Booking{}, lookupErr
		}
		return domainbooking.Booking{}, domainbooking.ErrConcurrentUpdate
	}
	b.Version = doc.Version
	b.ClearEvents()
	return b, nil
}

func (r *BookingRepository) CheckAvailability(ctx context.Context, supplierID string, date time.Time, excludeID domainbooking.ID) (bool, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	filter := bson.M{
		"supplier_id": supplierID,
		"event_date":  day,
		"status":      bson.M{"$in": blockingStatuses()},
	}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": string(excludeID)}
	}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (r *BookingRepository) ListBySupplier(ctx context.Context, supplierID string) ([]domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"supplier_id": supplierID})
}

func (r *BookingRepository) ListByClient(ctx context.Context, clientID string) ([]domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"client_id": clientID})
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "event_date", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := make([]domainbooking.Booking, 0)
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		b, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, cur.Err()
}

func blockingStatuses() bson.A {
	out := bson.A{}
	for _, s := range domainbooking.AllStatuses() {
		if domainbooking.BlocksAvailability(s) {
			out = append(out, string(s))
		}
	}
	return out
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
