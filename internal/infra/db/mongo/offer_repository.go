package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainoffer "eventmarket/internal/domain/offer"
)

// writeConflictCode is returned by a transaction that lost a race on the
// same document.
const writeConflictCode = 112

type OfferRepository struct {
	col *mongo.Collection
}

func NewOfferRepository(db *mongo.Database) *OfferRepository {
	return &OfferRepository{col: db.Collection(offersCollection)}
}

func (r *OfferRepository) Create(ctx context.Context, o domainoffer.Offer) error {
	_, err := r.col.InsertOne(ctx, newOfferDocument(o))
	return err
}

func (r *OfferRepository) ByID(ctx context.Context, id domainoffer.ID) (domainoffer.Offer, error) {
	var doc offerDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainoffer.Offer{}, domainoffer.ErrNotFound
		}
		return domainoffer.Offer{}, err
	}
	return doc.toAggregate(), nil
}

// TransitionIf applies patch only while the stored status equals expected.
func (r *OfferRepository) TransitionIf(ctx context.Context, id domainoffer.ID, expected domainoffer.Status, patch domainoffer.Patch) (domainoffer.Offer, error) {
	filter := bson.M{"_id": string(id), "status": string(expected)}
	update := bson.M{"$set": bson.M{
		"status":           string(patch.Status),
		"booking_id":       patch.BookingID,
		"rejection_reason": patch.RejectionReason,
		"updated_at":       patch.UpdatedAt.UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc offerDocument
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	switch {
	case err == nil:
		return doc.toAggregate(), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		if _, lookupErr := r.ByID(ctx, id); lookupErr != nil {
			return domainoffer.Offer{}, lookupErr
		}
		return domainoffer.Offer{}, domainoffer.ErrConcurrentTransition
	case isWriteConflict(err):
		return domainoffer.Offer{}, domainoffer.ErrConcurrentTransition
	default:
		return domainoffer.Offer{}, err
	}
}

func (r *OfferRepository) ListByParticipant(ctx context.Context, userID string, status domainoffer.Status) ([]domainoffer.Offer, error) {
	filter := bson.M{"$or": bson.A{bson.M{"seller_id": userID}, bson.M{"buyer_id": userID}}}
	if status != "" {
		filter["status"] = string(status)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, filter, opts)
}

func (r *OfferRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]domainoffer.Offer, error) {
	filter := bson.M{"status": string(domainoffer.StatusPending), "valid_until": bson.M{"$lt": now.UTC()}}
	opts := options.Find().SetSort(bson.D{{Key: "valid_until", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *OfferRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domainoffer.Offer, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := make([]domainoffer.Offer, 0)
	for cur.Next(ctx) {
		var doc offerDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

func isWriteConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == writeConflictCode {
		return true
	}
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(writeConflictCode)
}

var _ domainoffer.Repository = (*OfferRepository)(nil)
