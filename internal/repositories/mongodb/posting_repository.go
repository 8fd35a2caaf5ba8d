package mongodb

import (
	"context"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type postingRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewPostingRepository(db *mongo.Database, timeout time.Duration) interfaces.PostingRepository {
	return &postingRepository{
		collection: db.Collection("postings"),
		timeout:    timeout,
	}
}

// Basic CRUD operations
func (r *postingRepository) Create(ctx context.Context, posting *models.Posting) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, posting)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewDuplicateAction("posting " + posting.ID + " already exists")
	}
	return storeError("create posting", err)
}

func (r *postingRepository) GetByID(ctx context.Context, id string) (*models.Posting, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var posting models.Posting
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&posting)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("posting", id)
		}
		return nil, storeError("get posting", err)
	}

	return &posting, nil
}

func (r *postingRepository) List(ctx context.Context, filter interfaces.PostingFilter) ([]*models.Posting, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := bson.M{}
	if filter.DonorID != "" {
		query["donor_id"] = filter.DonorID
	}
	if filter.VolunteerID != "" {
		query["volunteer_id"] = filter.VolunteerID
	}
	if filter.OrphanageID != "" {
		query["orphanage_id"] = filter.OrphanageID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	if filter.UpdatedBefore != nil {
		query["updated_at"] = bson.M{"$lt": *filter.UpdatedBefore}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, storeError("list postings", err)
	}
	defer cursor.Close(ctx)

	postings := make([]*models.Posting, 0)
	if err := cursor.All(ctx, &postings); err != nil {
		return nil, storeError("decode postings", err)
	}

	return postings, nil
}

func (r *postingRepository) Upsert(ctx context.Context, posting *models.Posting) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": posting.ID}, posting, options.Replace().SetUpsert(true))
	return storeError("upsert posting", err)
}

func (r *postingRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*models.Posting, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var posting models.Posting
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&posting)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("posting", id)
		}
		return nil, storeError("update posting", err)
	}

	return &posting, nil
}

func (r *postingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeError("delete posting", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NewNotFound("posting", id)
	}

	return nil
}

func (r *postingRepository) CommitTransition(ctx context.Context, id string, tr *lifecycle.Transition) (*models.Posting, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	guard := bson.M{"_id": id, "status": tr.From}

	if tr.Delete {
		result, err := r.collection.DeleteOne(ctx, guard)
		if err != nil {
			return nil, storeError("delete posting", err)
		}
		if result.DeletedCount == 0 {
			return nil, r.missedGuard(ctx, id)
		}
		return nil, nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var posting models.Posting
	err := r.collection.FindOneAndUpdate(ctx, guard, patchUpdate(tr.Patch), opts).Decode(&posting)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, r.missedGuard(ctx, id)
		}
		return nil, storeError("commit transition", err)
	}

	return &posting, nil
}

func (r *postingRepository) AppendRating(ctx context.Context, id string, rating *models.Rating) (*models.Posting, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{
		"_id":              id,
		"status":           models.PostingStatusDelivered,
		"ratings.rater_id": bson.M{"$ne": rating.RaterID},
	}
	update := bson.M{
		"$push": bson.M{"ratings": rating},
		"$set":  bson.M{"updated_at": rating.CreatedAt},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var posting models.Posting
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&posting)
	if err == nil {
		return &posting, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, storeError("append rating", err)
	}

	// Work out which guard rejected the write.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status != models.PostingStatusDelivered {
		return nil, apperrors.NewInvalidTransition(string(current.Status), string(current.Status),
			"Ratings can only be submitted after the donation has been delivered")
	}
	if current.HasRatingFrom(rating.RaterID) {
		return nil, apperrors.NewDuplicateAction("You have already rated this donation")
	}
	return nil, apperrors.NewStaleWrite(id)
}

// missedGuard distinguishes a vanished posting from a lost status race.
func (r *postingRepository) missedGuard(ctx context.Context, id string) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return storeError("check posting", err)
	}
	if count == 0 {
		return apperrors.NewNotFound("posting", id)
	}
	return apperrors.NewStaleWrite(id)
}

func patchUpdate(p lifecycle.Patch) bson.M {
	update := bson.M{}
	if len(p.Set) > 0 {
		set := bson.M{}
		for k, v := range p.Set {
			set[k] = v
		}
		update["$set"] = set
	}
	if len(p.Unset) > 0 {
		unset := bson.M{}
		for _, k := range p.Unset {
			unset[k] = ""
		}
		update["$unset"] = unset
	}
	if len(p.AddToSet) > 0 {
		add := bson.M{}
		for k, v := range p.AddToSet {
			add[k] = v
		}
		update["$addToSet"] = add
	}
	return update
}
