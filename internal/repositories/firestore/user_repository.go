package firestore

import (
	"context"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"
	"donationhub/internal/rating"
	"donationhub/internal/repositories/interfaces"

	"cloud.google.com/go/firestore"
)

type userRepository struct {
	client     *firestore.Client
	collection *firestore.CollectionRef
	timeout    time.Duration
}

func NewUserRepository(client *firestore.Client, timeout time.Duration) interfaces.UserRepository {
	return &userRepository{
		client:     client,
		collection: client.Collection("users"),
		timeout:    timeout,
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.Doc(user.ID).Create(ctx, user)
	if err != nil && statusAlreadyExists(err) {
		return apperrors.NewDuplicateAction("user " + user.ID + " is already registered")
	}
	return storeError("create user", err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	snap, err := r.collection.Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("user", id)
		}
		return nil, storeError("get user", err)
	}
	return decodeUser(snap)
}

func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.Doc(user.ID).Set(ctx, user)
	return storeError("upsert user", err)
}

func (r *userRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	ref := r.collection.Doc(id)
	if _, err := ref.Update(ctx, updates(fields, time.Now().UTC())); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("user", id)
		}
		return nil, storeError("update user", err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, storeError("get user", err)
	}
	return decodeUser(snap)
}

func (r *userRepository) ApplyRating(ctx context.Context, id string, value int) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	ref := r.collection.Doc(id)
	var updated *models.User

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return apperrors.NewNotFound("user", id)
			}
			return err
		}
		u, err := decodeUser(snap)
		if err != nil {
			return err
		}

		u.AverageRating, u.RatingsCount = rating.NextAverage(u.AverageRating, u.RatingsCount, value)
		u.UpdatedAt = time.Now().UTC()
		updated = u

		return tx.Update(ref, []firestore.Update{
			{Path: "averageRating", Value: u.AverageRating},
			{Path: "ratingsCount", Value: u.RatingsCount},
			{Path: "updatedAt", Value: u.UpdatedAt},
		})
	})
	if err != nil {
		return nil, storeError("apply rating", err)
	}

	return updated, nil
}

func decodeUser(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var u models.User
	if err := snap.DataTo(&u); err != nil {
		return nil, storeError("decode user", err)
	}
	u.ID = snap.Ref.ID
	return &u, nil
}
