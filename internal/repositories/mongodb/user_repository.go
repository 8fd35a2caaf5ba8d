package mongodb

import (
	"context"
	"fmt"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCacheTTL = 15 * time.Minute

type userRepository struct {
	collection *mongo.Collection
	cache      CacheService
	timeout    time.Duration
}

func NewUserRepository(db *mongo.Database, cache CacheService, timeout time.Duration) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
		cache:      cache,
		timeout:    timeout,
	}
}

// Basic CRUD operations
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewDuplicateAction("user " + user.ID + " is already registered")
	}
	if err != nil {
		return storeError("create user", err)
	}

	r.cacheUser(ctx, user)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	// Try cache first
	if user := r.getUserFromCache(ctx, id); user != nil {
		return user, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("user", id)
		}
		return nil, storeError("get user", err)
	}

	r.cacheUser(ctx, &user)
	return &user, nil
}

func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, options.Replace().SetUpsert(true))
	if err != nil {
		return storeError("upsert user", err)
	}

	r.invalidateUserCache(ctx, user.ID)
	return nil
}

func (r *userRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	return r.findAndUpdate(ctx, id, bson.M{"$set": set}, "update user")
}

// ApplyRating recomputes the running mean inside a single pipeline update.
func (r *userRepository) ApplyRating(ctx context.Context, id string, value int) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	count := bson.M{"$ifNull": bson.A{"$ratings_count", 0}}
	avg := bson.M{"$ifNull": bson.A{"$average_rating", models.DefaultAverageRating}}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"average_rating": bson.M{"$divide": bson.A{
				bson.M{"$add": bson.A{bson.M{"$multiply": bson.A{avg, count}}, value}},
				bson.M{"$add": bson.A{count, 1}},
			}},
			"ratings_count": bson.M{"$add": bson.A{count, 1}},
			"updated_at":    time.Now().UTC(),
		}}},
	}

	return r.findAndUpdate(ctx, id, pipeline, "apply rating")
}

func (r *userRepository) findAndUpdate(ctx context.Context, id string, update interface{}, op string) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("user", id)
		}
		return nil, storeError(op, err)
	}

	r.invalidateUserCache(ctx, id)
	return &user, nil
}

// Cache helper methods
func (r *userRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache != nil {
		r.cache.Set(ctx, userCacheKey(user.ID), user, userCacheTTL)
	}
}

func (r *userRepository) getUserFromCache(ctx context.Context, userID string) *models.User {
	if r.cache == nil {
		return nil
	}

	var user models.User
	if err := r.cache.Get(ctx, userCacheKey(userID), &user); err != nil {
		return nil
	}

	return &user
}

func (r *userRepository) invalidateUserCache(ctx context.Context, userID string) {
	if r.cache != nil {
		r.cache.Delete(ctx, userCacheKey(userID))
	}
}

func userCacheKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}
