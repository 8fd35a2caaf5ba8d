package mongodb

import (
	"context"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type notificationRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewNotificationRepository(db *mongo.Database, timeout time.Duration) interfaces.NotificationRepository {
	return &notificationRepository{
		collection: db.Collection("notifications"),
		timeout:    timeout,
	}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, notification)
	return storeError("create notification", err)
}

// User notifications
func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*models.Notification, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["is_read"] = false
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeError("count notifications", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, storeError("list notifications", err)
	}
	defer cursor.Close(ctx)

	notifications := make([]*models.Notification, 0)
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, storeError("decode notifications", err)
	}

	return notifications, total, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return storeError("mark notification as read", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NewNotFound("notification", id)
	}

	return nil
}

func (r *notificationRepository) ExistsSince(ctx context.Context, userID, postingID string, t models.NotificationType, since time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id":    userID,
		"posting_id": postingID,
		"type":       t,
		"created_at": bson.M{"$gte": since},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, storeError("check notification", err)
	}

	return count > 0, nil
}
