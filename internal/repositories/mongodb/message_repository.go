package mongodb

import (
	"context"
	"time"

	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMessageRepository(db *mongo.Database, timeout time.Duration) interfaces.MessageRepository {
	return &messageRepository{
		collection: db.Collection("messages"),
		timeout:    timeout,
	}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, message)
	return storeError("create message", err)
}

func (r *messageRepository) ListByPosting(ctx context.Context, postingID string, limit, offset int) ([]*models.Message, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"posting_id": postingID}, opts)
	if err != nil {
		return nil, storeError("list messages", err)
	}
	defer cursor.Close(ctx)

	messages := make([]*models.Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, storeError("decode messages", err)
	}

	return messages, nil
}
