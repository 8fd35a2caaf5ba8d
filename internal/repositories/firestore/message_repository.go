package firestore

import (
	"context"
	"time"

	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type messageRepository struct {
	collection *firestore.CollectionRef
	timeout    time.Duration
}

func NewMessageRepository(client *firestore.Client, timeout time.Duration) interfaces.MessageRepository {
	return &messageRepository{
		collection: client.Collection("messages"),
		timeout:    timeout,
	}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.Doc(message.ID).Set(ctx, message)
	return storeError("create message", err)
}

func (r *messageRepository) ListByPosting(ctx context.Context, postingID string, limit, offset int) ([]*models.Message, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	iter := r.collection.
		Where("postingId", "==", postingID).
		OrderBy("createdAt", firestore.Asc).
		Offset(offset).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	messages := make([]*models.Message, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError("list messages", err)
		}
		var m models.Message
		if err := snap.DataTo(&m); err != nil {
			return nil, storeError("decode message", err)
		}
		m.ID = snap.Ref.ID
		messages = append(messages, &m)
	}

	return messages, nil
}
