package memory

import (
	"context"
	"sync"

	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"
)

type messageRepository struct {
	mu       sync.RWMutex
	messages []*models.Message
}

func NewMessageRepository() interfaces.MessageRepository {
	return &messageRepository{}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := *message
	r.messages = append(r.messages, &m)
	return nil
}

// ListByPosting relies on insertion order being chronological.
func (r *messageRepository) ListByPosting(ctx context.Context, postingID string, limit, offset int) ([]*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.Message, 0)
	for _, m := range r.messages {
		if m.PostingID == postingID {
			cp := *m
			matched = append(matched, &cp)
		}
	}
	return page(matched, limit, offset), nil
}
