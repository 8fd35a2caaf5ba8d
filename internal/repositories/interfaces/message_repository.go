package interfaces

import (
	"context"

	"donationhub/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// ListByPosting returns messages oldest first.
	ListByPosting(ctx context.Context, postingID string, limit, offset int) ([]*models.Message, error)
}
