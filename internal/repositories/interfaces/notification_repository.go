package interfaces

import (
	"context"
	"time"

	"donationhub/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*models.Notification, int64, error)
	MarkAsRead(ctx context.Context, id, userID string) error

	// ExistsSince reports whether userID already received a notification of type t
	// about postingID at or after since.
	ExistsSince(ctx context.Context, userID, postingID string, t models.NotificationType, since time.Time) (bool, error)
}
