package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"
)

type notificationRepository struct {
	mu            sync.RWMutex
	notifications []*models.Notification
}

func NewNotificationRepository() interfaces.NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := *notification
	r.notifications = append(r.notifications, &n)
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*models.Notification, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.Notification, 0)
	for _, n := range r.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		cp := *n
		matched = append(matched, &cp)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return page(matched, limit, offset), int64(len(matched)), nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return apperrors.NewNotFound("notification", id)
}

func (r *notificationRepository) ExistsSince(ctx context.Context, userID, postingID string, t models.NotificationType, since time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.notifications {
		if n.UserID == userID && n.PostingID == postingID && n.Type == t && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return make([]T, 0)
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
