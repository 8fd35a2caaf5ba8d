package firestore

import (
	"context"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
)

type notificationRepository struct {
	collection *firestore.CollectionRef
	timeout    time.Duration
}

func NewNotificationRepository(client *firestore.Client, timeout time.Duration) interfaces.NotificationRepository {
	return &notificationRepository{
		collection: client.Collection("notifications"),
		timeout:    timeout,
	}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.Doc(notification.ID).Set(ctx, notification)
	return storeError("create notification", err)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*models.Notification, int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	q := r.collection.Where("userId", "==", userID)
	if unreadOnly {
		q = q.Where("isRead", "==", false)
	}

	total, err := count(ctx, q)
	if err != nil {
		return nil, 0, storeError("count notifications", err)
	}

	iter := q.OrderBy("createdAt", firestore.Desc).Offset(offset).Limit(limit).Documents(ctx)
	defer iter.Stop()

	notifications := make([]*models.Notification, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, storeError("list notifications", err)
		}
		var n models.Notification
		if err := snap.DataTo(&n); err != nil {
			return nil, 0, storeError("decode notification", err)
		}
		n.ID = snap.Ref.ID
		notifications = append(notifications, &n)
	}

	return notifications, total, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	ref := r.collection.Doc(id)
	snap, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return apperrors.NewNotFound("notification", id)
		}
		return storeError("get notification", err)
	}
	if owner, _ := snap.DataAt("userId"); owner != userID {
		return apperrors.NewNotFound("notification", id)
	}

	_, err = ref.Update(ctx, []firestore.Update{{Path: "isRead", Value: true}})
	return storeError("mark notification as read", err)
}

func (r *notificationRepository) ExistsSince(ctx context.Context, userID, postingID string, t models.NotificationType, since time.Time) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	docs, err := r.collection.
		Where("userId", "==", userID).
		Where("postingId", "==", postingID).
		Where("type", "==", string(t)).
		Where("createdAt", ">=", since).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return false, storeError("check notification", err)
	}

	return len(docs) > 0, nil
}

func count(ctx context.Context, q firestore.Query) (int64, error) {
	result, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := result["all"].(*firestorepb.Value)
	if !ok {
		return 0, nil
	}
	return v.GetIntegerValue(), nil
}
