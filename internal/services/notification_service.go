package services

import (
	"context"
	"fmt"
	"time"

	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"
	"donationhub/internal/utils"
	"donationhub/pkg/logger"

	"github.com/google/uuid"
)

type NotificationService interface {
	Notify(ctx context.Context, userID, postingID string, t models.NotificationType, message string) error
	List(ctx context.Context, userID string, unreadOnly bool, params *utils.PaginationParams) ([]*models.Notification, int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error

	// NotifyTransition tells the affected parties about a committed transition.
	// before is the posting as it was read prior to the transition. Failures are logged.
	NotifyTransition(ctx context.Context, tr *lifecycle.Transition, before *models.Posting, actor lifecycle.Actor)

	// RemindOnce sends a reminder unless the user already got one of the same type for
	// the posting at or after since. It reports whether a notification was written.
	RemindOnce(ctx context.Context, userID, postingID string, t models.NotificationType, message string, since time.Time) (bool, error)
}

type notificationService struct {
	notificationRepo interfaces.NotificationRepository
	logger           *logger.Logger
}

func NewNotificationService(notificationRepo interfaces.NotificationRepository, logger *logger.Logger) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID, postingID string, t models.NotificationType, message string) error {
	if userID == "" {
		return nil
	}

	notification := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		Type:      t,
		PostingID: postingID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, params *utils.PaginationParams) ([]*models.Notification, int64, error) {
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly, params.GetLimit(), params.GetSkip())
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	return s.notificationRepo.MarkAsRead(ctx, notificationID, userID)
}

func (s *notificationService) RemindOnce(ctx context.Context, userID, postingID string, t models.NotificationType, message string, since time.Time) (bool, error) {
	exists, err := s.notificationRepo.ExistsSince(ctx, userID, postingID, t, since)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := s.Notify(ctx, userID, postingID, t, message); err != nil {
		return false, err
	}
	return true, nil
}

type notice struct {
	userID  string
	kind    models.NotificationType
	message string
}

func (s *notificationService) NotifyTransition(ctx context.Context, tr *lifecycle.Transition, before *models.Posting, actor lifecycle.Actor) {
	for _, n := range transitionNotices(tr, before, actor) {
		if n.userID == actor.ID {
			continue
		}
		if err := s.Notify(ctx, n.userID, before.ID, n.kind, n.message); err != nil {
			s.logger.WithPostingID(before.ID).
				WithUserID(n.userID).
				WithError(err).
				Warn("Failed to write transition notification")
		}
	}
}

func transitionNotices(tr *lifecycle.Transition, before *models.Posting, actor lifecycle.Actor) []notice {
	item := before.Name
	after := tr.Posting

	switch tr.Event {
	case lifecycle.ClaimPosting{}.Name():
		return []notice{{before.DonorID, models.NotificationTypePostingClaimed,
			fmt.Sprintf("%s requested your donation %q", actor.Name, item)}}

	case lifecycle.ExpressInterest{}.Name():
		return []notice{{before.DonorID, models.NotificationTypeVolunteerInterested,
			fmt.Sprintf("%s is interested in delivering %q", actor.Name, item)}}

	case lifecycle.UploadPickupEvidence{}.Name():
		return []notice{
			{before.DonorID, models.NotificationTypePickupEvidence,
				fmt.Sprintf("%s uploaded pickup evidence for %q. Please review it.", actor.Name, item)},
			{before.OrphanageID, models.NotificationTypePickupEvidence,
				fmt.Sprintf("%s is picking up %q", actor.Name, item)},
		}

	case lifecycle.ApprovePickup{}.Name():
		return []notice{
			{after.VolunteerID, models.NotificationTypePickupApproved,
				fmt.Sprintf("Pickup of %q was approved. You can start the delivery.", item)},
			{after.OrphanageID, models.NotificationTypePickupApproved,
				fmt.Sprintf("%q is on its way", item)},
		}

	case lifecycle.RejectPickup{}.Name():
		return []notice{{before.VolunteerID, models.NotificationTypePickupRejected,
			fmt.Sprintf("The donor rejected the pickup evidence for %q", item)}}

	case lifecycle.UploadDeliveryEvidence{}.Name():
		return []notice{{before.DonorID, models.NotificationTypeDeliveryEvidence,
			fmt.Sprintf("Delivery evidence for %q is ready for review", item)}}

	case lifecycle.ApproveDelivery{}.Name():
		message := fmt.Sprintf("%q was delivered. Thank you!", item)
		return []notice{
			{after.VolunteerID, models.NotificationTypeDeliveryApproved, message},
			{after.OrphanageID, models.NotificationTypeDeliveryApproved, message},
		}

	case lifecycle.RejectDelivery{}.Name():
		message := fmt.Sprintf("The donor rejected the delivery evidence for %q", item)
		return []notice{
			{after.VolunteerID, models.NotificationTypeDeliveryRejected, message},
			{after.OrphanageID, models.NotificationTypeDeliveryRejected, message},
		}

	case lifecycle.Cancel{}.Name():
		message := fmt.Sprintf("%q was withdrawn by the donor", item)
		notices := []notice{{before.OrphanageID, models.NotificationTypePostingCancelled, message}}
		for _, id := range before.InterestedVolunteers {
			notices = append(notices, notice{id, models.NotificationTypePostingCancelled, message})
		}
		return notices
	}

	return nil
}
