package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypePostingClaimed      NotificationType = "posting_claimed"
	NotificationTypeVolunteerInterested NotificationType = "volunteer_interested"
	NotificationTypePickupEvidence      NotificationType = "pickup_evidence"
	NotificationTypePickupApproved      NotificationType = "pickup_approved"
	NotificationTypePickupRejected      NotificationType = "pickup_rejected"
	NotificationTypeDeliveryEvidence    NotificationType = "delivery_evidence"
	NotificationTypeDeliveryApproved    NotificationType = "delivery_approved"
	NotificationTypeDeliveryRejected    NotificationType = "delivery_rejected"
	NotificationTypePostingCancelled    NotificationType = "posting_cancelled"
	NotificationTypeVerificationPending NotificationType = "verification_reminder"
	NotificationTypeRatingReceived      NotificationType = "rating_received"
	NotificationTypeMessage             NotificationType = "message"
)

type Notification struct {
	ID        string           `json:"id" bson:"_id" firestore:"id"`
	UserID    string           `json:"user_id" bson:"user_id" firestore:"userId" validate:"required"`
	Message   string           `json:"message" bson:"message" firestore:"message" validate:"required"`
	IsRead    bool             `json:"is_read" bson:"is_read" firestore:"isRead"`
	Type      NotificationType `json:"type" bson:"type" firestore:"type"`
	PostingID string           `json:"posting_id,omitempty" bson:"posting_id,omitempty" firestore:"postingId,omitempty"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at" firestore:"createdAt"`
}
