package models

import (
	"time"
)

// Message is a chat line exchanged between the parties of one posting.
type Message struct {
	ID         string    `json:"id" bson:"_id" firestore:"id"`
	PostingID  string    `json:"posting_id" bson:"posting_id" firestore:"postingId" validate:"required"`
	SenderID   string    `json:"sender_id" bson:"sender_id" firestore:"senderId" validate:"required"`
	SenderName string    `json:"sender_name" bson:"sender_name" firestore:"senderName"`
	SenderRole Role      `json:"sender_role" bson:"sender_role" firestore:"senderRole"`
	Text       string    `json:"text" bson:"text" firestore:"text" validate:"required,max=2000"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" firestore:"createdAt"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}
