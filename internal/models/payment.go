package models

import (
	"time"
)

type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PlatformFeeRequest pays the one-off fee a donor owes before posting.
type PlatformFeeRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
}

// PlatformFeeReceipt is returned to the donor. Reference goes into the posting request
// as fee_reference.
type PlatformFeeReceipt struct {
	Reference string        `json:"reference"`
	Provider  string        `json:"provider"`
	Status    PaymentStatus `json:"status"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	PaidAt    time.Time     `json:"paid_at"`
}
