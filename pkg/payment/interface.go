package payment

import (
	"context"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// PaymentProvider charges the one-off platform fee and confirms it later by reference.
type PaymentProvider interface {
	Name() string
	ProcessPayment(ctx context.Context, request *PaymentRequest) (*PaymentResponse, error)
	VerifyPayment(ctx context.Context, transactionID string) (*PaymentResponse, error)
}

type PaymentRequest struct {
	PaymentMethodID string                 `json:"payment_method_id"`
	Amount          float64                `json:"amount"`
	Currency        string                 `json:"currency"`
	Description     string                 `json:"description"`
	CustomerID      string                 `json:"customer_id"`
	Metadata        map[string]interface{} `json:"metadata"`
}

type PaymentResponse struct {
	TransactionID string                 `json:"transaction_id"`
	Status        Status                 `json:"status"`
	Amount        float64                `json:"amount"`
	Currency      string                 `json:"currency"`
	CustomerID    string                 `json:"customer_id,omitempty"`
	CreatedAt     int64                  `json:"created_at"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

func (r *PaymentResponse) Succeeded() bool {
	return r != nil && r.Status == StatusSucceeded
}

// toMinorUnits converts a decimal amount into cents/paise.
func toMinorUnits(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
