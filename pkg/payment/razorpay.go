package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/razorpay/razorpay-go"
)

type RazorpayProvider struct {
	client *razorpay.Client
}

func NewRazorpayProvider(keyID, keySecret string) *RazorpayProvider {
	return &RazorpayProvider{client: razorpay.NewClient(keyID, keySecret)}
}

func (r *RazorpayProvider) Name() string { return "razorpay" }

// ProcessPayment creates an order. The payment itself is authorized on the client,
// so the response stays pending until VerifyPayment sees it captured.
func (r *RazorpayProvider) ProcessPayment(ctx context.Context, request *PaymentRequest) (*PaymentResponse, error) {
	orderData := map[string]interface{}{
		"amount":   toMinorUnits(request.Amount),
		"currency": request.Currency,
		"receipt":  request.CustomerID,
		"notes":    request.Metadata,
	}

	order, err := r.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return &PaymentResponse{
		TransactionID: stringField(order, "id"),
		Status:        StatusPending,
		Amount:        float64(intField(order, "amount")) / 100,
		Currency:      stringField(order, "currency"),
		CustomerID:    request.CustomerID,
		CreatedAt:     intField(order, "created_at"),
	}, nil
}

func (r *RazorpayProvider) VerifyPayment(ctx context.Context, transactionID string) (*PaymentResponse, error) {
	payment, err := r.client.Payment.Fetch(transactionID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}

	return &PaymentResponse{
		TransactionID: stringField(payment, "id"),
		Status:        razorpayStatus(stringField(payment, "status")),
		Amount:        float64(intField(payment, "amount")) / 100,
		Currency:      stringField(payment, "currency"),
		CreatedAt:     intField(payment, "created_at"),
	}, nil
}

func razorpayStatus(status string) Status {
	switch status {
	case "captured":
		return StatusSucceeded
	case "failed", "refunded":
		return StatusFailed
	default:
		return StatusPending
	}
}

// Razorpay responses are decoded JSON, so numbers arrive as float64.
func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func intField(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}
