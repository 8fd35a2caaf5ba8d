package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeProvider struct {
	client *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeProvider{client: sc}
}

func (s *StripeProvider) Name() string { return "stripe" }

func (s *StripeProvider) ProcessPayment(ctx context.Context, request *PaymentRequest) (*PaymentResponse, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toMinorUnits(request.Amount)),
		Currency:      stripe.String(request.Currency),
		PaymentMethod: stripe.String(request.PaymentMethodID),
		Description:   stripe.String(request.Description),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	for key, value := range request.Metadata {
		params.AddMetadata(key, fmt.Sprintf("%v", value))
	}
	params.AddMetadata("customer_id", request.CustomerID)

	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return stripeResponse(pi), nil
}

func (s *StripeProvider) VerifyPayment(ctx context.Context, transactionID string) (*PaymentResponse, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.client.PaymentIntents.Get(transactionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment intent: %w", err)
	}

	return stripeResponse(pi), nil
}

func stripeResponse(pi *stripe.PaymentIntent) *PaymentResponse {
	metadata := make(map[string]interface{}, len(pi.Metadata))
	for k, v := range pi.Metadata {
		metadata[k] = v
	}

	return &PaymentResponse{
		TransactionID: pi.ID,
		Status:        stripeStatus(pi.Status),
		Amount:        float64(pi.Amount) / 100,
		Currency:      string(pi.Currency),
		CustomerID:    pi.Metadata["customer_id"],
		CreatedAt:     pi.Created,
		Metadata:      metadata,
	}
}

func stripeStatus(status stripe.PaymentIntentStatus) Status {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return StatusFailed
	default:
		return StatusPending
	}
}
