package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DeclinedPaymentMethod makes the simulated provider refuse a charge.
const DeclinedPaymentMethod = "pm_card_declined"

var ErrCardDeclined = errors.New("card declined")

// SimulatedProvider settles every charge immediately and keeps the results in memory.
type SimulatedProvider struct {
	mu       sync.RWMutex
	payments map[string]*PaymentResponse
}

func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{payments: make(map[string]*PaymentResponse)}
}

func (s *SimulatedProvider) Name() string { return "simulated" }

func (s *SimulatedProvider) ProcessPayment(ctx context.Context, request *PaymentRequest) (*PaymentResponse, error) {
	if request.PaymentMethodID == DeclinedPaymentMethod {
		return nil, ErrCardDeclined
	}
	if request.Amount <= 0 {
		return nil, fmt.Errorf("invalid amount %.2f", request.Amount)
	}

	resp := &PaymentResponse{
		TransactionID: "sim_" + uuid.NewString(),
		Status:        StatusSucceeded,
		Amount:        request.Amount,
		Currency:      request.Currency,
		CustomerID:    request.CustomerID,
		CreatedAt:     time.Now().Unix(),
		Metadata:      request.Metadata,
	}

	s.mu.Lock()
	s.payments[resp.TransactionID] = resp
	s.mu.Unlock()

	return resp, nil
}

func (s *SimulatedProvider) VerifyPayment(ctx context.Context, transactionID string) (*PaymentResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp, ok := s.payments[transactionID]
	if !ok {
		return nil, fmt.Errorf("payment %s not found", transactionID)
	}
	cp := *resp
	return &cp, nil
}
