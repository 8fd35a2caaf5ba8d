package services

import (
	"context"
	"strings"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/utils"
	"donationhub/pkg/logger"
	"donationhub/pkg/payment"
)

// FeeService charges and verifies the fixed platform fee.
type FeeService interface {
	Charge(ctx context.Context, donor lifecycle.Actor, req *models.PlatformFeeRequest) (*models.PlatformFeeReceipt, error)
	// IsPaid reports whether reference is a settled fee payment made by donorID.
	IsPaid(ctx context.Context, donorID, reference string) (bool, error)
}

type feeService struct {
	provider payment.PaymentProvider
	amount   float64
	currency string
	logger   *logger.Logger
}

func NewFeeService(provider payment.PaymentProvider, amount float64, currency string, logger *logger.Logger) FeeService {
	return &feeService{
		provider: provider,
		amount:   amount,
		currency: currency,
		logger:   logger,
	}
}

func (s *feeService) Charge(ctx context.Context, donor lifecycle.Actor, req *models.PlatformFeeRequest) (*models.PlatformFeeReceipt, error) {
	if donor.Role != models.RoleDonor {
		return nil, apperrors.NewForbidden("only donors pay the platform fee")
	}

	resp, err := s.provider.ProcessPayment(ctx, &payment.PaymentRequest{
		PaymentMethodID: req.PaymentMethodID,
		Amount:          s.amount,
		Currency:        strings.ToLower(s.currency),
		Description:     "Donation platform fee",
		CustomerID:      donor.ID,
		Metadata:        map[string]interface{}{"purpose": "platform_fee"},
	})
	if err != nil {
		s.logger.WithUserID(donor.ID).WithError(err).Warn("Platform fee charge failed")
		return nil, apperrors.NewPaymentRequired("the platform fee could not be charged", err)
	}

	s.logger.WithUserID(donor.ID).LogPaymentEvent(resp.TransactionID, utils.EventFeeCaptured, resp.Amount, resp.Currency)

	return &models.PlatformFeeReceipt{
		Reference: resp.TransactionID,
		Provider:  s.provider.Name(),
		Status:    models.PaymentStatus(resp.Status),
		Amount:    resp.Amount,
		Currency:  resp.Currency,
		PaidAt:    time.Unix(resp.CreatedAt, 0).UTC(),
	}, nil
}

func (s *feeService) IsPaid(ctx context.Context, donorID, reference string) (bool, error) {
	if strings.TrimSpace(reference) == "" {
		return false, nil
	}

	resp, err := s.provider.VerifyPayment(ctx, reference)
	if err != nil {
		return false, apperrors.NewPaymentRequired("the platform fee payment could not be verified", err)
	}

	if !resp.Succeeded() {
		return false, nil
	}
	if resp.CustomerID != "" && resp.CustomerID != donorID {
		return false, nil
	}
	// Cents of rounding drift are tolerated.
	if resp.Amount+0.005 < s.amount {
		return false, nil
	}
	return true, nil
}
