package services

import (
	"context"

	"donationhub/internal/models"
	"donationhub/internal/observability"
	"donationhub/pkg/logger"
	"donationhub/pkg/ml"
)

// EvidenceService produces advisory safety verdicts for donation and evidence photos.
type EvidenceService interface {
	// Analyze never fails. When the classifier is unavailable the verdict is
	// the conservative fallback with Degraded set.
	Analyze(ctx context.Context, imageURL string) *models.SafetyCheck
}

type evidenceService struct {
	classifier ml.SafetyClassifier
	logger     *logger.Logger
}

// NewEvidenceService accepts a nil classifier, in which case every verdict is degraded.
func NewEvidenceService(classifier ml.SafetyClassifier, logger *logger.Logger) EvidenceService {
	return &evidenceService{
		classifier: classifier,
		logger:     logger,
	}
}

func (s *evidenceService) Analyze(ctx context.Context, imageURL string) *models.SafetyCheck {
	if s.classifier == nil {
		observability.RecordDegraded("safety_classifier")
		return toSafetyCheck(ml.Fallback())
	}

	result, err := s.classifier.Analyze(ctx, imageURL)
	if err != nil {
		s.logger.LogDegraded("safety_classifier", err)
		observability.RecordDegraded("safety_classifier")
		return toSafetyCheck(ml.Fallback())
	}

	return toSafetyCheck(result)
}

func toSafetyCheck(r *ml.SafetyResult) *models.SafetyCheck {
	return &models.SafetyCheck{
		IsSafe:        r.IsSafe,
		Reasoning:     r.Reasoning,
		DetectedLabel: r.DetectedLabel,
		Confidence:    r.Confidence,
		Degraded:      r.Degraded,
	}
}
