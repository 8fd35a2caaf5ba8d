package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/observability"
	"donationhub/internal/repositories/interfaces"
	"donationhub/internal/utils"
	"donationhub/pkg/logger"

	"github.com/google/uuid"
)

type PostingService interface {
	CreatePosting(ctx context.Context, donor lifecycle.Actor, req *models.CreatePostingRequest) (*models.Posting, error)
	GetPosting(ctx context.Context, id string) (*models.Posting, error)
	ListPostings(ctx context.Context, filter interfaces.PostingFilter) ([]*models.Posting, error)

	// Content edits. Lifecycle fields only move through Transition.
	UpdatePosting(ctx context.Context, donor lifecycle.Actor, id string, update *models.PostingContentUpdate) (*models.Posting, error)
	ReplacePosting(ctx context.Context, donor lifecycle.Actor, id string, req *models.ReplacePostingRequest) (*models.Posting, error)

	// Transition validates ev with the lifecycle engine and commits it with a
	// compare-and-set on the posting status. A cancelled posting returns nil.
	Transition(ctx context.Context, actor lifecycle.Actor, id string, ev lifecycle.Event) (*models.Posting, error)

	// CheckSafety runs the advisory classifier on the latest photo and stores the verdict.
	CheckSafety(ctx context.Context, actor lifecycle.Actor, id string) (*models.SafetyCheck, error)
}

type postingService struct {
	postingRepo         interfaces.PostingRepository
	feeService          FeeService
	evidenceService     EvidenceService
	geocodingService    GeocodingService
	notificationService NotificationService
	logger              *logger.Logger
	now                 func() time.Time
}

func NewPostingService(
	postingRepo interfaces.PostingRepository,
	feeService FeeService,
	evidenceService EvidenceService,
	geocodingService GeocodingService,
	notificationService NotificationService,
	logger *logger.Logger,
) PostingService {
	return &postingService{
		postingRepo:         postingRepo,
		feeService:          feeService,
		evidenceService:     evidenceService,
		geocodingService:    geocodingService,
		notificationService: notificationService,
		logger:              logger,
		now:                 func() time.Time { return time.Now().UTC() },
	}
}

func (s *postingService) CreatePosting(ctx context.Context, donor lifecycle.Actor, req *models.CreatePostingRequest) (*models.Posting, error) {
	if donor.Role != models.RoleDonor {
		return nil, apperrors.NewForbidden("only donors can create postings")
	}

	paid, err := s.feeService.IsPaid(ctx, donor.ID, req.FeeReference)
	if err != nil {
		return nil, err
	}

	posting, err := lifecycle.NewPosting(uuid.NewString(), req, donor, paid, s.now())
	if err != nil {
		return nil, err
	}

	s.locate(ctx, &posting.Location)

	if err := s.postingRepo.Create(ctx, posting); err != nil {
		return nil, err
	}

	s.logger.WithUserID(donor.ID).LogPostingEvent(posting.ID, utils.EventPostingCreated, map[string]interface{}{
		"donation_type": posting.DonationType,
		"fee_reference": req.FeeReference,
	})

	return posting, nil
}

// locate fills missing pickup coordinates from the typed address when the geocoder can.
func (s *postingService) locate(ctx context.Context, addr *models.Address) {
	if addr.HasCoordinates() || s.geocodingService == nil {
		return
	}

	query := strings.TrimSpace(strings.Join([]string{addr.Line1, addr.Line2, addr.Pincode}, " "))
	if query == "" {
		return
	}

	result, err := s.geocodingService.Geocode(ctx, query)
	if err != nil || result.Degraded {
		return
	}
	addr.Lat = result.Address.Lat
	addr.Lng = result.Address.Lng
}

func (s *postingService) GetPosting(ctx context.Context, id string) (*models.Posting, error) {
	return s.postingRepo.GetByID(ctx, id)
}

func (s *postingService) ListPostings(ctx context.Context, filter interfaces.PostingFilter) ([]*models.Posting, error) {
	return s.postingRepo.List(ctx, filter)
}

func (s *postingService) UpdatePosting(ctx context.Context, donor lifecycle.Actor, id string, update *models.PostingContentUpdate) (*models.Posting, error) {
	fields := update.Fields()
	if len(fields) == 0 {
		return nil, apperrors.NewValidation("no editable fields supplied")
	}
	if v, ok := fields["image_url"].(string); ok && strings.TrimSpace(v) == "" {
		return nil, apperrors.NewValidation("a photo of the donation is required")
	}
	return s.editContent(ctx, donor, id, fields)
}

func (s *postingService) ReplacePosting(ctx context.Context, donor lifecycle.Actor, id string, req *models.ReplacePostingRequest) (*models.Posting, error) {
	if !req.DonationType.IsValid() {
		return nil, apperrors.NewValidation("donation type must be FOOD or CLOTHES")
	}
	return s.editContent(ctx, donor, id, req.Fields())
}

// editContent allows the owning donor to change content until a volunteer has the goods.
func (s *postingService) editContent(ctx context.Context, donor lifecycle.Actor, id string, fields map[string]interface{}) (*models.Posting, error) {
	current, err := s.postingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if donor.Role != models.RoleDonor || current.DonorID != donor.ID {
		return nil, apperrors.NewForbidden("only the donor who created this item can edit it")
	}
	if current.Status != models.PostingStatusAvailable && current.Status != models.PostingStatusRequested {
		return nil, apperrors.NewInvalidTransition(string(current.Status), string(current.Status),
			"This item can no longer be edited because a volunteer has picked it up")
	}

	if addr, ok := fields["location"].(models.Address); ok {
		s.locate(ctx, &addr)
		fields["location"] = addr
	}

	updated, err := s.postingRepo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.logger.WithUserID(donor.ID).LogPostingEvent(id, utils.EventPostingUpdated, map[string]interface{}{
		"fields": len(fields),
	})
	return updated, nil
}

func (s *postingService) Transition(ctx context.Context, actor lifecycle.Actor, id string, ev lifecycle.Event) (*models.Posting, error) {
	current, err := s.postingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	tr, err := lifecycle.Apply(current, actor, ev, s.now())
	if err != nil {
		s.rejected(id, actor, ev, err)
		return nil, err
	}

	updated, err := s.postingRepo.CommitTransition(ctx, id, tr)
	if err != nil {
		if errors.Is(err, apperrors.ErrStaleWrite) {
			err = s.explainStale(ctx, id, actor, ev, err)
		}
		s.rejected(id, actor, ev, err)
		return nil, err
	}

	observability.RecordTransition(tr.Event, string(tr.From), string(tr.To))
	s.logger.WithUserID(actor.ID).LogPostingEvent(id, tr.Event, map[string]interface{}{
		"from":  tr.From,
		"to":    tr.To,
		"actor": actor.Role,
	})

	if s.notificationService != nil {
		s.notificationService.NotifyTransition(ctx, tr, current, actor)
	}

	return updated, nil
}

// explainStale re-reads the posting after a lost race. The error keeps the StaleWrite
// code but carries the reason the event would now be refused, when there is one.
func (s *postingService) explainStale(ctx context.Context, id string, actor lifecycle.Actor, ev lifecycle.Event, staleErr error) error {
	latest, err := s.postingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return staleErr
	}

	_, applyErr := lifecycle.Apply(latest, actor, ev, s.now())
	var reason *apperrors.AppError
	if !errors.As(applyErr, &reason) || reason.Code != apperrors.CodeInvalidTransition {
		return staleErr
	}

	return &apperrors.AppError{
		Code:    apperrors.CodeStaleWrite,
		Message: reason.Message,
		From:    reason.From,
		To:      reason.To,
		Err:     staleErr,
	}
}

func (s *postingService) rejected(id string, actor lifecycle.Actor, ev lifecycle.Event, err error) {
	observability.RecordRejection(ev.Name(), err)
	s.logger.WithPostingID(id).
		WithUserID(actor.ID).
		WithField("event", ev.Name()).
		WithError(err).
		Info("Transition rejected")
}

func (s *postingService) CheckSafety(ctx context.Context, actor lifecycle.Actor, id string) (*models.SafetyCheck, error) {
	current, err := s.postingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.IsParty(actor.ID) {
		return nil, apperrors.NewForbidden("only the parties of this donation can request a safety check")
	}

	check := s.evidenceService.Analyze(ctx, current.EvidenceImage())

	if _, err := s.postingRepo.UpdateFields(ctx, id, map[string]interface{}{"safety_check": check}); err != nil {
		return nil, err
	}

	s.logger.WithUserID(actor.ID).LogPostingEvent(id, "safety_check", map[string]interface{}{
		"is_safe":  check.IsSafe,
		"degraded": check.Degraded,
	})
	return check, nil
}
