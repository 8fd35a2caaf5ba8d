package services

import (
	"context"
	"errors"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"
	"donationhub/internal/utils"
	"donationhub/pkg/logger"
)

// LocationService stores a volunteer's position on every posting they are carrying.
type LocationService interface {
	UpdateLocation(ctx context.Context, volunteer lifecycle.Actor, location models.Coordinate) (*models.LocationUpdateResult, error)
}

type locationService struct {
	postingRepo  interfaces.PostingRepository
	cacheService CacheService
	minInterval  time.Duration
	logger       *logger.Logger
}

// NewLocationService throttles writes per volunteer through cacheService. A nil
// cacheService disables the server-side throttle.
func NewLocationService(postingRepo interfaces.PostingRepository, cacheService CacheService, minInterval time.Duration, logger *logger.Logger) LocationService {
	return &locationService{
		postingRepo:  postingRepo,
		cacheService: cacheService,
		minInterval:  minInterval,
		logger:       logger,
	}
}

func (s *locationService) UpdateLocation(ctx context.Context, volunteer lifecycle.Actor, location models.Coordinate) (*models.LocationUpdateResult, error) {
	if volunteer.Role != models.RoleVolunteer {
		return nil, apperrors.NewForbidden("only volunteers share their location")
	}

	if s.cacheService != nil && s.minInterval > 0 {
		acquired, err := s.cacheService.AcquireWindow(ctx, utils.CacheLocationPrefix+volunteer.ID, s.minInterval)
		if err != nil {
			// Redis trouble must not stop tracking.
			s.logger.LogDegraded("redis", err)
		} else if !acquired {
			return &models.LocationUpdateResult{Throttled: true}, nil
		}
	}

	postings, err := s.postingRepo.List(ctx, interfaces.PostingFilter{
		VolunteerID: volunteer.ID,
		Statuses: []models.PostingStatus{
			models.PostingStatusPickupVerificationPending,
			models.PostingStatusInTransit,
			models.PostingStatusDeliveryVerificationPending,
		},
	})
	if err != nil {
		return nil, err
	}

	result := &models.LocationUpdateResult{PostingIDs: []string{}}
	now := time.Now().UTC()
	for _, p := range postings {
		tr, err := lifecycle.Apply(p, volunteer, lifecycle.UpdateLocation{Location: location}, now)
		if err != nil {
			continue
		}
		if _, err := s.postingRepo.CommitTransition(ctx, p.ID, tr); err != nil {
			// The posting moved on since it was listed.
			if errors.Is(err, apperrors.ErrStaleWrite) || errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		result.PostingIDs = append(result.PostingIDs, p.ID)
	}
	result.Updated = len(result.PostingIDs)

	return result, nil
}
