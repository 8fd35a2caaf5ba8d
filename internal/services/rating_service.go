package services

import (
	"context"
	"fmt"
	"time"

	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/observability"
	"donationhub/internal/rating"
	"donationhub/internal/repositories/interfaces"
	"donationhub/internal/utils"
	"donationhub/pkg/logger"
)

type RatingService interface {
	// SubmitRating appends the rating to the posting, then folds it into the target's
	// average. A failed second step is retried and otherwise reported through
	// RatingResult.UserStatsUpdated; it never undoes the first.
	SubmitRating(ctx context.Context, rater lifecycle.Actor, postingID string, req *models.RatingRequest) (*models.RatingResult, error)
}

type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

var DefaultRatingRetry = RetryPolicy{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond}

type ratingService struct {
	postingRepo         interfaces.PostingRepository
	userRepo            interfaces.UserRepository
	notificationService NotificationService
	retry               RetryPolicy
	logger              *logger.Logger
}

func NewRatingService(
	postingRepo interfaces.PostingRepository,
	userRepo interfaces.UserRepository,
	notificationService NotificationService,
	retry RetryPolicy,
	logger *logger.Logger,
) RatingService {
	if retry.MaxAttempts < 1 {
		retry = DefaultRatingRetry
	}
	return &ratingService{
		postingRepo:         postingRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		retry:               retry,
		logger:              logger,
	}
}

func (s *ratingService) SubmitRating(ctx context.Context, rater lifecycle.Actor, postingID string, req *models.RatingRequest) (*models.RatingResult, error) {
	posting, err := s.postingRepo.GetByID(ctx, postingID)
	if err != nil {
		return nil, err
	}

	r, err := rating.Build(posting, rater, req, time.Now().UTC())
	if err != nil {
		observability.RecordRating("rejected")
		return nil, err
	}

	updated, err := s.postingRepo.AppendRating(ctx, postingID, r)
	if err != nil {
		observability.RecordRating("rejected")
		return nil, err
	}

	result := &models.RatingResult{Posting: updated}

	err = utils.RetryWithBackoff(ctx, s.retry.MaxAttempts, s.retry.InitialDelay, func(ctx context.Context) error {
		target, err := s.userRepo.ApplyRating(ctx, r.TargetID, r.Rating)
		if err != nil {
			return err
		}
		result.Target = target
		return nil
	})
	if err != nil {
		observability.RecordRating("user_stats_pending")
		s.logger.WithPostingID(postingID).
			WithUserID(r.TargetID).
			WithError(err).
			Error("Rating stored on posting but target user stats were not updated")
	} else {
		result.UserStatsUpdated = true
		observability.RecordRating("accepted")
	}

	s.logger.WithUserID(rater.ID).LogPostingEvent(postingID, utils.EventRatingSubmitted, map[string]interface{}{
		"target_id": r.TargetID,
		"rating":    r.Rating,
	})

	if s.notificationService != nil {
		message := fmt.Sprintf("%s rated you %d/5 for %q", rater.Name, r.Rating, posting.Name)
		if err := s.notificationService.Notify(ctx, r.TargetID, postingID, models.NotificationTypeRatingReceived, message); err != nil {
			s.logger.WithPostingID(postingID).WithError(err).Warn("Failed to write rating notification")
		}
	}

	return result, nil
}
