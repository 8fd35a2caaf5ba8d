package rating

import (
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
)

const (
	MinValue = 1
	MaxValue = 5
)

// NextAverage folds one more rating into a running mean.
// The stored default average carries no weight while the count is zero.
func NextAverage(oldAvg float64, oldCount int, value int) (float64, int) {
	if oldCount < 0 {
		oldCount = 0
	}
	newCount := oldCount + 1
	return (oldAvg*float64(oldCount) + float64(value)) / float64(newCount), newCount
}

// Build validates a rating against the posting and returns the record to append.
func Build(p *models.Posting, rater lifecycle.Actor, req *models.RatingRequest, now time.Time) (*models.Rating, error) {
	if p.Status != models.PostingStatusDelivered {
		return nil, apperrors.NewInvalidTransition(string(p.Status), string(p.Status),
			"Ratings can only be submitted after the donation has been delivered")
	}
	if req.Rating < MinValue || req.Rating > MaxValue {
		return nil, apperrors.NewValidation("rating must be between 1 and 5")
	}
	if !p.IsParty(rater.ID) {
		return nil, apperrors.NewForbidden("only the donor, volunteer or requester of this donation can rate it")
	}
	if req.TargetID == rater.ID {
		return nil, apperrors.NewValidation("you cannot rate yourself")
	}
	if !p.IsParty(req.TargetID) {
		return nil, apperrors.NewValidation("the rated user did not take part in this donation")
	}
	if p.HasRatingFrom(rater.ID) {
		return nil, apperrors.NewDuplicateAction("You have already rated this donation")
	}

	return &models.Rating{
		RaterID:   rater.ID,
		RaterRole: rater.Role,
		TargetID:  req.TargetID,
		Rating:    req.Rating,
		Feedback:  req.Feedback,
		CreatedAt: now,
	}, nil
}
