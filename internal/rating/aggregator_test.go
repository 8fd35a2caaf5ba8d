package rating

import (
	"testing"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func deliveredPosting() *models.Posting {
	return &models.Posting{
		ID:          "p1",
		DonorID:     "donor-1",
		VolunteerID: "vol-1",
		OrphanageID: "req-1",
		Status:      models.PostingStatusDelivered,
		Ratings:     []models.Rating{},
	}
}

func TestNextAverage_Sequence(t *testing.T) {
	avg, count := models.DefaultAverageRating, 0

	avg, count = NextAverage(avg, count, 3)
	assert.Equal(t, 3.0, avg)
	assert.Equal(t, 1, count)

	avg, count = NextAverage(avg, count, 5)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 2, count)

	avg, count = NextAverage(avg, count, 1)
	assert.Equal(t, 3.0, avg)
	assert.Equal(t, 3, count)
}

func TestBuild(t *testing.T) {
	donor := lifecycle.Actor{ID: "donor-1", Role: models.RoleDonor}

	r, err := Build(deliveredPosting(), donor, &models.RatingRequest{TargetID: "vol-1", Rating: 3, Feedback: "on time"}, now)
	require.NoError(t, err)
	assert.Equal(t, "donor-1", r.RaterID)
	assert.Equal(t, models.RoleDonor, r.RaterRole)
	assert.Equal(t, "vol-1", r.TargetID)
	assert.Equal(t, 3, r.Rating)
	assert.Equal(t, now, r.CreatedAt)
}

func TestBuild_Rejections(t *testing.T) {
	donor := lifecycle.Actor{ID: "donor-1", Role: models.RoleDonor}
	stranger := lifecycle.Actor{ID: "x", Role: models.RoleVolunteer}

	inTransit := deliveredPosting()
	inTransit.Status = models.PostingStatusInTransit

	alreadyRated := deliveredPosting()
	alreadyRated.Ratings = []models.Rating{{RaterID: "donor-1", TargetID: "vol-1", Rating: 4}}

	tests := []struct {
		name    string
		posting *models.Posting
		rater   lifecycle.Actor
		req     models.RatingRequest
		want    *apperrors.AppError
	}{
		{"not delivered", inTransit, donor, models.RatingRequest{TargetID: "vol-1", Rating: 4}, apperrors.ErrInvalidTransition},
		{"too low", deliveredPosting(), donor, models.RatingRequest{TargetID: "vol-1", Rating: 0}, apperrors.ErrValidation},
		{"too high", deliveredPosting(), donor, models.RatingRequest{TargetID: "vol-1", Rating: 6}, apperrors.ErrValidation},
		{"stranger", deliveredPosting(), stranger, models.RatingRequest{TargetID: "vol-1", Rating: 4}, apperrors.ErrForbidden},
		{"self", deliveredPosting(), donor, models.RatingRequest{TargetID: "donor-1", Rating: 4}, apperrors.ErrValidation},
		{"target outside posting", deliveredPosting(), donor, models.RatingRequest{TargetID: "x", Rating: 4}, apperrors.ErrValidation},
		{"duplicate", alreadyRated, donor, models.RatingRequest{TargetID: "req-1", Rating: 5}, apperrors.ErrDuplicateAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.posting, tt.rater, &tt.req, now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
