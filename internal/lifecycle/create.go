package lifecycle

import (
	"strings"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"
)

// NewPosting builds an AVAILABLE posting from a donor's request. The platform fee
// must already be captured and a photo of the donation supplied.
func NewPosting(id string, req *models.CreatePostingRequest, donor Actor, feePaid bool, now time.Time) (*models.Posting, error) {
	if donor.Role != models.RoleDonor {
		return nil, apperrors.NewForbidden("only donors can create postings")
	}
	if !feePaid {
		return nil, apperrors.NewPaymentRequired("the platform fee must be paid before posting", nil)
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		return nil, apperrors.NewValidation("a photo of the donation is required")
	}
	if !req.DonationType.IsValid() {
		return nil, apperrors.NewValidation("donation type must be FOOD or CLOTHES")
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = req.DonationType.DefaultUnit()
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	return &models.Posting{
		ID:                   id,
		DonationType:         req.DonationType,
		DonorID:              donor.ID,
		DonorName:            donor.Name,
		Name:                 req.Name,
		Description:          req.Description,
		Quantity:             req.Quantity,
		Unit:                 unit,
		ExpiryDate:           req.ExpiryDate,
		ImageURL:             req.ImageURL,
		Tags:                 tags,
		Location:             req.Location,
		Status:               models.PostingStatusAvailable,
		InterestedVolunteers: []string{},
		Ratings:              []models.Rating{},
		PlatformFeePaid:      true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}
