package interfaces

import (
	"context"
	"time"

	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
)

// PostingFilter narrows List. Zero-valued fields are ignored.
type PostingFilter struct {
	DonorID       string
	VolunteerID   string
	OrphanageID   string
	Statuses      []models.PostingStatus
	UpdatedBefore *time.Time
}

type PostingRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, posting *models.Posting) error
	GetByID(ctx context.Context, id string) (*models.Posting, error)
	List(ctx context.Context, filter PostingFilter) ([]*models.Posting, error)
	Upsert(ctx context.Context, posting *models.Posting) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*models.Posting, error)
	Delete(ctx context.Context, id string) error

	// CommitTransition applies tr only if the stored status still equals tr.From.
	// A lost race returns apperrors.ErrStaleWrite and leaves the record untouched.
	CommitTransition(ctx context.Context, id string, tr *lifecycle.Transition) (*models.Posting, error)

	// AppendRating adds r if the posting is DELIVERED and holds no rating from r.RaterID.
	AppendRating(ctx context.Context, id string, r *models.Rating) (*models.Posting, error)
}
