package interfaces

import (
	"context"

	"donationhub/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error)

	// ApplyRating folds value into the stored average and count in one atomic step.
	ApplyRating(ctx context.Context, id string, value int) (*models.User, error)
}
