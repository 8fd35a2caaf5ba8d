package memory

import (
	"context"
	"sync"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"
	"donationhub/internal/rating"
	"donationhub/internal/repositories/interfaces"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewUserRepository() interfaces.UserRepository {
	return &userRepository{users: make(map[string]*models.User)}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return apperrors.NewDuplicateAction("user " + user.ID + " is already registered")
	}
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", id)
	}
	return copyUser(u), nil
}

func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *userRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", id)
	}

	next := copyUser(u)
	for k, v := range fields {
		switch k {
		case "name":
			next.Name, _ = v.(string)
		case "email":
			next.Email, _ = v.(string)
		case "address":
			if a, ok := v.(models.Address); ok {
				next.Address = &a
			}
		case "search_radius":
			next.SearchRadius, _ = v.(float64)
		case "donation_type_filter":
			next.DonationTypeFilter, _ = v.(models.DonationTypeFilter)
		default:
			return nil, apperrors.NewValidation("field " + k + " cannot be updated")
		}
	}
	next.UpdatedAt = time.Now().UTC()

	r.users[id] = next
	return copyUser(next), nil
}

func (r *userRepository) ApplyRating(ctx context.Context, id string, value int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", id)
	}

	next := copyUser(u)
	next.AverageRating, next.RatingsCount = rating.NextAverage(u.AverageRating, u.RatingsCount, value)
	next.UpdatedAt = time.Now().UTC()

	r.users[id] = next
	return copyUser(next), nil
}

func copyUser(u *models.User) *models.User {
	cp := *u
	if u.Address != nil {
		a := *u.Address
		cp.Address = &a
	}
	return &cp
}
