package services

import (
	"context"
	"strings"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"
	"donationhub/internal/utils"
	"donationhub/pkg/logger"
)

type UserService interface {
	// Register creates the profile for an identity-provider subject. The role is fixed here.
	Register(ctx context.Context, userID string, req *models.RegisterUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdatePreferences(ctx context.Context, actorID, id string, update *models.UserPreferencesUpdate) (*models.User, error)

	// Actor resolves an authenticated user into the identity used by the lifecycle engine.
	Actor(ctx context.Context, userID string) (lifecycle.Actor, error)
}

type userService struct {
	userRepo interfaces.UserRepository
	logger   *logger.Logger
}

func NewUserService(userRepo interfaces.UserRepository, logger *logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *userService) Register(ctx context.Context, userID string, req *models.RegisterUserRequest) (*models.User, error) {
	if userID == "" {
		return nil, apperrors.NewValidation("user id is required")
	}
	if !req.Role.IsValid() {
		return nil, apperrors.NewValidation("role must be DONOR, VOLUNTEER or REQUESTER")
	}

	user := models.NewUser(userID, strings.TrimSpace(req.Name), strings.ToLower(strings.TrimSpace(req.Email)), req.Role, time.Now().UTC())
	user.Address = req.Address

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, utils.EventUserRegistered, map[string]interface{}{
		"role": user.Role,
	})
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) UpdatePreferences(ctx context.Context, actorID, id string, update *models.UserPreferencesUpdate) (*models.User, error) {
	if actorID != id {
		return nil, apperrors.NewForbidden("you can only edit your own profile")
	}
	if update.DonationTypeFilter != nil && !update.DonationTypeFilter.IsValid() {
		return nil, apperrors.NewValidation("donation type filter must be ALL, FOOD or CLOTHES")
	}
	if update.SearchRadius != nil && (*update.SearchRadius <= 0 || *update.SearchRadius > utils.MaxSearchRadius) {
		return nil, apperrors.NewValidation("search radius must be between 0 and 500 km")
	}

	fields := update.Fields()
	if len(fields) == 0 {
		return nil, apperrors.NewValidation("no editable fields supplied")
	}

	user, err := s.userRepo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.logger.LogUserAction(id, "preferences_updated", map[string]interface{}{"fields": len(fields)})
	return user, nil
}

func (s *userService) Actor(ctx context.Context, userID string) (lifecycle.Actor, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return lifecycle.Actor{}, err
	}
	return lifecycle.Actor{ID: user.ID, Name: user.Name, Role: user.Role}, nil
}
