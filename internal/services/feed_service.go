package services

import (
	"context"

	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"
	"donationhub/internal/visibility"
)

// FeedService answers "what should this user see on this tab".
type FeedService interface {
	// Feed uses the role's default tab when tab is empty. current overrides the
	// viewer's saved address for radius filtering.
	Feed(ctx context.Context, userID string, tab visibility.Tab, current *models.Coordinate) (*models.Feed, error)
}

type feedService struct {
	postingRepo interfaces.PostingRepository
	userRepo    interfaces.UserRepository
}

func NewFeedService(postingRepo interfaces.PostingRepository, userRepo interfaces.UserRepository) FeedService {
	return &feedService{
		postingRepo: postingRepo,
		userRepo:    userRepo,
	}
}

func (s *feedService) Feed(ctx context.Context, userID string, tab visibility.Tab, current *models.Coordinate) (*models.Feed, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if tab == "" {
		tab = visibility.DefaultTab(user.Role)
	}
	viewer := visibility.ViewerFor(user, current)

	// The store query only narrows; the filter decides.
	candidates, err := s.postingRepo.List(ctx, storeFilter(viewer, tab))
	if err != nil {
		return nil, err
	}

	postings, err := visibility.Filter(candidates, viewer, tab)
	if err != nil {
		return nil, err
	}

	tabs := visibility.TabsFor(user.Role)
	names := make([]string, len(tabs))
	for i, t := range tabs {
		names[i] = string(t)
	}

	return &models.Feed{
		Tab:      string(tab),
		Tabs:     names,
		Postings: postings,
	}, nil
}

func storeFilter(v visibility.Viewer, tab visibility.Tab) interfaces.PostingFilter {
	switch v.Role {
	case models.RoleDonor:
		return interfaces.PostingFilter{DonorID: v.ID}
	case models.RoleVolunteer:
		if tab == visibility.TabOpportunities {
			return interfaces.PostingFilter{Statuses: []models.PostingStatus{
				models.PostingStatusAvailable, models.PostingStatusRequested,
			}}
		}
		return interfaces.PostingFilter{VolunteerID: v.ID}
	case models.RoleRequester:
		if tab == visibility.TabBrowse {
			return interfaces.PostingFilter{Statuses: []models.PostingStatus{models.PostingStatusAvailable}}
		}
		return interfaces.PostingFilter{OrphanageID: v.ID}
	}
	return interfaces.PostingFilter{}
}
