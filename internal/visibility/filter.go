package visibility

import (
	"fmt"
	"sort"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"
	"donationhub/internal/utils"
)

type Tab string

const (
	TabActive        Tab = "active"
	TabHistory       Tab = "history"
	TabOpportunities Tab = "opportunities"
	TabMyTasks       Tab = "mytasks"
	TabBrowse        Tab = "browse"
	TabMyRequests    Tab = "myrequests"
)

var roleTabs = map[models.Role][]Tab{
	models.RoleDonor:     {TabActive, TabHistory},
	models.RoleVolunteer: {TabOpportunities, TabMyTasks, TabHistory},
	models.RoleRequester: {TabBrowse, TabMyRequests},
}

// Viewer is everything the filter needs to know about who is looking.
type Viewer struct {
	ID           string
	Role         models.Role
	Location     *models.Coordinate
	SearchRadius float64
	TypeFilter   models.DonationTypeFilter
}

// ViewerFor builds a viewer from a stored user. An explicit location, such as the
// device's current position, takes precedence over the saved address.
func ViewerFor(u *models.User, current *models.Coordinate) Viewer {
	v := Viewer{
		ID:           u.ID,
		Role:         u.Role,
		Location:     current,
		SearchRadius: u.SearchRadius,
		TypeFilter:   u.DonationTypeFilter,
	}
	if v.Location == nil && u.Address != nil {
		if c, ok := u.Address.Coordinate(); ok {
			v.Location = &c
		}
	}
	return v
}

func TabsFor(role models.Role) []Tab {
	return roleTabs[role]
}

// DefaultTab is the first tab shown to a role.
func DefaultTab(role models.Role) Tab {
	tabs := roleTabs[role]
	if len(tabs) == 0 {
		return ""
	}
	return tabs[0]
}

// Filter returns the postings the viewer should see on a tab, newest first.
// The input slice is not modified.
func Filter(postings []*models.Posting, viewer Viewer, tab Tab) ([]*models.Posting, error) {
	keep, err := predicate(viewer, tab)
	if err != nil {
		return nil, err
	}

	result := make([]*models.Posting, 0, len(postings))
	for _, p := range postings {
		if keep(p) {
			result = append(result, p)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func predicate(v Viewer, tab Tab) (func(*models.Posting) bool, error) {
	switch v.Role {
	case models.RoleDonor:
		switch tab {
		case TabActive:
			return func(p *models.Posting) bool {
				return p.DonorID == v.ID && p.Status != models.PostingStatusDelivered
			}, nil
		case TabHistory:
			return func(p *models.Posting) bool {
				return p.DonorID == v.ID && p.Status == models.PostingStatusDelivered
			}, nil
		}

	case models.RoleVolunteer:
		switch tab {
		case TabOpportunities:
			return func(p *models.Posting) bool {
				open := p.Status == models.PostingStatusAvailable ||
					(p.Status == models.PostingStatusRequested && p.VolunteerID == "")
				return open && v.TypeFilter.Matches(p.DonationType) && withinRadius(v, p)
			}, nil
		case TabMyTasks:
			return func(p *models.Posting) bool {
				return p.VolunteerID == v.ID && p.Status != models.PostingStatusDelivered
			}, nil
		case TabHistory:
			return func(p *models.Posting) bool {
				return p.VolunteerID == v.ID && p.Status == models.PostingStatusDelivered
			}, nil
		}

	case models.RoleRequester:
		switch tab {
		case TabBrowse:
			return func(p *models.Posting) bool {
				return p.Status == models.PostingStatusAvailable &&
					v.TypeFilter.Matches(p.DonationType) && withinRadius(v, p)
			}, nil
		case TabMyRequests:
			return func(p *models.Posting) bool {
				return p.OrphanageID == v.ID
			}, nil
		}

	default:
		return nil, apperrors.NewValidation(fmt.Sprintf("unknown role %q", v.Role))
	}

	return nil, apperrors.NewValidation(fmt.Sprintf("tab %q is not available for role %s", tab, v.Role))
}

// withinRadius passes postings with no pickup coordinates, and everything when the
// viewer's own position is unknown.
func withinRadius(v Viewer, p *models.Posting) bool {
	if v.Location == nil {
		return true
	}
	pickup, ok := p.Location.Coordinate()
	if !ok {
		return true
	}
	radius := v.SearchRadius
	if radius <= 0 {
		radius = utils.DefaultSearchRadius
	}
	return utils.IsWithinRadius(v.Location.Lat, v.Location.Lng, pickup.Lat, pickup.Lng, radius)
}
