// Package memory holds process-local repositories used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"
)

type postingRepository struct {
	mu       sync.RWMutex
	postings map[string]*models.Posting
}

func NewPostingRepository() interfaces.PostingRepository {
	return &postingRepository{postings: make(map[string]*models.Posting)}
}

func (r *postingRepository) Create(ctx context.Context, posting *models.Posting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.postings[posting.ID]; exists {
		return apperrors.NewDuplicateAction("posting " + posting.ID + " already exists")
	}
	r.postings[posting.ID] = copyPosting(posting)
	return nil
}

func (r *postingRepository) GetByID(ctx context.Context, id string) (*models.Posting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.postings[id]
	if !ok {
		return nil, apperrors.NewNotFound("posting", id)
	}
	return copyPosting(p), nil
}

func (r *postingRepository) List(ctx context.Context, filter interfaces.PostingFilter) ([]*models.Posting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Posting, 0, len(r.postings))
	for _, p := range r.postings {
		if matches(p, filter) {
			result = append(result, copyPosting(p))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *postingRepository) Upsert(ctx context.Context, posting *models.Posting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.postings[posting.ID] = copyPosting(posting)
	return nil
}

// UpdateFields accepts the content fields exposed by PostingContentUpdate.
func (r *postingRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*models.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.postings[id]
	if !ok {
		return nil, apperrors.NewNotFound("posting", id)
	}

	next := copyPosting(p)
	for k, v := range fields {
		switch k {
		case "name":
			next.Name, _ = v.(string)
		case "description":
			next.Description, _ = v.(string)
		case "quantity":
			next.Quantity, _ = v.(string)
		case "unit":
			next.Unit, _ = v.(string)
		case "expiry_date":
			if t, ok := v.(time.Time); ok {
				next.ExpiryDate = &t
			}
		case "donation_type":
			if t, ok := v.(models.DonationType); ok {
				next.DonationType = t
			}
		case "image_url":
			next.ImageURL, _ = v.(string)
		case "tags":
			next.Tags, _ = v.([]string)
		case "location":
			if a, ok := v.(models.Address); ok {
				next.Location = a
			}
		case "safety_check":
			switch sc := v.(type) {
			case models.SafetyCheck:
				next.SafetyCheck = &sc
			case *models.SafetyCheck:
				next.SafetyCheck = sc
			}
		case "volunteer_location":
			if c, ok := v.(models.Coordinate); ok {
				next.VolunteerLocation = &c
			}
		default:
			return nil, apperrors.NewValidation("field " + k + " cannot be updated")
		}
	}
	next.UpdatedAt = time.Now().UTC()

	r.postings[id] = next
	return copyPosting(next), nil
}

func (r *postingRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.postings[id]; !ok {
		return apperrors.NewNotFound("posting", id)
	}
	delete(r.postings, id)
	return nil
}

func (r *postingRepository) CommitTransition(ctx context.Context, id string, tr *lifecycle.Transition) (*models.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.postings[id]
	if !ok {
		return nil, apperrors.NewNotFound("posting", id)
	}
	if current.Status != tr.From {
		return nil, apperrors.NewStaleWrite(id)
	}

	if tr.Delete {
		delete(r.postings, id)
		return nil, nil
	}

	next := copyPosting(tr.Posting)
	// Interest merges as a set union, matching $addToSet in the document stores.
	for _, v := range current.InterestedVolunteers {
		if !next.IsInterested(v) {
			next.InterestedVolunteers = append(next.InterestedVolunteers, v)
		}
	}
	next.Ratings = make([]models.Rating, len(current.Ratings))
	copy(next.Ratings, current.Ratings)

	r.postings[id] = next
	return copyPosting(next), nil
}

func (r *postingRepository) AppendRating(ctx context.Context, id string, rating *models.Rating) (*models.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.postings[id]
	if !ok {
		return nil, apperrors.NewNotFound("posting", id)
	}
	if current.Status != models.PostingStatusDelivered {
		return nil, apperrors.NewInvalidTransition(string(current.Status), string(current.Status),
			"Ratings can only be submitted after the donation has been delivered")
	}
	if current.HasRatingFrom(rating.RaterID) {
		return nil, apperrors.NewDuplicateAction("You have already rated this donation")
	}

	next := copyPosting(current)
	next.Ratings = append(next.Ratings, *rating)
	next.UpdatedAt = rating.CreatedAt
	r.postings[id] = next
	return copyPosting(next), nil
}

func matches(p *models.Posting, f interfaces.PostingFilter) bool {
	if f.DonorID != "" && p.DonorID != f.DonorID {
		return false
	}
	if f.VolunteerID != "" && p.VolunteerID != f.VolunteerID {
		return false
	}
	if f.OrphanageID != "" && p.OrphanageID != f.OrphanageID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if p.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.UpdatedBefore != nil && !p.UpdatedAt.Before(*f.UpdatedBefore) {
		return false
	}
	return true
}

func copyPosting(p *models.Posting) *models.Posting {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Tags = copyStrings(p.Tags)
	cp.InterestedVolunteers = copyStrings(p.InterestedVolunteers)
	cp.Ratings = make([]models.Rating, len(p.Ratings))
	copy(cp.Ratings, p.Ratings)
	if p.RequesterAddress != nil {
		a := *p.RequesterAddress
		cp.RequesterAddress = &a
	}
	if p.VolunteerLocation != nil {
		c := *p.VolunteerLocation
		cp.VolunteerLocation = &c
	}
	if p.SafetyCheck != nil {
		sc := *p.SafetyCheck
		cp.SafetyCheck = &sc
	}
	if p.ExpiryDate != nil {
		t := *p.ExpiryDate
		cp.ExpiryDate = &t
	}
	return &cp
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
