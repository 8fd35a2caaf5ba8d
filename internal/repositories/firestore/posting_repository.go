package firestore

import (
	"context"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

type postingRepository struct {
	client     *firestore.Client
	collection *firestore.CollectionRef
	timeout    time.Duration
}

func NewPostingRepository(client *firestore.Client, timeout time.Duration) interfaces.PostingRepository {
	return &postingRepository{
		client:     client,
		collection: client.Collection("postings"),
		timeout:    timeout,
	}
}

func (r *postingRepository) Create(ctx context.Context, posting *models.Posting) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.Doc(posting.ID).Create(ctx, posting)
	if err != nil && statusAlreadyExists(err) {
		return apperrors.NewDuplicateAction("posting " + posting.ID + " already exists")
	}
	return storeError("create posting", err)
}

func (r *postingRepository) GetByID(ctx context.Context, id string) (*models.Posting, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	snap, err := r.collection.Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("posting", id)
		}
		return nil, storeError("get posting", err)
	}

	return decodePosting(snap)
}

func (r *postingRepository) List(ctx context.Context, filter interfaces.PostingFilter) ([]*models.Posting, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	q := r.collection.Query
	if filter.DonorID != "" {
		q = q.Where("donorId", "==", filter.DonorID)
	}
	if filter.VolunteerID != "" {
		q = q.Where("volunteerId", "==", filter.VolunteerID)
	}
	if filter.OrphanageID != "" {
		q = q.Where("orphanageId", "==", filter.OrphanageID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("status", "in", statuses)
	}
	if filter.UpdatedBefore != nil {
		q = q.Where("updatedAt", "<", *filter.UpdatedBefore)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	postings := make([]*models.Posting, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError("list postings", err)
		}
		p, err := decodePosting(snap)
		if err != nil {
			return nil, err
		}
		postings = append(postings, p)
	}

	sortNewestFirst(postings)
	return postings, nil
}

func (r *postingRepository) Upsert(ctx context.Context, posting *models.Posting) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.Doc(posting.ID).Set(ctx, posting)
	return storeError("upsert posting", err)
}

func (r *postingRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*models.Posting, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	ref := r.collection.Doc(id)
	if _, err := ref.Update(ctx, updates(fields, time.Now().UTC())); err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("posting", id)
		}
		return nil, storeError("update posting", err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, storeError("get posting", err)
	}
	return decodePosting(snap)
}

func (r *postingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if isNotFound(err) {
			return apperrors.NewNotFound("posting", id)
		}
		return storeError("delete posting", err)
	}
	return nil
}

// CommitTransition re-reads the posting inside a transaction and writes only when the
// stored status still equals tr.From.
func (r *postingRepository) CommitTransition(ctx context.Context, id string, tr *lifecycle.Transition) (*models.Posting, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	ref := r.collection.Doc(id)
	var committed *models.Posting

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return apperrors.NewNotFound("posting", id)
			}
			return err
		}
		current, err := decodePosting(snap)
		if err != nil {
			return err
		}
		if current.Status != tr.From {
			return apperrors.NewStaleWrite(id)
		}

		if tr.Delete {
			return tx.Delete(ref)
		}

		next := *tr.Posting
		next.InterestedVolunteers = mergeInterest(tr.Posting.InterestedVolunteers, current.InterestedVolunteers)
		next.Ratings = current.Ratings
		committed = &next
		return tx.Set(ref, &next)
	})
	if err != nil {
		return nil, storeError("commit transition", err)
	}

	return committed, nil
}

func (r *postingRepository) AppendRating(ctx context.Context, id string, rating *models.Rating) (*models.Posting, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	ref := r.collection.Doc(id)
	var committed *models.Posting

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return apperrors.NewNotFound("posting", id)
			}
			return err
		}
		current, err := decodePosting(snap)
		if err != nil {
			return err
		}
		if current.Status != models.PostingStatusDelivered {
			return apperrors.NewInvalidTransition(string(current.Status), string(current.Status),
				"Ratings can only be submitted after the donation has been delivered")
		}
		if current.HasRatingFrom(rating.RaterID) {
			return apperrors.NewDuplicateAction("You have already rated this donation")
		}

		current.Ratings = append(current.Ratings, *rating)
		current.UpdatedAt = rating.CreatedAt
		committed = current
		return tx.Update(ref, []firestore.Update{
			{Path: "ratings", Value: firestore.ArrayUnion(*rating)},
			{Path: "updatedAt", Value: rating.CreatedAt},
		})
	})
	if err != nil {
		return nil, storeError("append rating", err)
	}

	return committed, nil
}

func decodePosting(snap *firestore.DocumentSnapshot) (*models.Posting, error) {
	var p models.Posting
	if err := snap.DataTo(&p); err != nil {
		return nil, storeError("decode posting", err)
	}
	p.ID = snap.Ref.ID
	return &p, nil
}

func mergeInterest(next, current []string) []string {
	seen := make(map[string]bool, len(next))
	out := make([]string, 0, len(next)+len(current))
	for _, v := range append(append([]string{}, next...), current...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
