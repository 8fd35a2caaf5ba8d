package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func seedAvailable(t *testing.T, repo interfaces.PostingRepository, id string) *models.Posting {
	t.Helper()
	p, err := lifecycle.NewPosting(id, &models.CreatePostingRequest{
		DonationType: models.DonationTypeFood,
		Name:         "Bread",
		Quantity:     "10",
		ImageURL:     "https://img/bread.jpg",
	}, lifecycle.Actor{ID: "donor-1", Name: "Dana", Role: models.RoleDonor}, true, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestPostingRepository_ConcurrentClaimsOneWins(t *testing.T) {
	repo := NewPostingRepository()
	p := seedAvailable(t, repo, "p1")

	const claimants = 8
	var wg sync.WaitGroup
	results := make(chan error, claimants)

	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := lifecycle.Actor{ID: "req-" + string(rune('a'+i)), Name: "Home", Role: models.RoleRequester}
			tr, err := lifecycle.Apply(p, actor, lifecycle.ClaimPosting{}, now)
			if err != nil {
				results <- err
				return
			}
			_, err = repo.CommitTransition(context.Background(), p.ID, tr)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	wins, stale := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, apperrors.ErrStaleWrite):
			stale++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, claimants-1, stale)

	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostingStatusRequested, stored.Status)
	assert.NotEmpty(t, stored.OrphanageID)
}

func TestPostingRepository_InterestMerges(t *testing.T) {
	repo := NewPostingRepository()
	p := seedAvailable(t, repo, "p1")

	a := lifecycle.Actor{ID: "vol-1", Role: models.RoleVolunteer}
	b := lifecycle.Actor{ID: "vol-2", Role: models.RoleVolunteer}

	// Both read the same snapshot before either commits.
	trA, err := lifecycle.Apply(p, a, lifecycle.ExpressInterest{}, now)
	require.NoError(t, err)
	trB, err := lifecycle.Apply(p, b, lifecycle.ExpressInterest{}, now)
	require.NoError(t, err)

	_, err = repo.CommitTransition(context.Background(), p.ID, trA)
	require.NoError(t, err)
	stored, err := repo.CommitTransition(context.Background(), p.ID, trB)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"vol-1", "vol-2"}, stored.InterestedVolunteers)
}

func TestPostingRepository_CancelAndMissing(t *testing.T) {
	repo := NewPostingRepository()
	p := seedAvailable(t, repo, "p1")

	tr, err := lifecycle.Apply(p, lifecycle.Actor{ID: "donor-1", Role: models.RoleDonor}, lifecycle.Cancel{}, now)
	require.NoError(t, err)

	out, err := repo.CommitTransition(context.Background(), p.ID, tr)
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = repo.GetByID(context.Background(), p.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = repo.CommitTransition(context.Background(), p.ID, tr)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestPostingRepository_AppendRating(t *testing.T) {
	repo := NewPostingRepository()
	p := seedAvailable(t, repo, "p1")

	r := &models.Rating{RaterID: "req-1", TargetID: "vol-1", Rating: 4, CreatedAt: now}

	_, err := repo.AppendRating(context.Background(), p.ID, r)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))

	p.Status = models.PostingStatusDelivered
	p.OrphanageID, p.VolunteerID = "req-1", "vol-1"
	require.NoError(t, repo.Upsert(context.Background(), p))

	stored, err := repo.AppendRating(context.Background(), p.ID, r)
	require.NoError(t, err)
	assert.Len(t, stored.Ratings, 1)

	_, err = repo.AppendRating(context.Background(), p.ID, r)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateAction))
}

func TestPostingRepository_ListFilters(t *testing.T) {
	repo := NewPostingRepository()
	ctx := context.Background()

	older := seedAvailable(t, repo, "p1")
	newer := *older
	newer.ID = "p2"
	newer.CreatedAt = now.Add(time.Hour)
	newer.Status = models.PostingStatusRequested
	newer.OrphanageID = "req-1"
	require.NoError(t, repo.Create(ctx, &newer))

	all, err := repo.List(ctx, interfaces.PostingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p2", all[0].ID)

	requested, err := repo.List(ctx, interfaces.PostingFilter{Statuses: []models.PostingStatus{models.PostingStatusRequested}})
	require.NoError(t, err)
	require.Len(t, requested, 1)
	assert.Equal(t, "req-1", requested[0].OrphanageID)

	mine, err := repo.List(ctx, interfaces.PostingFilter{DonorID: "donor-2"})
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestPostingRepository_UpdateFieldsRejectsLifecycleFields(t *testing.T) {
	repo := NewPostingRepository()
	p := seedAvailable(t, repo, "p1")

	updated, err := repo.UpdateFields(context.Background(), p.ID, map[string]interface{}{"name": "Fresh bread"})
	require.NoError(t, err)
	assert.Equal(t, "Fresh bread", updated.Name)

	_, err = repo.UpdateFields(context.Background(), p.ID, map[string]interface{}{"status": "DELIVERED"})
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestUserRepository_ApplyRating(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, models.NewUser("vol-1", "Vik", "", models.RoleVolunteer, now)))

	u, err := repo.ApplyRating(ctx, "vol-1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, u.AverageRating)
	assert.Equal(t, 1, u.RatingsCount)

	u, err = repo.ApplyRating(ctx, "vol-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 4.5, u.AverageRating)
	assert.Equal(t, 2, u.RatingsCount)
}

func TestNotificationRepository(t *testing.T) {
	repo := NewNotificationRepository()
	ctx := context.Background()

	for i, typ := range []models.NotificationType{models.NotificationTypePostingClaimed, models.NotificationTypePickupEvidence} {
		require.NoError(t, repo.Create(ctx, &models.Notification{
			ID:        string(rune('a' + i)),
			UserID:    "donor-1",
			PostingID: "p1",
			Type:      typ,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, total, err := repo.ListByUser(ctx, "donor-1", false, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "b", list[0].ID)

	require.NoError(t, repo.MarkAsRead(ctx, "a", "donor-1"))
	assert.Error(t, repo.MarkAsRead(ctx, "a", "someone-else"))

	unread, total, err := repo.ListByUser(ctx, "donor-1", true, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "b", unread[0].ID)

	exists, err := repo.ExistsSince(ctx, "donor-1", "p1", models.NotificationTypePickupEvidence, now)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsSince(ctx, "donor-1", "p1", models.NotificationTypePickupEvidence, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, exists)
}
