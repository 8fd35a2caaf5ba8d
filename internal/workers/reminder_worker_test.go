package workers

import (
	"context"
	"testing"
	"time"

	"donationhub/internal/lifecycle"
	"donationhub/internal/models"
	"donationhub/internal/repositories/memory"
	"donationhub/internal/services"
	"donationhub/internal/utils"
	"donationhub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo interface {
	Create(context.Context, *models.Posting) error
}, id string, status models.PostingStatus, updated time.Time) {
	t.Helper()
	p, err := lifecycle.NewPosting(id, &models.CreatePostingRequest{
		DonationType: models.DonationTypeClothes,
		Name:         "Coats " + id,
		Quantity:     "4",
		ImageURL:     "https://img.example.org/coats.jpg",
	}, lifecycle.Actor{ID: "donor-1", Name: "Dana", Role: models.RoleDonor}, true, updated)
	require.NoError(t, err)
	p.Status = status
	p.UpdatedAt = updated
	require.NoError(t, repo.Create(context.Background(), p))
}

func TestReminderWorker_RunOnce(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	postings := memory.NewPostingRepository()
	notifications := services.NewNotificationService(memory.NewNotificationRepository(), logger.NewNop())

	seed(t, postings, "stale-pickup", models.PostingStatusPickupVerificationPending, now.Add(-2*time.Hour))
	seed(t, postings, "stale-delivery", models.PostingStatusDeliveryVerificationPending, now.Add(-45*time.Minute))
	seed(t, postings, "fresh", models.PostingStatusPickupVerificationPending, now.Add(-5*time.Minute))
	seed(t, postings, "moving", models.PostingStatusInTransit, now.Add(-3*time.Hour))

	w := NewReminderWorker(postings, notifications, 30*time.Minute, logger.NewNop())
	w.now = func() time.Time { return now }

	sent, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	sent, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent, "reminders are not repeated for the same state")

	items, _, err := notifications.List(context.Background(), "donor-1", true, &utils.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, n := range items {
		assert.Equal(t, models.NotificationTypeVerificationPending, n.Type)
	}
}

func TestReminderWorker_StartRejectsBadSchedule(t *testing.T) {
	w := NewReminderWorker(memory.NewPostingRepository(), nil, time.Minute, logger.NewNop())
	_, err := w.Start(context.Background(), "not a schedule")
	assert.Error(t, err)
}
