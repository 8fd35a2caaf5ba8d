package services

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
	"donationhub/internal/repositories/memory"
	"donationhub/internal/utils"
	"donationhub/pkg/logger"
	"donationhub/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	donor     = lifecycle.Actor{ID: "donor-1", Name: "Dana", Role: models.RoleDonor}
	requester = lifecycle.Actor{ID: "home-1", Name: "Sunrise Home", Role: models.RoleRequester}
	rival     = lifecycle.Actor{ID: "home-2", Name: "Hope House", Role: models.RoleRequester}
	volunteer = lifecycle.Actor{ID: "vol-1", Name: "Vik", Role: models.RoleVolunteer}
	other     = lifecycle.Actor{ID: "vol-2", Name: "Ola", Role: models.RoleVolunteer}
)

type harness struct {
	postings      interfaces.PostingRepository
	users         interfaces.UserRepository
	notifications interfaces.NotificationRepository
	messages      interfaces.MessageRepository
	provider      *payment.SimulatedProvider

	fees     FeeService
	notifier NotificationService
	posts    PostingService
	ratings  RatingService
	feed     FeedService
	chat     MessageService
	location LocationService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logger.NewNop()

	h := &harness{
		postings:      memory.NewPostingRepository(),
		users:         memory.NewUserRepository(),
		notifications: memory.NewNotificationRepository(),
		messages:      memory.NewMessageRepository(),
		provider:      payment.NewSimulatedProvider(),
	}
	h.fees = NewFeeService(h.provider, 10, "INR", log)
	h.notifier = NewNotificationService(h.notifications, log)
	h.posts = NewPostingService(h.postings, h.fees, NewEvidenceService(nil, log), NewGeocodingService(nil, log), h.notifier, log)
	h.ratings = NewRatingService(h.postings, h.users, h.notifier, RetryPolicy{MaxAttempts: 2, InitialDelay: time.Millisecond}, log)
	h.feed = NewFeedService(h.postings, h.users)
	h.chat = NewMessageService(h.messages, h.postings, h.notifier, log)
	h.location = NewLocationService(h.postings, nil, 0, log)

	for _, a := range []lifecycle.Actor{donor, requester, rival, volunteer, other} {
		require.NoError(t, h.users.Create(context.Background(), models.NewUser(a.ID, a.Name, "", a.Role, time.Now())))
	}
	return h
}

func (h *harness) paidPosting(t *testing.T) *models.Posting {
	t.Helper()
	ctx := context.Background()

	receipt, err := h.fees.Charge(ctx, donor, &models.PlatformFeeRequest{PaymentMethodID: "pm_card_visa"})
	require.NoError(t, err)

	p, err := h.posts.CreatePosting(ctx, donor, &models.CreatePostingRequest{
		DonationType: models.DonationTypeFood,
		Name:         "Rice",
		Quantity:     "20",
		ImageURL:     "https://img.example.org/rice.jpg",
		FeeReference: receipt.Reference,
	})
	require.NoError(t, err)
	return p
}

func (h *harness) unread(t *testing.T, userID string) []*models.Notification {
	t.Helper()
	items, _, err := h.notifier.List(context.Background(), userID, true, &utils.PaginationParams{Page: 1, PageSize: 50})
	require.NoError(t, err)
	return items
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}

func TestHandoffHappyPath(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.paidPosting(t)

	assert.Equal(t, models.PostingStatusAvailable, p.Status)
	assert.Equal(t, "kg", p.Unit)

	p, err := h.posts.Transition(ctx, requester, p.ID, lifecycle.ClaimPosting{})
	require.NoError(t, err)
	assert.Equal(t, models.PostingStatusRequested, p.Status)
	assert.Equal(t, requester.ID, p.OrphanageID)

	p, err = h.posts.Transition(ctx, volunteer, p.ID, lifecycle.ExpressInterest{})
	require.NoError(t, err)
	assert.Equal(t, []string{volunteer.ID}, p.InterestedVolunteers)

	p, err = h.posts.Transition(ctx, volunteer, p.ID, lifecycle.UploadPickupEvidence{ImageURL: "https://img.example.org/pickup.jpg"})
	require.NoError(t, err)
	assert.Equal(t, models.PostingStatusPickupVerificationPending, p.Status)

	p, err = h.posts.Transition(ctx, donor, p.ID, lifecycle.ApprovePickup{})
	require.NoError(t, err)
	assert.Equal(t, models.PostingStatusInTransit, p.Status)

	loc, err := h.location.UpdateLocation(ctx, volunteer, models.Coordinate{Lat: 12.97, Lng: 77.59})
	require.NoError(t, err)
	assert.Equal(t, 1, loc.Updated)

	p, err = h.posts.Transition(ctx, requester, p.ID, lifecycle.UploadDeliveryEvidence{ImageURL: "https://img.example.org/drop.jpg"})
	require.NoError(t, err)
	assert.Equal(t, models.PostingStatusDeliveryVerificationPending, p.Status)
	require.NotNil(t, p.VolunteerLocation)
	assert.Equal(t, 12.97, p.VolunteerLocation.Lat)

	p, err = h.posts.Transition(ctx, donor, p.ID, lifecycle.ApproveDelivery{})
	require.NoError(t, err)
	assert.Equal(t, models.PostingStatusDelivered, p.Status)

	result, err := h.ratings.SubmitRating(ctx, donor, p.ID, &models.RatingRequest{TargetID: volunteer.ID, Rating: 4})
	require.NoError(t, err)
	assert.True(t, result.UserStatsUpdated)
	require.NotNil(t, result.Target)
	assert.Equal(t, 1, result.Target.RatingsCount)
	assert.InDelta(t, 4.0, result.Target.AverageRating, 0.001)

	_, err = h.ratings.SubmitRating(ctx, donor, p.ID, &models.RatingRequest{TargetID: requester.ID, Rating: 5})
	requireCode(t, err, apperrors.CodeDuplicateAction)

	donorTypes := map[models.NotificationType]bool{}
	for _, n := range h.unread(t, donor.ID) {
		donorTypes[n.Type] = true
	}
	assert.True(t, donorTypes[models.NotificationTypePostingClaimed])
	assert.True(t, donorTypes[models.NotificationTypePickupEvidence])
	assert.True(t, donorTypes[models.NotificationTypeDeliveryEvidence])

	volunteerTypes := map[models.NotificationType]bool{}
	for _, n := range h.unread(t, volunteer.ID) {
		volunteerTypes[n.Type] = true
	}
	assert.True(t, volunteerTypes[models.NotificationTypePickupApproved])
	assert.True(t, volunteerTypes[models.NotificationTypeDeliveryApproved])
	assert.True(t, volunteerTypes[models.NotificationTypeRatingReceived])
}

func TestCreatePosting_FeeGate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	req := &models.CreatePostingRequest{
		DonationType: models.DonationTypeClothes,
		Name:         "Jackets",
		Quantity:     "5",
		ImageURL:     "https://img.example.org/jackets.jpg",
	}

	_, err := h.posts.CreatePosting(ctx, donor, req)
	requireCode(t, err, apperrors.CodePaymentRequired)

	_, err = h.fees.Charge(ctx, donor, &models.PlatformFeeRequest{PaymentMethodID: payment.DeclinedPaymentMethod})
	requireCode(t, err, apperrors.CodePaymentRequired)

	receipt, err := h.fees.Charge(ctx, donor, &models.PlatformFeeRequest{PaymentMethodID: "pm_card_visa"})
	require.NoError(t, err)

	otherDonor := lifecycle.Actor{ID: "donor-2", Name: "Eve", Role: models.RoleDonor}
	req.FeeReference = receipt.Reference
	_, err = h.posts.CreatePosting(ctx, otherDonor, req)
	requireCode(t, err, apperrors.CodePaymentRequired)

	req.ImageURL = ""
	_, err = h.posts.CreatePosting(ctx, donor, req)
	requireCode(t, err, apperrors.CodeValidation)

	_, err = h.posts.CreatePosting(ctx, volunteer, req)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestTransition_ConcurrentClaimsOneWins(t *testing.T) {
	h := newHarness(t)
	p := h.paidPosting(t)

	claimants := []lifecycle.Actor{requester, rival}
	errs := make([]error, len(claimants))
	var wg sync.WaitGroup
	for i, a := range claimants {
		wg.Add(1)
		go func(i int, a lifecycle.Actor) {
			defer wg.Done()
			_, errs[i] = h.posts.Transition(context.Background(), a, p.ID, lifecycle.ClaimPosting{})
		}(i, a)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, apperrors.ErrStaleWrite) || errors.Is(err, apperrors.ErrInvalidTransition), err)
	}
	assert.Equal(t, 1, wins)

	stored, err := h.posts.GetPosting(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostingStatusRequested, stored.Status)
}

// laggingRepo serves one outdated read, as a replica would after a competing write.
type laggingRepo struct {
	interfaces.PostingRepository
	mu    sync.Mutex
	stale *models.Posting
}

func (r *laggingRepo) GetByID(ctx context.Context, id string) (*models.Posting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stale != nil {
		p := r.stale
		r.stale = nil
		return p, nil
	}
	return r.PostingRepository.GetByID(ctx, id)
}

func TestTransition_StaleWriteCarriesReason(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.paidPosting(t)

	_, err := h.posts.Transition(ctx, requester, p.ID, lifecycle.ClaimPosting{})
	require.NoError(t, err)

	lagging := &laggingRepo{PostingRepository: h.postings, stale: p}
	svc := NewPostingService(lagging, h.fees, NewEvidenceService(nil, logger.NewNop()), nil, nil, logger.NewNop())

	_, err = svc.Transition(ctx, rival, p.ID, lifecycle.ClaimPosting{})
	appErr := requireCode(t, err, apperrors.CodeStaleWrite)
	assert.Equal(t, "This item has already been requested by another organization", appErr.Message)
	assert.Equal(t, string(models.PostingStatusRequested), appErr.From)
}

func TestTransition_Rejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.paidPosting(t)

	_, err := h.posts.Transition(ctx, volunteer, p.ID, lifecycle.ClaimPosting{})
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = h.posts.Transition(ctx, volunteer, p.ID, lifecycle.UploadPickupEvidence{ImageURL: "https://img.example.org/x.jpg"})
	requireCode(t, err, apperrors.CodeInvalidTransition)

	_, err = h.posts.Transition(ctx, volunteer, p.ID, lifecycle.ExpressInterest{})
	require.NoError(t, err)
	_, err = h.posts.Transition(ctx, volunteer, p.ID, lifecycle.ExpressInterest{})
	requireCode(t, err, apperrors.CodeDuplicateAction)

	_, err = h.posts.Transition(ctx, donor, "missing", lifecycle.Cancel{})
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestTransition_CancelDeletesAndNotifies(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.paidPosting(t)

	_, err := h.posts.Transition(ctx, requester, p.ID, lifecycle.ClaimPosting{})
	require.NoError(t, err)
	_, err = h.posts.Transition(ctx, volunteer, p.ID, lifecycle.ExpressInterest{})
	require.NoError(t, err)

	_, err = h.posts.Transition(ctx, requester, p.ID, lifecycle.Cancel{})
	requireCode(t, err, apperrors.CodeForbidden)

	cancelled, err := h.posts.Transition(ctx, donor, p.ID, lifecycle.Cancel{})
	require.NoError(t, err)
	assert.Nil(t, cancelled)

	_, err = h.posts.GetPosting(ctx, p.ID)
	requireCode(t, err, apperrors.CodeNotFound)

	for _, id := range []string{requester.ID, volunteer.ID} {
		items := h.unread(t, id)
		require.NotEmpty(t, items)
		assert.Equal(t, models.NotificationTypePostingCancelled, items[0].Type)
	}
	assert.Empty(t, h.unread(t, other.ID))
}

func TestEditContent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.paidPosting(t)

	name := "Basmati rice"
	updated, err := h.posts.UpdatePosting(ctx, donor, p.ID, &models.PostingContentUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, models.PostingStatusAvailable, updated.Status)

	stranger := lifecycle.Actor{ID: "donor-9", Name: "Zed", Role: models.RoleDonor}
	_, err = h.posts.UpdatePosting(ctx, stranger, p.ID, &models.PostingContentUpdate{Name: &name})
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = h.posts.UpdatePosting(ctx, donor, p.ID, &models.PostingContentUpdate{})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = h.posts.Transition(ctx, requester, p.ID, lifecycle.ClaimPosting{})
	require.NoError(t, err)
	_, err = h.posts.Transition(ctx, volunteer, p.ID, lifecycle.UploadPickupEvidence{ImageURL: "https://img.example.org/p.jpg"})
	require.NoError(t, err)

	_, err = h.posts.ReplacePosting(ctx, donor, p.ID, &models.ReplacePostingRequest{
		DonationType: models.DonationTypeFood,
		Name:         "Rice",
		Quantity:     "30",
		ImageURL:     "https://img.example.org/rice.jpg",
	})
	requireCode(t, err, apperrors.CodeInvalidTransition)
}

func TestCheckSafety_DegradedWithoutClassifier(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.paidPosting(t)

	check, err := h.posts.CheckSafety(ctx, donor, p.ID)
	require.NoError(t, err)
	assert.False(t, check.IsSafe)
	assert.True(t, check.Degraded)

	stored, err := h.posts.GetPosting(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SafetyCheck)
	assert.True(t, stored.SafetyCheck.Degraded)

	_, err = h.posts.CheckSafety(ctx, volunteer, p.ID)
	requireCode(t, err, apperrors.CodeForbidden)
}

// flakyUsers fails ApplyRating a fixed number of times before delegating.
type flakyUsers struct {
	interfaces.UserRepository
	failures int
	calls    int
}

func (u *flakyUsers) ApplyRating(ctx context.Context, id string, value int) (*models.User, error) {
	u.calls++
	if u.calls <= u.failures {
		return nil, apperrors.NewStoreUnavailable(errors.New("connection reset"))
	}
	return u.UserRepository.ApplyRating(ctx, id, value)
}

func deliveredPosting(t *testing.T, h *harness) *models.Posting {
	t.Helper()
	ctx := context.Background()
	p := h.paidPosting(t)
	steps := []struct {
		actor lifecycle.Actor
		ev    lifecycle.Event
	}{
		{requester, lifecycle.ClaimPosting{}},
		{volunteer, lifecycle.UploadPickupEvidence{ImageURL: "https://img.example.org/p.jpg"}},
		{donor, lifecycle.ApprovePickup{}},
		{volunteer, lifecycle.UploadDeliveryEvidence{ImageURL: "https://img.example.org/d.jpg"}},
		{donor, lifecycle.ApproveDelivery{}},
	}
	for _, s := range steps {
		var err error
		p, err = h.posts.Transition(ctx, s.actor, p.ID, s.ev)
		require.NoError(t, err, s.ev.Name())
	}
	return p
}

func TestSubmitRating_UserStatsRetry(t *testing.T) {
	tests := []struct {
		name        string
		failures    int
		wantUpdated bool
	}{
		{name: "first attempt", failures: 0, wantUpdated: true},
		{name: "recovers on retry", failures: 1, wantUpdated: true},
		{name: "exhausted retries", failures: 5, wantUpdated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			p := deliveredPosting(t, h)

			users := &flakyUsers{UserRepository: h.users, failures: tt.failures}
			svc := NewRatingService(h.postings, users, nil, RetryPolicy{MaxAttempts: 2, InitialDelay: time.Millisecond}, logger.NewNop())

			result, err := svc.SubmitRating(context.Background(), requester, p.ID, &models.RatingRequest{TargetID: volunteer.ID, Rating: 2})
			require.NoError(t, err)
			assert.Equal(t, tt.wantUpdated, result.UserStatsUpdated)
			require.Len(t, result.Posting.Ratings, 1)

			target, err := h.users.GetByID(context.Background(), volunteer.ID)
			require.NoError(t, err)
			if tt.wantUpdated {
				assert.Equal(t, 1, target.RatingsCount)
				assert.InDelta(t, 2.0, target.AverageRating, 0.001)
			} else {
				assert.Equal(t, 0, target.RatingsCount)
				assert.Equal(t, models.DefaultAverageRating, target.AverageRating)
			}
		})
	}
}

func TestSubmitRating_BeforeDelivery(t *testing.T) {
	h := newHarness(t)
	p := h.paidPosting(t)

	_, err := h.ratings.SubmitRating(context.Background(), donor, p.ID, &models.RatingRequest{TargetID: requester.ID, Rating: 5})
	requireCode(t, err, apperrors.CodeInvalidTransition)
}

func TestFeed_Tabs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	open := h.paidPosting(t)
	done := deliveredPosting(t, h)

	feed, err := h.feed.Feed(ctx, donor.ID, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "active", feed.Tab)
	assert.Equal(t, []string{"active", "history"}, feed.Tabs)
	require.Len(t, feed.Postings, 1)
	assert.Equal(t, open.ID, feed.Postings[0].ID)

	feed, err = h.feed.Feed(ctx, donor.ID, "history", nil)
	require.NoError(t, err)
	require.Len(t, feed.Postings, 1)
	assert.Equal(t, done.ID, feed.Postings[0].ID)

	feed, err = h.feed.Feed(ctx, other.ID, "opportunities", nil)
	require.NoError(t, err)
	require.Len(t, feed.Postings, 1)
	assert.Equal(t, open.ID, feed.Postings[0].ID)

	feed, err = h.feed.Feed(ctx, volunteer.ID, "history", nil)
	require.NoError(t, err)
	require.Len(t, feed.Postings, 1)

	feed, err = h.feed.Feed(ctx, requester.ID, "myrequests", nil)
	require.NoError(t, err)
	require.Len(t, feed.Postings, 1)
	assert.Equal(t, done.ID, feed.Postings[0].ID)

	_, err = h.feed.Feed(ctx, requester.ID, "mytasks", nil)
	requireCode(t, err, apperrors.CodeValidation)
}

func TestMessages_PartiesOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.paidPosting(t)

	_, err := h.posts.Transition(ctx, requester, p.ID, lifecycle.ClaimPosting{})
	require.NoError(t, err)

	_, err = h.chat.Send(ctx, requester, p.ID, "  Can you drop it after 5pm?  ")
	require.NoError(t, err)
	_, err = h.chat.Send(ctx, donor, p.ID, "Sure")
	require.NoError(t, err)

	_, err = h.chat.Send(ctx, other, p.ID, "hello")
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = h.chat.Send(ctx, donor, p.ID, "   ")
	requireCode(t, err, apperrors.CodeValidation)

	msgs, err := h.chat.List(ctx, donor, p.ID, &utils.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Can you drop it after 5pm?", msgs[0].Text)
	assert.Equal(t, "Sure", msgs[1].Text)

	var messageNotices int
	for _, n := range h.unread(t, donor.ID) {
		if n.Type == models.NotificationTypeMessage {
			messageNotices++
		}
	}
	assert.Equal(t, 1, messageNotices)
}

func TestNotifications_RemindOnceAndMarkRead(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	since := time.Now().Add(-time.Hour)

	sent, err := h.notifier.RemindOnce(ctx, donor.ID, "p1", models.NotificationTypeVerificationPending, "Please review", since)
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = h.notifier.RemindOnce(ctx, donor.ID, "p1", models.NotificationTypeVerificationPending, "Please review", since)
	require.NoError(t, err)
	assert.False(t, sent)

	items := h.unread(t, donor.ID)
	require.Len(t, items, 1)

	require.NoError(t, h.notifier.MarkAsRead(ctx, donor.ID, items[0].ID))
	assert.Empty(t, h.unread(t, donor.ID))
}

func TestUserService(t *testing.T) {
	svc := NewUserService(memory.NewUserRepository(), logger.NewNop())
	ctx := context.Background()

	u, err := svc.Register(ctx, "u-1", &models.RegisterUserRequest{Name: " Ana ", Email: "ANA@Example.org", Role: models.RoleVolunteer})
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "ana@example.org", u.Email)
	assert.Equal(t, models.DefaultSearchRadius, u.SearchRadius)

	_, err = svc.Register(ctx, "u-2", &models.RegisterUserRequest{Name: "Bo", Role: "ADMIN"})
	requireCode(t, err, apperrors.CodeValidation)

	radius := 25.0
	filter := models.DonationFilterFood
	updated, err := svc.UpdatePreferences(ctx, "u-1", "u-1", &models.UserPreferencesUpdate{SearchRadius: &radius, DonationTypeFilter: &filter})
	require.NoError(t, err)
	assert.Equal(t, 25.0, updated.SearchRadius)
	assert.Equal(t, models.DonationFilterFood, updated.DonationTypeFilter)

	_, err = svc.UpdatePreferences(ctx, "u-2", "u-1", &models.UserPreferencesUpdate{SearchRadius: &radius})
	requireCode(t, err, apperrors.CodeForbidden)

	actor, err := svc.Actor(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Actor{ID: "u-1", Name: "Ana", Role: models.RoleVolunteer}, actor)
}
