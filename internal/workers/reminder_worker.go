package workers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"donationhub/internal/models"
	"donationhub/internal/repositories/interfaces"
	"donationhub/internal/services"
	"donationhub/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ReminderWorker nudges donors whose postings have waited too long for evidence review.
type ReminderWorker struct {
	postingRepo         interfaces.PostingRepository
	notificationService services.NotificationService
	threshold           time.Duration
	logger              *logger.Logger
	now                 func() time.Time
	running             atomic.Bool
}

func NewReminderWorker(
	postingRepo interfaces.PostingRepository,
	notificationService services.NotificationService,
	threshold time.Duration,
	logger *logger.Logger,
) *ReminderWorker {
	return &ReminderWorker{
		postingRepo:         postingRepo,
		notificationService: notificationService,
		threshold:           threshold,
		logger:              logger,
		now:                 func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules RunOnce on spec (cron syntax or "@every 15m") and stops the
// scheduler when ctx is cancelled.
func (w *ReminderWorker) Start(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		// Skip a tick while the previous run is still going.
		if !w.running.CompareAndSwap(false, true) {
			return
		}
		defer w.running.Store(false)

		sent, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.WithError(err).Error("Verification reminder run failed")
			return
		}
		if sent > 0 {
			w.logger.WithField("sent", sent).Info("Verification reminders sent")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}

	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()

	return c, nil
}

// RunOnce sends at most one reminder per posting for each time it entered a
// verification-pending state, and returns how many were written.
func (w *ReminderWorker) RunOnce(ctx context.Context) (int, error) {
	cutoff := w.now().Add(-w.threshold)

	postings, err := w.postingRepo.List(ctx, interfaces.PostingFilter{
		Statuses: []models.PostingStatus{
			models.PostingStatusPickupVerificationPending,
			models.PostingStatusDeliveryVerificationPending,
		},
		UpdatedBefore: &cutoff,
	})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, p := range postings {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		stage := "pickup"
		if p.Status == models.PostingStatusDeliveryVerificationPending {
			stage = "delivery"
		}
		message := fmt.Sprintf("%q has %s evidence waiting for your review", p.Name, stage)

		ok, err := w.notificationService.RemindOnce(ctx, p.DonorID, p.ID, models.NotificationTypeVerificationPending, message, p.UpdatedAt)
		if err != nil {
			w.logger.WithPostingID(p.ID).WithError(err).Warn("Failed to send verification reminder")
			continue
		}
		if ok {
			sent++
		}
	}

	return sent, nil
}
