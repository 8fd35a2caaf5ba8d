package reconciler

import (
	"context"
	"time"

	"donationhub/internal/models"
	"donationhub/internal/utils"
	"donationhub/pkg/logger"
)

// LocationSender pushes a volunteer position to the server.
type LocationSender interface {
	SendLocation(ctx context.Context, c models.Coordinate) (*models.LocationUpdateResult, error)
}

// LocationTracker rate-limits a stream of device positions. A position is sent when
// it is the first one, or when both the minimum interval has passed and the device
// moved at least the minimum distance since the last sent position.
type LocationTracker struct {
	sender      LocationSender
	minInterval time.Duration
	minDistance float64 // meters
	logger      *logger.Logger
	now         func() time.Time

	lastSent *models.Coordinate
	lastAt   time.Time
}

func NewLocationTracker(sender LocationSender, minInterval time.Duration, minDistanceMeters float64, logger *logger.Logger) *LocationTracker {
	if minInterval <= 0 {
		minInterval = utils.DefaultLocationUpdateInterval
	}
	if minDistanceMeters < 0 {
		minDistanceMeters = utils.DefaultLocationMinDistanceM
	}
	return &LocationTracker{
		sender:      sender,
		minInterval: minInterval,
		minDistance: minDistanceMeters,
		logger:      logger,
		now:         time.Now,
	}
}

func (t *LocationTracker) due(c models.Coordinate) bool {
	if t.lastSent == nil {
		return true
	}
	if t.now().Sub(t.lastAt) < t.minInterval {
		return false
	}
	meters := utils.CalculateDistance(t.lastSent.Lat, t.lastSent.Lng, c.Lat, c.Lng) * 1000
	return meters >= t.minDistance
}

// Offer sends c if the throttle allows it and reports whether it was sent.
func (t *LocationTracker) Offer(ctx context.Context, c models.Coordinate) (bool, error) {
	if !t.due(c) {
		return false, nil
	}

	result, err := t.sender.SendLocation(ctx, c)
	if err != nil {
		return false, err
	}
	if result != nil && result.Throttled {
		// The server throttle wins; try again with a later position.
		return false, nil
	}

	t.lastSent = &c
	t.lastAt = t.now()
	return true, nil
}

// Run consumes positions until the channel closes or ctx is cancelled.
func (t *LocationTracker) Run(ctx context.Context, positions <-chan models.Coordinate) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-positions:
			if !ok {
				return nil
			}
			if _, err := t.Offer(ctx, c); err != nil {
				t.logger.WithError(err).Warn("Location update failed")
			}
		}
	}
}
