package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"

	"donationhub/internal/models"
	"donationhub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent      []models.Coordinate
	throttled bool
	err       error
}

func (s *fakeSender) SendLocation(ctx context.Context, c models.Coordinate) (*models.LocationUpdateResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, c)
	return &models.LocationUpdateResult{Throttled: s.throttled}, nil
}

func TestLocationTracker_Offer(t *testing.T) {
	sender := &fakeSender{}
	tr := NewLocationTracker(sender, 10*time.Second, 50, logger.NewNop())
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return clock }

	ctx := context.Background()
	start := models.Coordinate{Lat: 12.9716, Lng: 77.5946}
	// Roughly 111 m north.
	moved := models.Coordinate{Lat: 12.9726, Lng: 77.5946}
	// Roughly 11 m further.
	nudged := models.Coordinate{Lat: 12.9727, Lng: 77.5946}

	sent, err := tr.Offer(ctx, start)
	require.NoError(t, err)
	assert.True(t, sent, "first position is always sent")

	clock = clock.Add(5 * time.Second)
	sent, _ = tr.Offer(ctx, moved)
	assert.False(t, sent, "too soon")

	clock = clock.Add(10 * time.Second)
	sent, _ = tr.Offer(ctx, moved)
	assert.True(t, sent)

	clock = clock.Add(30 * time.Second)
	sent, _ = tr.Offer(ctx, nudged)
	assert.False(t, sent, "too close")

	assert.Equal(t, []models.Coordinate{start, moved}, sender.sent)
}

func TestLocationTracker_ServerThrottleAndErrors(t *testing.T) {
	ctx := context.Background()

	throttled := &fakeSender{throttled: true}
	tr := NewLocationTracker(throttled, time.Second, 0, logger.NewNop())
	sent, err := tr.Offer(ctx, models.Coordinate{Lat: 1, Lng: 1})
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Nil(t, tr.lastSent)

	broken := &fakeSender{err: errors.New("offline")}
	tr = NewLocationTracker(broken, time.Second, 0, logger.NewNop())
	_, err = tr.Offer(ctx, models.Coordinate{Lat: 1, Lng: 1})
	assert.Error(t, err)
}

func TestLocationTracker_Run(t *testing.T) {
	sender := &fakeSender{}
	tr := NewLocationTracker(sender, time.Hour, 0, logger.NewNop())

	positions := make(chan models.Coordinate, 3)
	positions <- models.Coordinate{Lat: 1, Lng: 1}
	positions <- models.Coordinate{Lat: 2, Lng: 2}
	positions <- models.Coordinate{Lat: 3, Lng: 3}
	close(positions)

	require.NoError(t, tr.Run(context.Background(), positions))
	assert.Len(t, sender.sent, 1)
}
