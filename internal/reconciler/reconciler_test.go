package reconciler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"donationhub/internal/models"
	"donationhub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedFetcher struct {
	mu    sync.Mutex
	steps []func() (*Snapshot, error)
	calls int
}

func (f *scriptedFetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	return f.steps[i]()
}

type recorder struct {
	mu           sync.Mutex
	deltas       []Delta
	connectivity []bool
}

func (r *recorder) OnDelta(d Delta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deltas = append(r.deltas, d)
}

func (r *recorder) OnConnectivity(lost bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectivity = append(r.connectivity, lost)
}

func ok(postings ...*models.Posting) func() (*Snapshot, error) {
	return func() (*Snapshot, error) { return &Snapshot{Postings: postings}, nil }
}

func fail() (*Snapshot, error) { return nil, errors.New("connection refused") }

func TestReconciler_Banner(t *testing.T) {
	p := posting("p1", "d1", models.PostingStatusAvailable)
	f := &scriptedFetcher{steps: []func() (*Snapshot, error){
		ok(p), fail, fail, fail, fail, ok(p),
	}}
	rec := &recorder{}
	r := New(f, rec, Config{Interval: time.Second, FailureThreshold: 3, DonorID: "d1"}, logger.NewNop())

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		r.Tick(ctx)
	}

	// Banner goes up once on the third failure and down on recovery.
	assert.Equal(t, []bool{true, false}, rec.connectivity)
	// Only the first poll changed anything; recovery with identical data is silent.
	require.Len(t, rec.deltas, 1)
	assert.Equal(t, []string{"p1"}, rec.deltas[0].Added)
}

func TestReconciler_BelowThresholdNoBanner(t *testing.T) {
	f := &scriptedFetcher{steps: []func() (*Snapshot, error){fail, fail, ok()}}
	rec := &recorder{}
	r := New(f, rec, Config{Interval: time.Second, FailureThreshold: 3}, logger.NewNop())

	for i := 0; i < 3; i++ {
		r.Tick(context.Background())
	}
	assert.Empty(t, rec.connectivity)
}

func TestReconciler_PromptFlow(t *testing.T) {
	f := &scriptedFetcher{steps: []func() (*Snapshot, error){
		ok(posting("p1", "d1", models.PostingStatusInTransit)),
		ok(posting("p1", "d1", models.PostingStatusDeliveryVerificationPending)),
		ok(posting("p1", "d1", models.PostingStatusDelivered)),
	}}
	rec := &recorder{}
	r := New(f, rec, Config{Interval: time.Second, DonorID: "d1"}, logger.NewNop())

	for i := 0; i < 3; i++ {
		r.Tick(context.Background())
	}

	require.Len(t, rec.deltas, 3)
	assert.False(t, rec.deltas[0].PromptChanged)
	assert.True(t, rec.deltas[1].PromptChanged)
	assert.Equal(t, "p1", rec.deltas[1].Prompt.PostingID)
	assert.True(t, rec.deltas[2].PromptChanged)
	assert.Nil(t, rec.deltas[2].Prompt)
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	f := &scriptedFetcher{steps: []func() (*Snapshot, error){ok()}}
	r := New(f, &recorder{}, Config{Interval: 10 * time.Millisecond}, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.GreaterOrEqual(t, f.calls, 2)
}

func TestNew_Defaults(t *testing.T) {
	r := New(&scriptedFetcher{}, &recorder{}, Config{}, logger.NewNop())
	assert.Equal(t, 2*time.Second, r.cfg.Interval)
	assert.Equal(t, 3, r.cfg.FailureThreshold)
}
