package reconciler

import (
	"context"
	"errors"
	"time"

	"donationhub/internal/utils"
	"donationhub/pkg/logger"
)

// Fetcher loads the client's current view from the store or API.
type Fetcher interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// Observer receives the loop's output. Calls happen on the loop goroutine.
type Observer interface {
	OnDelta(d Delta)
	// OnConnectivity is called with true when the failure threshold is crossed and
	// with false on the first success after that.
	OnConnectivity(lost bool)
}

type Config struct {
	Interval         time.Duration
	FailureThreshold int
	// DonorID enables the verification prompt for a donor client.
	DonorID string
}

// Reconciler is one client's polling loop.
type Reconciler struct {
	fetcher  Fetcher
	observer Observer
	cfg      Config
	logger   *logger.Logger

	last     Snapshot
	failures int
	bannerUp bool
}

func New(fetcher Fetcher, observer Observer, cfg Config, logger *logger.Logger) *Reconciler {
	if cfg.Interval <= 0 {
		cfg.Interval = utils.DefaultPollInterval
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = utils.DefaultFailureThreshold
	}
	return &Reconciler{
		fetcher:  fetcher,
		observer: observer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run polls immediately and then every interval until ctx is cancelled. Fetch
// errors never stop the loop.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		r.Tick(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick performs a single poll. Each fetch is bounded by the poll interval.
func (r *Reconciler) Tick(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.Interval)
	defer cancel()

	next, err := r.fetcher.Fetch(fetchCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return
		}
		r.failures++
		r.logger.WithError(err).WithField("consecutive_failures", r.failures).Warn("Poll failed")
		if r.failures >= r.cfg.FailureThreshold && !r.bannerUp {
			r.bannerUp = true
			r.observer.OnConnectivity(true)
		}
		return
	}

	r.failures = 0
	if r.bannerUp {
		r.bannerUp = false
		r.observer.OnConnectivity(false)
	}

	delta := Diff(r.last, *next, r.cfg.DonorID)
	r.last = *next
	if !delta.Empty() {
		r.observer.OnDelta(delta)
	}
}
