package observability

import (
	"errors"
	"strconv"
	"time"

	"donationhub/internal/apperrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts committed lifecycle transitions.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "donationhub_transitions_total",
		Help: "Total number of committed posting transitions",
	}, []string{"event", "from", "to"})

	// TransitionRejections counts transitions refused by the engine or lost to a concurrent writer.
	TransitionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "donationhub_transition_rejections_total",
		Help: "Total number of rejected posting transitions by reason",
	}, []string{"event", "code"})

	RatingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "donationhub_ratings_total",
		Help: "Total number of ratings submitted by outcome",
	}, []string{"outcome"})

	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "donationhub_store_errors_total",
		Help: "Total number of store errors by operation",
	}, []string{"operation"})

	DegradedCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "donationhub_external_degraded_total",
		Help: "Total number of external service calls that fell back to a degraded result",
	}, []string{"service"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "donationhub_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func RecordTransition(event, from, to string) {
	TransitionsTotal.WithLabelValues(event, from, to).Inc()
}

// RecordRejection labels err by its application error code.
func RecordRejection(event string, err error) {
	TransitionRejections.WithLabelValues(event, string(codeOf(err))).Inc()
	if errors.Is(err, apperrors.ErrStoreUnavailable) {
		StoreErrors.WithLabelValues(event).Inc()
	}
}

func RecordRating(outcome string) {
	RatingsTotal.WithLabelValues(outcome).Inc()
}

func RecordStoreError(operation string) {
	StoreErrors.WithLabelValues(operation).Inc()
}

func RecordDegraded(service string) {
	DegradedCalls.WithLabelValues(service).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func ObserveRequest(method, route string, status int, start time.Time) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

func codeOf(err error) apperrors.ErrorCode {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return apperrors.CodeInternal
}
