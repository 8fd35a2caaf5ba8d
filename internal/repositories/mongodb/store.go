package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"donationhub/internal/apperrors"

	"go.mongodb.org/mongo-driver/mongo"
)

const DefaultTimeout = 5 * time.Second

// CacheService is the subset of pkg/cache the repositories use for read-through user caching.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// storeError wraps err with the failed operation and marks deadline and network failures
// as StoreUnavailable.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	wrapped := fmt.Errorf("failed to %s: %w", op, err)
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return apperrors.NewStoreUnavailable(wrapped)
	}
	return wrapped
}
