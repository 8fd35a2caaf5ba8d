// Package firestore stores postings, users, notifications and messages in Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DefaultTimeout = 5 * time.Second

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func statusAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	wrapped := fmt.Errorf("failed to %s: %w", op, err)
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewStoreUnavailable(wrapped)
	}
	switch status.Code(err) {
	case codes.DeadlineExceeded, codes.Unavailable:
		return apperrors.NewStoreUnavailable(wrapped)
	}
	return wrapped
}

// fieldPath maps a snake_case document field name onto the camelCase name used in
// the firestore struct tags.
func fieldPath(field string) string {
	parts := strings.Split(field, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func updates(fields map[string]interface{}, now time.Time) []firestore.Update {
	out := make([]firestore.Update, 0, len(fields)+1)
	for k, v := range fields {
		out = append(out, firestore.Update{Path: fieldPath(k), Value: v})
	}
	return append(out, firestore.Update{Path: "updatedAt", Value: now})
}

func sortNewestFirst(postings []*models.Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		return postings[i].CreatedAt.After(postings[j].CreatedAt)
	})
}
