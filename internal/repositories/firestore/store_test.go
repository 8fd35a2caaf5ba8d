package firestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFieldPath(t *testing.T) {
	tests := map[string]string{
		"name":                 "name",
		"image_url":            "imageUrl",
		"expiry_date":          "expiryDate",
		"safety_check":         "safetyCheck",
		"donation_type_filter": "donationTypeFilter",
	}
	for in, want := range tests {
		assert.Equal(t, want, fieldPath(in), in)
	}
}

func TestStoreError(t *testing.T) {
	assert.NoError(t, storeError("get posting", nil))

	err := storeError("get posting", status.Error(codes.Unavailable, "backend down"))
	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))

	err = storeError("get posting", context.DeadlineExceeded)
	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))

	stale := apperrors.NewStaleWrite("p1")
	assert.Same(t, stale, storeError("commit transition", stale))

	err = storeError("get posting", status.Error(codes.PermissionDenied, "nope"))
	assert.False(t, errors.Is(err, apperrors.ErrStoreUnavailable))
	assert.Contains(t, err.Error(), "failed to get posting")
}

func TestUpdatesAppendsTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	out := updates(map[string]interface{}{"search_radius": 25.0}, now)

	assert.Len(t, out, 2)
	assert.Equal(t, "searchRadius", out[0].Path)
	assert.Equal(t, "updatedAt", out[1].Path)
	assert.Equal(t, now, out[1].Value)
}

func TestMergeInterestAndSort(t *testing.T) {
	assert.Equal(t, []string{"vol-2", "vol-1"}, mergeInterest([]string{"vol-2"}, []string{"vol-1", "vol-2"}))

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	postings := []*models.Posting{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.Add(time.Hour)},
	}
	sortNewestFirst(postings)
	assert.Equal(t, "new", postings[0].ID)
}
