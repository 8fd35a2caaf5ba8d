package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryWithBackoff(t *testing.T) {
	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), 3, time.Millisecond, func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("returns last error", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), 2, time.Millisecond, func(ctx context.Context) error {
			calls++
			return errors.New("down")
		})
		assert.EqualError(t, err, "down")
		assert.Equal(t, 2, calls)
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := RetryWithBackoff(ctx, 5, time.Hour, func(ctx context.Context) error {
			calls++
			cancel()
			return errors.New("down")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, UniqueStrings([]string{"a", "", "b", "a"}))
}

func TestGetContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", GetContentType("proof.JPG"))
	assert.Equal(t, "application/octet-stream", GetContentType("notes.txt"))
	assert.True(t, IsImageFile("a.webp"))
	assert.False(t, IsImageFile("a.gif"))
}
