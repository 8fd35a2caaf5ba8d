package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Upload(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	resp, err := s.Upload(context.Background(), &UploadRequest{
		Key:         "evidence/p1/pickup.jpg",
		Reader:      strings.NewReader("jpeg-bytes"),
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/uploads/evidence/p1/pickup.jpg", resp.URL)
	assert.Equal(t, int64(len("jpeg-bytes")), resp.Size)

	data, err := os.ReadFile(filepath.Join(dir, "evidence", "p1", "pickup.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "http://localhost")
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), &UploadRequest{
		Key:    "../outside.jpg",
		Reader: strings.NewReader("x"),
	})
	assert.Error(t, err)
}

func TestCloudURLs(t *testing.T) {
	assert.Equal(t, "https://bucket.s3.ap-south-1.amazonaws.com/k.jpg",
		(&AWSS3Storage{bucket: "bucket", region: "ap-south-1"}).generateURL("k.jpg"))
	assert.Equal(t, "https://cdn.example.org/k.jpg",
		(&GCPStorage{bucket: "b", cdnDomain: "cdn.example.org"}).generateURL("k.jpg"))
	assert.Equal(t, "https://storage.googleapis.com/b/k.jpg",
		(&GCPStorage{bucket: "b"}).generateURL("k.jpg"))
}
