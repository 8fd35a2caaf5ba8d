package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/lifecycle"
	"donationhub/internal/utils"
	"donationhub/pkg/logger"
	"donationhub/pkg/storage"

	"github.com/google/uuid"
)

type UploadKind string

const (
	UploadKindDonation UploadKind = "donation"
	UploadKindPickup   UploadKind = "pickup"
	UploadKindDelivery UploadKind = "delivery"
)

func (k UploadKind) IsValid() bool {
	return k == UploadKindDonation || k == UploadKindPickup || k == UploadKindDelivery
}

type UploadedImage struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// UploadService stores donation and evidence photos and returns their URL for use
// in posting and transition requests.
type UploadService interface {
	UploadImage(ctx context.Context, owner lifecycle.Actor, kind UploadKind, filename string, size int64, r io.Reader) (*UploadedImage, error)
}

type uploadService struct {
	storage  storage.StorageProvider
	maxBytes int64
	logger   *logger.Logger
}

func NewUploadService(storage storage.StorageProvider, maxBytes int64, logger *logger.Logger) UploadService {
	if maxBytes <= 0 {
		maxBytes = utils.MaxImageSize
	}
	return &uploadService{
		storage:  storage,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

func (s *uploadService) UploadImage(ctx context.Context, owner lifecycle.Actor, kind UploadKind, filename string, size int64, r io.Reader) (*UploadedImage, error) {
	if !kind.IsValid() {
		return nil, apperrors.NewValidation(fmt.Sprintf("unknown upload kind %q", kind))
	}
	if !utils.IsImageFile(filename) {
		return nil, apperrors.NewValidation("only jpg, png and webp images are accepted")
	}
	if size > s.maxBytes {
		return nil, apperrors.NewValidation(fmt.Sprintf("image exceeds the %d byte limit", s.maxBytes))
	}

	key := fmt.Sprintf("%s/%s/%s/%s%s",
		kind, owner.ID, time.Now().UTC().Format("2006/01/02"), uuid.NewString(), utils.GetFileExtension(filename))

	resp, err := s.storage.Upload(ctx, &storage.UploadRequest{
		Key:          key,
		Reader:       io.LimitReader(r, s.maxBytes),
		ContentType:  utils.GetContentType(filename),
		Size:         size,
		Metadata:     map[string]string{"owner": owner.ID, "kind": string(kind)},
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		s.logger.WithUserID(owner.ID).WithError(err).Error("Image upload failed")
		return nil, apperrors.NewDegraded("image storage", err)
	}

	s.logger.WithUserID(owner.ID).WithFields(map[string]interface{}{
		"kind": kind,
		"key":  strings.TrimPrefix(resp.Key, "/"),
		"size": resp.Size,
	}).Info("Image uploaded")

	return &UploadedImage{URL: resp.URL, Key: resp.Key, Size: resp.Size}, nil
}
