package utils

import "time"

// Application Constants
const (
	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Postings
	DefaultSearchRadius = 10.0 // kilometers
	MaxSearchRadius     = 500.0

	// Polling
	DefaultPollInterval           = 2 * time.Second
	DefaultFailureThreshold       = 3
	DefaultLocationUpdateInterval = 10 * time.Second
	DefaultLocationMinDistanceM   = 25.0

	// File Upload
	MaxImageSize = 5 * 1024 * 1024 // 5MB

	// Tokens
	JWTAccessTokenTTL = 24 * time.Hour
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidToken     = "invalid token"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrValidationFailed = "validation failed"
	ErrFileUploadFailed = "file upload failed"
	ErrRateLimited      = "too many requests"
)

// Cache Keys
const (
	CacheRateLimitPrefix = "rate_limit:"
	CacheLocationPrefix  = "volunteer_location:"
)

// Event Types
const (
	EventUserRegistered  = "user_registered"
	EventPostingCreated  = "posting_created"
	EventPostingUpdated  = "posting_updated"
	EventRatingSubmitted = "rating_submitted"
	EventFeeCaptured     = "platform_fee_captured"
)

// File Types
var (
	AllowedImageTypes = []string{"jpg", "jpeg", "png", "webp"}
)

// Geographic Constants
const (
	EarthRadiusKM = 6371.0
)
