package services

import (
	"context"
	"errors"
	"strings"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"
	"donationhub/internal/observability"
	"donationhub/pkg/logger"
	"donationhub/pkg/maps"
)

var errNoGeocodeResult = errors.New("no geocoding result")

// GeocodingService fills pickup address forms. Failures never surface as errors;
// the result is blank and Degraded is set instead.
type GeocodingService interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) *models.GeocodedAddress
	Geocode(ctx context.Context, address string) (*models.GeocodedAddress, error)
}

type geocodingService struct {
	provider maps.MapsProvider
	logger   *logger.Logger
}

// NewGeocodingService accepts a nil provider; every lookup is then degraded.
func NewGeocodingService(provider maps.MapsProvider, logger *logger.Logger) GeocodingService {
	return &geocodingService{
		provider: provider,
		logger:   logger,
	}
}

func (s *geocodingService) ReverseGeocode(ctx context.Context, lat, lng float64) *models.GeocodedAddress {
	blank := &models.GeocodedAddress{Address: models.NewAddressAt(lat, lng), Degraded: true}

	if s.provider == nil {
		return s.degraded(blank, errors.New("no maps provider configured"))
	}

	resp, err := s.provider.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return s.degraded(blank, err)
	}
	best := resp.First()
	if best == nil {
		return s.degraded(blank, errNoGeocodeResult)
	}

	addr := models.NewAddressAt(lat, lng)
	addr.Line1 = best.Components.Line1
	addr.Line2 = best.Components.Line2
	addr.Landmark = best.Components.Landmark
	addr.Pincode = best.Components.Pincode

	return &models.GeocodedAddress{Address: addr, FormattedAddress: best.Address}
}

// Geocode rejects blank input and otherwise degrades like ReverseGeocode.
func (s *geocodingService) Geocode(ctx context.Context, address string) (*models.GeocodedAddress, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, apperrors.NewValidation("address is required")
	}

	blank := &models.GeocodedAddress{Address: models.Address{Line1: address}, Degraded: true}

	if s.provider == nil {
		return s.degraded(blank, errors.New("no maps provider configured")), nil
	}

	resp, err := s.provider.Geocode(ctx, address)
	if err != nil {
		return s.degraded(blank, err), nil
	}
	best := resp.First()
	if best == nil {
		return s.degraded(blank, errNoGeocodeResult), nil
	}

	addr := models.NewAddressAt(best.Coordinates.Latitude, best.Coordinates.Longitude)
	addr.Line1 = best.Components.Line1
	addr.Line2 = best.Components.Line2
	addr.Landmark = best.Components.Landmark
	addr.Pincode = best.Components.Pincode

	return &models.GeocodedAddress{Address: addr, FormattedAddress: best.Address}, nil
}

func (s *geocodingService) degraded(blank *models.GeocodedAddress, err error) *models.GeocodedAddress {
	s.logger.LogDegraded("geocoder", err)
	observability.RecordDegraded("geocoder")
	return blank
}
