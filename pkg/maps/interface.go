package maps

import "context"

type MapsProvider interface {
	Geocode(ctx context.Context, address string) (*GeocodeResponse, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResponse, error)
}

type GeocodeResponse struct {
	Results []GeocodeResult `json:"results"`
}

type GeocodeResult struct {
	PlaceID     string            `json:"place_id"`
	Address     string            `json:"formatted_address"`
	Coordinates Location          `json:"geometry"`
	Types       []string          `json:"types"`
	Components  AddressComponents `json:"components"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AddressComponents is a result broken into the parts a pickup address form shows.
type AddressComponents struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	Landmark string `json:"landmark"`
	Pincode  string `json:"pincode"`
}

// First returns the best match or nil when there were no results.
func (r *GeocodeResponse) First() *GeocodeResult {
	if r == nil || len(r.Results) == 0 {
		return nil
	}
	return &r.Results[0]
}
