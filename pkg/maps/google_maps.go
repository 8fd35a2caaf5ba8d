package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

type GoogleMapsProvider struct {
	client *maps.Client
}

func NewGoogleMapsProvider(apiKey string) (*GoogleMapsProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleMapsProvider{
		client: client,
	}, nil
}

func (g *GoogleMapsProvider) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	req := &maps.GeocodingRequest{
		Address: address,
	}

	resp, err := g.client.Geocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}

	return convertGoogleResults(resp), nil
}

func (g *GoogleMapsProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResponse, error) {
	req := &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	}

	resp, err := g.client.ReverseGeocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding failed: %w", err)
	}

	return convertGoogleResults(resp), nil
}

func convertGoogleResults(resp []maps.GeocodingResult) *GeocodeResponse {
	results := make([]GeocodeResult, len(resp))
	for i, result := range resp {
		results[i] = GeocodeResult{
			PlaceID: result.PlaceID,
			Address: result.FormattedAddress,
			Coordinates: Location{
				Latitude:  result.Geometry.Location.Lat,
				Longitude: result.Geometry.Location.Lng,
			},
			Types:      result.Types,
			Components: googleComponents(result.AddressComponents),
		}
	}

	return &GeocodeResponse{Results: results}
}

func googleComponents(components []maps.AddressComponent) AddressComponents {
	var (
		streetNumber, route, premise string
		area                         []string
		out                          AddressComponents
	)

	for _, c := range components {
		for _, t := range c.Types {
			switch t {
			case "street_number":
				streetNumber = c.LongName
			case "route":
				route = c.LongName
			case "premise", "subpremise":
				premise = c.LongName
			case "sublocality", "sublocality_level_1", "locality":
				area = append(area, c.LongName)
			case "point_of_interest", "establishment", "natural_feature":
				if out.Landmark == "" {
					out.Landmark = c.LongName
				}
			case "postal_code":
				out.Pincode = c.LongName
			default:
				continue
			}
			break
		}
	}

	out.Line1 = strings.TrimSpace(strings.Join(nonEmpty(premise, streetNumber, route), " "))
	out.Line2 = strings.Join(area, ", ")
	return out
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
