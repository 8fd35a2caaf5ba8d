package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type MapboxProvider struct {
	accessToken string
	httpClient  *http.Client
	baseURL     string
}

func NewMapboxProvider(accessToken string) *MapboxProvider {
	return &MapboxProvider{
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     "https://api.mapbox.com",
	}
}

// WithBaseURL points the provider at another host, such as a test server.
func (m *MapboxProvider) WithBaseURL(baseURL string) *MapboxProvider {
	m.baseURL = strings.TrimRight(baseURL, "/")
	return m
}

type mapboxFeature struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Address   string    `json:"address"`
	PlaceName string    `json:"place_name"`
	PlaceType []string  `json:"place_type"`
	Center    []float64 `json:"center"`
	Context   []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"context"`
	Properties struct {
		Landmark bool   `json:"landmark"`
		Address  string `json:"address"`
	} `json:"properties"`
}

func (m *MapboxProvider) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	apiURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json?access_token=%s",
		m.baseURL, url.PathEscape(address), url.QueryEscape(m.accessToken))

	return m.fetch(ctx, apiURL)
}

func (m *MapboxProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResponse, error) {
	apiURL := fmt.Sprintf("%s/geocoding/v5/mapbox.places/%f,%f.json?access_token=%s",
		m.baseURL, lng, lat, url.QueryEscape(m.accessToken))

	return m.fetch(ctx, apiURL)
}

func (m *MapboxProvider) fetch(ctx context.Context, apiURL string) (*GeocodeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mapbox API error (%d): %s", resp.StatusCode, string(body))
	}

	var mapboxResp struct {
		Features []mapboxFeature `json:"features"`
	}
	if err := json.Unmarshal(body, &mapboxResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	results := make([]GeocodeResult, 0, len(mapboxResp.Features))
	for _, feature := range mapboxResp.Features {
		if len(feature.Center) < 2 {
			continue
		}
		results = append(results, GeocodeResult{
			PlaceID: feature.ID,
			Address: feature.PlaceName,
			Coordinates: Location{
				Latitude:  feature.Center[1],
				Longitude: feature.Center[0],
			},
			Types:      feature.PlaceType,
			Components: mapboxComponents(feature),
		})
	}

	return &GeocodeResponse{Results: results}, nil
}

func mapboxComponents(f mapboxFeature) AddressComponents {
	var out AddressComponents
	var area []string

	if f.Properties.Landmark || hasType(f.PlaceType, "poi") {
		out.Landmark = f.Text
		out.Line1 = f.Properties.Address
	} else {
		out.Line1 = strings.TrimSpace(f.Address + " " + f.Text)
	}

	for _, c := range f.Context {
		prefix, _, _ := strings.Cut(c.ID, ".")
		switch prefix {
		case "postcode":
			out.Pincode = c.Text
		case "neighborhood", "locality", "place":
			area = append(area, c.Text)
		}
	}
	out.Line2 = strings.Join(area, ", ")
	return out
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
