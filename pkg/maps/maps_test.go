package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

const mapboxReverseBody = `{
  "features": [{
    "id": "address.1",
    "text": "MG Road",
    "address": "42",
    "place_name": "42 MG Road, Shanthala Nagar, Bengaluru 560001, India",
    "place_type": ["address"],
    "center": [77.6101, 12.9756],
    "context": [
      {"id": "neighborhood.7", "text": "Shanthala Nagar"},
      {"id": "postcode.9", "text": "560001"},
      {"id": "place.3", "text": "Bengaluru"},
      {"id": "country.1", "text": "India"}
    ]
  }]
}`

func TestMapboxReverseGeocode(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "token", r.URL.Query().Get("access_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mapboxReverseBody))
	}))
	defer srv.Close()

	p := NewMapboxProvider("token").WithBaseURL(srv.URL)
	resp, err := p.ReverseGeocode(context.Background(), 12.9756, 77.6101)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/geocoding/v5/mapbox.places/77.610100,12.975600"))

	first := resp.First()
	require.NotNil(t, first)
	assert.Equal(t, "42 MG Road", first.Components.Line1)
	assert.Equal(t, "Shanthala Nagar, Bengaluru", first.Components.Line2)
	assert.Equal(t, "560001", first.Components.Pincode)
	assert.InDelta(t, 12.9756, first.Coordinates.Latitude, 1e-9)
}

func TestMapboxErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Authorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewMapboxProvider("bad").WithBaseURL(srv.URL).Geocode(context.Background(), "MG Road")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGoogleComponents(t *testing.T) {
	got := googleComponents([]maps.AddressComponent{
		{LongName: "42", Types: []string{"street_number"}},
		{LongName: "MG Road", Types: []string{"route"}},
		{LongName: "Shanthala Nagar", Types: []string{"sublocality_level_1", "sublocality", "political"}},
		{LongName: "Bengaluru", Types: []string{"locality", "political"}},
		{LongName: "Cubbon Park", Types: []string{"point_of_interest", "establishment"}},
		{LongName: "560001", Types: []string{"postal_code"}},
	})

	assert.Equal(t, AddressComponents{
		Line1:    "42 MG Road",
		Line2:    "Shanthala Nagar, Bengaluru",
		Landmark: "Cubbon Park",
		Pincode:  "560001",
	}, got)
}

func TestFirstOnEmpty(t *testing.T) {
	var resp *GeocodeResponse
	assert.Nil(t, resp.First())
	assert.Nil(t, (&GeocodeResponse{}).First())
}
