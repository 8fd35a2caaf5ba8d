package models

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" bson:"lat" firestore:"lat" validate:"latitude"`
	Lng float64 `json:"lng" bson:"lng" firestore:"lng" validate:"longitude"`
}

// Address is a human readable place. Coordinates are optional; postings created
// without them are never excluded by radius filters.
type Address struct {
	Line1    string   `json:"line1" bson:"line1" firestore:"line1"`
	Line2    string   `json:"line2" bson:"line2" firestore:"line2"`
	Landmark string   `json:"landmark" bson:"landmark" firestore:"landmark"`
	Pincode  string   `json:"pincode" bson:"pincode" firestore:"pincode"`
	Lat      *float64 `json:"lat,omitempty" bson:"lat,omitempty" firestore:"lat,omitempty" validate:"omitempty,latitude"`
	Lng      *float64 `json:"lng,omitempty" bson:"lng,omitempty" firestore:"lng,omitempty" validate:"omitempty,longitude"`
}

func (a Address) HasCoordinates() bool {
	return a.Lat != nil && a.Lng != nil
}

func (a Address) Coordinate() (Coordinate, bool) {
	if !a.HasCoordinates() {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *a.Lat, Lng: *a.Lng}, true
}

func NewAddressAt(lat, lng float64) Address {
	return Address{Lat: &lat, Lng: &lng}
}

// GeocodedAddress is a geocoder answer. Degraded is set when the lookup failed and
// the address carries only what the caller supplied.
type GeocodedAddress struct {
	Address          Address `json:"address"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Degraded         bool    `json:"degraded"`
}

// LocationUpdateResult lists the postings that received a volunteer position.
type LocationUpdateResult struct {
	Updated    int      `json:"updated"`
	PostingIDs []string `json:"posting_ids,omitempty"`
	Throttled  bool     `json:"throttled"`
}
