package models

import (
	"time"
)

type Role string
type DonationTypeFilter string

const (
	RoleDonor     Role = "DONOR"
	RoleVolunteer Role = "VOLUNTEER"
	RoleRequester Role = "REQUESTER"

	DonationFilterAll     DonationTypeFilter = "ALL"
	DonationFilterFood    DonationTypeFilter = "FOOD"
	DonationFilterClothes DonationTypeFilter = "CLOTHES"

	DefaultAverageRating = 5.0
	DefaultSearchRadius  = 10.0
)

type User struct {
	ID                 string             `json:"id" bson:"_id" firestore:"id"`
	Name               string             `json:"name" bson:"name" firestore:"name" validate:"required,max=100"`
	Email              string             `json:"email" bson:"email" firestore:"email" validate:"omitempty,email"`
	Role               Role               `json:"role" bson:"role" firestore:"role" validate:"required,role"`
	Address            *Address           `json:"address,omitempty" bson:"address,omitempty" firestore:"address,omitempty"`
	AverageRating      float64            `json:"average_rating" bson:"average_rating" firestore:"averageRating"`
	RatingsCount       int                `json:"ratings_count" bson:"ratings_count" firestore:"ratingsCount"`
	SearchRadius       float64            `json:"search_radius" bson:"search_radius" firestore:"searchRadius"`
	DonationTypeFilter DonationTypeFilter `json:"donation_type_filter" bson:"donation_type_filter" firestore:"donationTypeFilter"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at" firestore:"createdAt"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at" firestore:"updatedAt"`
}

type RegisterUserRequest struct {
	Name    string   `json:"name" validate:"required,max=100"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Role    Role     `json:"role" validate:"required,role"`
	Address *Address `json:"address"`
}

// UserPreferencesUpdate holds the self-service fields. Role and rating aggregates are not editable.
type UserPreferencesUpdate struct {
	Name               *string             `json:"name" validate:"omitempty,max=100"`
	Email              *string             `json:"email" validate:"omitempty,email"`
	Address            *Address            `json:"address"`
	SearchRadius       *float64            `json:"search_radius" validate:"omitempty,gt=0,lte=500"`
	DonationTypeFilter *DonationTypeFilter `json:"donation_type_filter" validate:"omitempty,donation_filter"`
}

func (u *UserPreferencesUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Email != nil {
		fields["email"] = *u.Email
	}
	if u.Address != nil {
		fields["address"] = *u.Address
	}
	if u.SearchRadius != nil {
		fields["search_radius"] = *u.SearchRadius
	}
	if u.DonationTypeFilter != nil {
		fields["donation_type_filter"] = *u.DonationTypeFilter
	}
	return fields
}

func (r Role) IsValid() bool {
	return r == RoleDonor || r == RoleVolunteer || r == RoleRequester
}

func (f DonationTypeFilter) IsValid() bool {
	return f == DonationFilterAll || f == DonationFilterFood || f == DonationFilterClothes
}

// Matches reports whether a donation type passes the filter. The empty filter behaves like ALL.
func (f DonationTypeFilter) Matches(t DonationType) bool {
	if f == "" || f == DonationFilterAll {
		return true
	}
	return string(f) == string(t)
}

// NewUser returns a user with the default rating, radius and filter applied.
func NewUser(id, name, email string, role Role, now time.Time) *User {
	return &User{
		ID:                 id,
		Name:               name,
		Email:              email,
		Role:               role,
		AverageRating:      DefaultAverageRating,
		RatingsCount:       0,
		SearchRadius:       DefaultSearchRadius,
		DonationTypeFilter: DonationFilterAll,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
