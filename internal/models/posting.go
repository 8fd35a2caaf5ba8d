package models

import (
	"time"
)

type PostingStatus string
type DonationType string

const (
	PostingStatusAvailable                   PostingStatus = "AVAILABLE"
	PostingStatusRequested                   PostingStatus = "REQUESTED"
	PostingStatusPickupVerificationPending   PostingStatus = "PICKUP_VERIFICATION_PENDING"
	PostingStatusInTransit                   PostingStatus = "IN_TRANSIT"
	PostingStatusDeliveryVerificationPending PostingStatus = "DELIVERY_VERIFICATION_PENDING"
	PostingStatusDelivered                   PostingStatus = "DELIVERED"

	DonationTypeFood    DonationType = "FOOD"
	DonationTypeClothes DonationType = "CLOTHES"
)

// Posting is the persisted record of one donation moving from donor to requester.
type Posting struct {
	ID                      string        `json:"id" bson:"_id" firestore:"id"`
	DonationType            DonationType  `json:"donation_type" bson:"donation_type" firestore:"donationType" validate:"required,donation_type"`
	DonorID                 string        `json:"donor_id" bson:"donor_id" firestore:"donorId" validate:"required"`
	DonorName               string        `json:"donor_name" bson:"donor_name" firestore:"donorName"`
	VolunteerID             string        `json:"volunteer_id,omitempty" bson:"volunteer_id,omitempty" firestore:"volunteerId,omitempty"`
	VolunteerName           string        `json:"volunteer_name,omitempty" bson:"volunteer_name,omitempty" firestore:"volunteerName,omitempty"`
	OrphanageID             string        `json:"orphanage_id,omitempty" bson:"orphanage_id,omitempty" firestore:"orphanageId,omitempty"`
	OrphanageName           string        `json:"orphanage_name,omitempty" bson:"orphanage_name,omitempty" firestore:"orphanageName,omitempty"`
	Name                    string        `json:"name" bson:"name" firestore:"name" validate:"required,max=120"`
	Description             string        `json:"description" bson:"description" firestore:"description" validate:"max=2000"`
	Quantity                string        `json:"quantity" bson:"quantity" firestore:"quantity" validate:"required"`
	Unit                    string        `json:"unit" bson:"unit" firestore:"unit"`
	ExpiryDate              *time.Time    `json:"expiry_date,omitempty" bson:"expiry_date,omitempty" firestore:"expiryDate,omitempty"`
	ImageURL                string        `json:"image_url" bson:"image_url" firestore:"imageUrl"`
	SafetyCheck             *SafetyCheck  `json:"safety_check,omitempty" bson:"safety_check,omitempty" firestore:"safetyCheck,omitempty"`
	Tags                    []string      `json:"tags" bson:"tags" firestore:"tags"`
	Location                Address       `json:"location" bson:"location" firestore:"location" validate:"required"`
	RequesterAddress        *Address      `json:"requester_address,omitempty" bson:"requester_address,omitempty" firestore:"requesterAddress,omitempty"`
	VolunteerLocation       *Coordinate   `json:"volunteer_location,omitempty" bson:"volunteer_location,omitempty" firestore:"volunteerLocation,omitempty"`
	PickupVerificationImage string        `json:"pickup_verification_image,omitempty" bson:"pickup_verification_image,omitempty" firestore:"pickupVerificationImage,omitempty"`
	VerificationImage       string        `json:"verification_image,omitempty" bson:"verification_image,omitempty" firestore:"verificationImage,omitempty"`
	Status                  PostingStatus `json:"status" bson:"status" firestore:"status"`
	InterestedVolunteers    []string      `json:"interested_volunteers" bson:"interested_volunteers" firestore:"interestedVolunteers"`
	Ratings                 []Rating      `json:"ratings" bson:"ratings" firestore:"ratings"`
	PlatformFeePaid         bool          `json:"platform_fee_paid" bson:"platform_fee_paid" firestore:"platformFeePaid"`
	CreatedAt               time.Time     `json:"created_at" bson:"created_at" firestore:"createdAt"`
	UpdatedAt               time.Time     `json:"updated_at" bson:"updated_at" firestore:"updatedAt"`
}

// SafetyCheck is the advisory verdict from the evidence verifier. It never gates a transition.
type SafetyCheck struct {
	IsSafe        bool    `json:"is_safe" bson:"is_safe" firestore:"isSafe"`
	Reasoning     string  `json:"reasoning" bson:"reasoning" firestore:"reasoning"`
	DetectedLabel string  `json:"detected_label" bson:"detected_label" firestore:"detectedLabel"`
	Confidence    float64 `json:"confidence" bson:"confidence" firestore:"confidence"`
	Degraded      bool    `json:"degraded" bson:"degraded" firestore:"degraded"`
}

// PostingContentUpdate lists the fields a donor may edit in place. Lifecycle fields only
// change through transitions.
type PostingContentUpdate struct {
	Name         *string       `json:"name" validate:"omitempty,max=120"`
	Description  *string       `json:"description" validate:"omitempty,max=2000"`
	Quantity     *string       `json:"quantity"`
	Unit         *string       `json:"unit"`
	ExpiryDate   *time.Time    `json:"expiry_date"`
	ImageURL     *string       `json:"image_url"`
	Tags         []string      `json:"tags"`
	DonationType *DonationType `json:"donation_type" validate:"omitempty,donation_type"`
}

// Fields returns the update as a field map keyed by the document field names.
func (u *PostingContentUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Quantity != nil {
		fields["quantity"] = *u.Quantity
	}
	if u.Unit != nil {
		fields["unit"] = *u.Unit
	}
	if u.ExpiryDate != nil {
		fields["expiry_date"] = *u.ExpiryDate
	}
	if u.ImageURL != nil {
		fields["image_url"] = *u.ImageURL
	}
	if u.Tags != nil {
		fields["tags"] = u.Tags
	}
	if u.DonationType != nil {
		fields["donation_type"] = *u.DonationType
	}
	return fields
}

type CreatePostingRequest struct {
	DonationType DonationType `json:"donation_type" validate:"required,donation_type"`
	Name         string       `json:"name" validate:"required,max=120"`
	Description  string       `json:"description" validate:"max=2000"`
	Quantity     string       `json:"quantity" validate:"required"`
	Unit         string       `json:"unit"`
	ExpiryDate   *time.Time   `json:"expiry_date"`
	ImageURL     string       `json:"image_url"`
	Tags         []string     `json:"tags"`
	Location     Address      `json:"location" validate:"required"`
	FeeReference string       `json:"fee_reference"`
}

// DefaultUnit returns the quantity unit used when the donor leaves it blank.
func (t DonationType) DefaultUnit() string {
	switch t {
	case DonationTypeClothes:
		return "items"
	default:
		return "servings"
	}
}

func (t DonationType) IsValid() bool {
	return t == DonationTypeFood || t == DonationTypeClothes
}

func (s PostingStatus) IsValid() bool {
	switch s {
	case PostingStatusAvailable, PostingStatusRequested, PostingStatusPickupVerificationPending,
		PostingStatusInTransit, PostingStatusDeliveryVerificationPending, PostingStatusDelivered:
		return true
	}
	return false
}

// IsTransporting reports whether a volunteer is physically responsible for the goods.
func (s PostingStatus) IsTransporting() bool {
	return s == PostingStatusPickupVerificationPending ||
		s == PostingStatusInTransit ||
		s == PostingStatusDeliveryVerificationPending
}

// AwaitsDonorVerification reports whether the donor has evidence to review.
func (s PostingStatus) AwaitsDonorVerification() bool {
	return s == PostingStatusPickupVerificationPending || s == PostingStatusDeliveryVerificationPending
}

func (p *Posting) HasRatingFrom(raterID string) bool {
	for _, r := range p.Ratings {
		if r.RaterID == raterID {
			return true
		}
	}
	return false
}

func (p *Posting) IsInterested(volunteerID string) bool {
	for _, id := range p.InterestedVolunteers {
		if id == volunteerID {
			return true
		}
	}
	return false
}

// Parties returns the ids of everyone currently attached to the posting.
func (p *Posting) Parties() []string {
	parties := []string{p.DonorID}
	if p.OrphanageID != "" {
		parties = append(parties, p.OrphanageID)
	}
	if p.VolunteerID != "" {
		parties = append(parties, p.VolunteerID)
	}
	return parties
}

func (p *Posting) IsParty(userID string) bool {
	for _, id := range p.Parties() {
		if id == userID {
			return true
		}
	}
	return false
}

// ReplacePostingRequest is the full set of editable content, used by PUT.
type ReplacePostingRequest struct {
	DonationType DonationType `json:"donation_type" validate:"required,donation_type"`
	Name         string       `json:"name" validate:"required,max=120"`
	Description  string       `json:"description" validate:"max=2000"`
	Quantity     string       `json:"quantity" validate:"required"`
	Unit         string       `json:"unit"`
	ExpiryDate   *time.Time   `json:"expiry_date"`
	ImageURL     string       `json:"image_url" validate:"required"`
	Tags         []string     `json:"tags"`
	Location     Address      `json:"location" validate:"required"`
}

func (r *ReplacePostingRequest) Fields() map[string]interface{} {
	unit := r.Unit
	if unit == "" {
		unit = r.DonationType.DefaultUnit()
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	fields := map[string]interface{}{
		"donation_type": r.DonationType,
		"name":          r.Name,
		"description":   r.Description,
		"quantity":      r.Quantity,
		"unit":          unit,
		"image_url":     r.ImageURL,
		"tags":          tags,
		"location":      r.Location,
	}
	if r.ExpiryDate != nil {
		fields["expiry_date"] = *r.ExpiryDate
	}
	return fields
}

type ClaimRequest struct {
	Address *Address `json:"address"`
}

// EvidenceRequest carries an uploaded photo URL and, for pickups, the volunteer's position.
type EvidenceRequest struct {
	ImageURL string      `json:"image_url" validate:"required,url"`
	Location *Coordinate `json:"location" validate:"omitempty"`
}

// EvidenceImage returns the most recent photo attached to the posting.
func (p *Posting) EvidenceImage() string {
	switch {
	case p.VerificationImage != "":
		return p.VerificationImage
	case p.PickupVerificationImage != "":
		return p.PickupVerificationImage
	default:
		return p.ImageURL
	}
}

// Feed is one tab of postings as shown to a user.
type Feed struct {
	Tab      string     `json:"tab"`
	Tabs     []string   `json:"tabs"`
	Postings []*Posting `json:"postings"`
}
