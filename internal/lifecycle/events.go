package lifecycle

import (
	"donationhub/internal/models"
)

// Actor is the authenticated party requesting a transition.
type Actor struct {
	ID   string
	Name string
	Role models.Role
}

// Event is a request to move a posting. The set of implementations is closed.
type Event interface {
	Name() string
	isEvent()
}

type ClaimPosting struct {
	Address *models.Address
}

type ExpressInterest struct{}

type UploadPickupEvidence struct {
	ImageURL string
	Location *models.Coordinate
}

type ApprovePickup struct{}

type RejectPickup struct{}

type UploadDeliveryEvidence struct {
	ImageURL string
}

type ApproveDelivery struct{}

type RejectDelivery struct{}

type Cancel struct{}

// UpdateLocation moves the volunteer marker without changing status.
type UpdateLocation struct {
	Location models.Coordinate
}

func (ClaimPosting) Name() string           { return "claim" }
func (ExpressInterest) Name() string        { return "express_interest" }
func (UploadPickupEvidence) Name() string   { return "upload_pickup_evidence" }
func (ApprovePickup) Name() string          { return "approve_pickup" }
func (RejectPickup) Name() string           { return "reject_pickup" }
func (UploadDeliveryEvidence) Name() string { return "upload_delivery_evidence" }
func (ApproveDelivery) Name() string        { return "approve_delivery" }
func (RejectDelivery) Name() string         { return "reject_delivery" }
func (Cancel) Name() string                 { return "cancel" }
func (UpdateLocation) Name() string         { return "update_location" }

func (ClaimPosting) isEvent()           {}
func (ExpressInterest) isEvent()        {}
func (UploadPickupEvidence) isEvent()   {}
func (ApprovePickup) isEvent()          {}
func (RejectPickup) isEvent()           {}
func (UploadDeliveryEvidence) isEvent() {}
func (ApproveDelivery) isEvent()        {}
func (RejectDelivery) isEvent()         {}
func (Cancel) isEvent()                 {}
func (UpdateLocation) isEvent()         {}
