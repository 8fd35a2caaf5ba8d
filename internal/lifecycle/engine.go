package lifecycle

import (
	"fmt"
	"time"

	"donationhub/internal/apperrors"
	"donationhub/internal/models"
)

// Document field names touched by transitions.
const (
	FieldStatus                  = "status"
	FieldUpdatedAt               = "updated_at"
	FieldOrphanageID             = "orphanage_id"
	FieldOrphanageName           = "orphanage_name"
	FieldRequesterAddress        = "requester_address"
	FieldVolunteerID             = "volunteer_id"
	FieldVolunteerName           = "volunteer_name"
	FieldVolunteerLocation       = "volunteer_location"
	FieldPickupVerificationImage = "pickup_verification_image"
	FieldVerificationImage       = "verification_image"
	FieldInterestedVolunteers    = "interested_volunteers"
)

// Patch is a store-neutral description of a partial update.
type Patch struct {
	Set      map[string]interface{}
	Unset    []string
	AddToSet map[string]interface{}
}

// Transition is the result of applying an event. It must be committed with a
// compare-and-set on (posting ID, From).
type Transition struct {
	Event   string
	From    models.PostingStatus
	To      models.PostingStatus
	Next    State
	Posting *models.Posting
	Patch   Patch
	Delete  bool
}

func (t *Transition) StatusChanged() bool {
	return !t.Delete && t.From != t.To
}

// Apply validates ev against the posting's current state and the actor's role, and
// returns the resulting transition. It performs no I/O and never mutates p.
func Apply(p *models.Posting, actor Actor, ev Event, now time.Time) (*Transition, error) {
	if err := authorizeRole(p, actor, ev); err != nil {
		return nil, err
	}

	current, err := Decode(p)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	switch e := ev.(type) {
	case ClaimPosting:
		if _, ok := current.(Available); !ok {
			return nil, invalid(current, ev, models.PostingStatusRequested, "This item has already been requested by another organization")
		}
		next := Requested{Claim: Claim{RequesterID: actor.ID, RequesterName: actor.Name, Address: e.Address}}
		return advance(p, current, next, ev, now), nil

	case ExpressInterest:
		switch current.(type) {
		case Available, Requested:
		default:
			return nil, invalid(current, ev, current.Status(), "This item already has a volunteer")
		}
		if p.IsInterested(actor.ID) {
			return nil, apperrors.NewDuplicateAction("You have already expressed interest in this item")
		}
		next := clonePosting(p)
		next.InterestedVolunteers = append(next.InterestedVolunteers, actor.ID)
		next.UpdatedAt = now
		return &Transition{
			Event:   ev.Name(),
			From:    current.Status(),
			To:      current.Status(),
			Next:    current,
			Posting: next,
			Patch: Patch{
				Set:      map[string]interface{}{FieldUpdatedAt: now},
				AddToSet: map[string]interface{}{FieldInterestedVolunteers: actor.ID},
			},
		}, nil

	case UploadPickupEvidence:
		var st Requested
		switch s := current.(type) {
		case Requested:
			st = s
		case Available:
			return nil, invalid(current, ev, models.PostingStatusPickupVerificationPending, "This item has not been requested yet")
		default:
			if courierOf(current) == actor.ID {
				return nil, invalid(current, ev, models.PostingStatusPickupVerificationPending, "Pickup evidence has already been submitted")
			}
			return nil, invalid(current, ev, models.PostingStatusPickupVerificationPending, "This item was already picked up by another volunteer")
		}
		if e.ImageURL == "" {
			return nil, apperrors.NewValidation("a pickup evidence image is required")
		}
		next := PickupPending{
			Claim:       st.Claim,
			Courier:     Courier{VolunteerID: actor.ID, VolunteerName: actor.Name, Location: e.Location},
			PickupImage: e.ImageURL,
		}
		return advance(p, current, next, ev, now), nil

	case ApprovePickup:
		st, ok := current.(PickupPending)
		if !ok {
			return nil, invalid(current, ev, models.PostingStatusInTransit, "There is no pickup evidence awaiting review")
		}
		next := InTransit{Claim: st.Claim, Courier: st.Courier, PickupImage: st.PickupImage}
		return advance(p, current, next, ev, now), nil

	case RejectPickup:
		st, ok := current.(PickupPending)
		if !ok {
			return nil, invalid(current, ev, models.PostingStatusRequested, "There is no pickup evidence awaiting review")
		}
		return advance(p, current, Requested{Claim: st.Claim}, ev, now), nil

	case UploadDeliveryEvidence:
		st, ok := current.(InTransit)
		if !ok {
			switch current.(type) {
			case DeliveryPending, Delivered:
				return nil, invalid(current, ev, models.PostingStatusDeliveryVerificationPending, "Delivery evidence has already been submitted")
			}
			return nil, invalid(current, ev, models.PostingStatusDeliveryVerificationPending, "This item is not in transit")
		}
		if actor.ID != st.Courier.VolunteerID && actor.ID != st.Claim.RequesterID {
			return nil, apperrors.NewForbidden("only the assigned volunteer or the requester can submit delivery evidence")
		}
		if e.ImageURL == "" {
			return nil, apperrors.NewValidation("a delivery evidence image is required")
		}
		next := DeliveryPending{Claim: st.Claim, Courier: st.Courier, PickupImage: st.PickupImage, DeliveryImage: e.ImageURL}
		return advance(p, current, next, ev, now), nil

	case ApproveDelivery:
		st, ok := current.(DeliveryPending)
		if !ok {
			return nil, invalid(current, ev, models.PostingStatusDelivered, "There is no delivery evidence awaiting review")
		}
		next := Delivered{Claim: st.Claim, Courier: st.Courier, PickupImage: st.PickupImage, DeliveryImage: st.DeliveryImage}
		return advance(p, current, next, ev, now), nil

	case RejectDelivery:
		st, ok := current.(DeliveryPending)
		if !ok {
			return nil, invalid(current, ev, models.PostingStatusInTransit, "There is no delivery evidence awaiting review")
		}
		next := InTransit{Claim: st.Claim, Courier: st.Courier, PickupImage: st.PickupImage}
		return advance(p, current, next, ev, now), nil

	case Cancel:
		switch current.(type) {
		case Available, Requested:
		default:
			return nil, invalid(current, ev, "", "This item can no longer be cancelled because a volunteer has picked it up")
		}
		return &Transition{
			Event:  ev.Name(),
			From:   current.Status(),
			To:     current.Status(),
			Delete: true,
		}, nil

	case UpdateLocation:
		if !current.Status().IsTransporting() {
			return nil, invalid(current, ev, current.Status(), "Location updates are only accepted while the item is in transit")
		}
		if courierOf(current) != actor.ID {
			return nil, apperrors.NewForbidden("only the assigned volunteer can update the location")
		}
		loc := e.Location
		next := clonePosting(p)
		next.VolunteerLocation = &loc
		next.UpdatedAt = now
		return &Transition{
			Event:   ev.Name(),
			From:    current.Status(),
			To:      current.Status(),
			Next:    current,
			Posting: next,
			Patch: Patch{
				Set: map[string]interface{}{FieldVolunteerLocation: loc, FieldUpdatedAt: now},
			},
		}, nil
	}

	return nil, apperrors.NewValidation(fmt.Sprintf("unsupported event %T", ev))
}

// authorizeRole checks which role may trigger which event, and ownership for donor events.
func authorizeRole(p *models.Posting, actor Actor, ev Event) error {
	var allowed []models.Role
	ownerOnly := false

	switch ev.(type) {
	case ClaimPosting:
		allowed = []models.Role{models.RoleRequester}
	case ExpressInterest, UploadPickupEvidence, UpdateLocation:
		allowed = []models.Role{models.RoleVolunteer}
	case UploadDeliveryEvidence:
		allowed = []models.Role{models.RoleVolunteer, models.RoleRequester}
	case ApprovePickup, RejectPickup, ApproveDelivery, RejectDelivery, Cancel:
		allowed = []models.Role{models.RoleDonor}
		ownerOnly = true
	default:
		return apperrors.NewValidation(fmt.Sprintf("unsupported event %T", ev))
	}

	permitted := false
	for _, r := range allowed {
		if actor.Role == r {
			permitted = true
			break
		}
	}
	if !permitted {
		return apperrors.NewForbidden(fmt.Sprintf("a %s cannot %s", actor.Role, ev.Name()))
	}

	if ownerOnly && actor.ID != p.DonorID {
		return apperrors.NewForbidden("only the donor who created this item can " + ev.Name())
	}

	return nil
}

func advance(p *models.Posting, from, to State, ev Event, now time.Time) *Transition {
	next := Encode(p, to)
	next.UpdatedAt = now

	return &Transition{
		Event:   ev.Name(),
		From:    from.Status(),
		To:      to.Status(),
		Next:    to,
		Posting: next,
		Patch:   statusPatch(next, now),
	}
}

// statusPatch sets every status-gated field p carries and unsets the rest.
func statusPatch(p *models.Posting, now time.Time) Patch {
	patch := Patch{
		Set: map[string]interface{}{
			FieldStatus:    p.Status,
			FieldUpdatedAt: now,
		},
	}

	setOrUnset := func(field string, present bool, value interface{}) {
		if present {
			patch.Set[field] = value
		} else {
			patch.Unset = append(patch.Unset, field)
		}
	}

	setOrUnset(FieldOrphanageID, p.OrphanageID != "", p.OrphanageID)
	setOrUnset(FieldOrphanageName, p.OrphanageName != "", p.OrphanageName)
	setOrUnset(FieldRequesterAddress, p.RequesterAddress != nil, p.RequesterAddress)
	setOrUnset(FieldVolunteerID, p.VolunteerID != "", p.VolunteerID)
	setOrUnset(FieldVolunteerName, p.VolunteerName != "", p.VolunteerName)
	setOrUnset(FieldVolunteerLocation, p.VolunteerLocation != nil, p.VolunteerLocation)
	setOrUnset(FieldPickupVerificationImage, p.PickupVerificationImage != "", p.PickupVerificationImage)
	setOrUnset(FieldVerificationImage, p.VerificationImage != "", p.VerificationImage)

	return patch
}

func courierOf(s State) string {
	switch st := s.(type) {
	case PickupPending:
		return st.Courier.VolunteerID
	case InTransit:
		return st.Courier.VolunteerID
	case DeliveryPending:
		return st.Courier.VolunteerID
	case Delivered:
		return st.Courier.VolunteerID
	}
	return ""
}

func invalid(current State, ev Event, to models.PostingStatus, message string) error {
	err := apperrors.NewInvalidTransition(string(current.Status()), string(to), message)
	if to == "" {
		err.To = ev.Name()
	}
	return err
}
