package lifecycle

import (
	"fmt"

	"donationhub/internal/models"
)

// State is a posting's lifecycle position together with exactly the data valid there.
// The set of implementations is closed.
type State interface {
	Status() models.PostingStatus
	isState()
}

// Claim identifies the requester a posting is promised to.
type Claim struct {
	RequesterID   string
	RequesterName string
	Address       *models.Address
}

// Courier identifies the volunteer carrying the goods.
type Courier struct {
	VolunteerID   string
	VolunteerName string
	Location      *models.Coordinate
}

type Available struct{}

type Requested struct {
	Claim Claim
}

type PickupPending struct {
	Claim       Claim
	Courier     Courier
	PickupImage string
}

type InTransit struct {
	Claim       Claim
	Courier     Courier
	PickupImage string
}

type DeliveryPending struct {
	Claim         Claim
	Courier       Courier
	PickupImage   string
	DeliveryImage string
}

type Delivered struct {
	Claim         Claim
	Courier       Courier
	PickupImage   string
	DeliveryImage string
}

func (Available) Status() models.PostingStatus       { return models.PostingStatusAvailable }
func (Requested) Status() models.PostingStatus       { return models.PostingStatusRequested }
func (PickupPending) Status() models.PostingStatus   { return models.PostingStatusPickupVerificationPending }
func (InTransit) Status() models.PostingStatus       { return models.PostingStatusInTransit }
func (DeliveryPending) Status() models.PostingStatus { return models.PostingStatusDeliveryVerificationPending }
func (Delivered) Status() models.PostingStatus       { return models.PostingStatusDelivered }

func (Available) isState()       {}
func (Requested) isState()       {}
func (PickupPending) isState()   {}
func (InTransit) isState()       {}
func (DeliveryPending) isState() {}
func (Delivered) isState()       {}

// CorruptPostingError reports a stored posting whose fields contradict its status.
type CorruptPostingError struct {
	PostingID string
	Status    models.PostingStatus
	Reason    string
}

func (e *CorruptPostingError) Error() string {
	return fmt.Sprintf("posting %s in status %s is inconsistent: %s", e.PostingID, e.Status, e.Reason)
}

// Decode reads the lifecycle state out of a stored posting and rejects records
// whose status-gated fields do not match their status.
func Decode(p *models.Posting) (State, error) {
	corrupt := func(reason string) error {
		return &CorruptPostingError{PostingID: p.ID, Status: p.Status, Reason: reason}
	}

	if len(p.Ratings) > 0 && p.Status != models.PostingStatusDelivered {
		return nil, corrupt("ratings present before delivery")
	}

	hasClaim := p.OrphanageID != ""
	hasCourier := p.VolunteerID != ""
	hasPickup := p.PickupVerificationImage != ""
	hasDelivery := p.VerificationImage != ""

	claim := Claim{RequesterID: p.OrphanageID, RequesterName: p.OrphanageName, Address: p.RequesterAddress}
	courier := Courier{VolunteerID: p.VolunteerID, VolunteerName: p.VolunteerName, Location: p.VolunteerLocation}

	switch p.Status {
	case models.PostingStatusAvailable:
		if hasClaim || hasCourier {
			return nil, corrupt("available posting has a requester or volunteer")
		}
		if hasPickup || hasDelivery {
			return nil, corrupt("available posting has verification images")
		}
		return Available{}, nil

	case models.PostingStatusRequested:
		if !hasClaim {
			return nil, corrupt("requested posting has no requester")
		}
		if hasCourier {
			return nil, corrupt("requested posting has a volunteer")
		}
		if hasPickup || hasDelivery {
			return nil, corrupt("requested posting has verification images")
		}
		return Requested{Claim: claim}, nil

	case models.PostingStatusPickupVerificationPending, models.PostingStatusInTransit:
		if !hasClaim || !hasCourier {
			return nil, corrupt("posting in pickup has no requester or volunteer")
		}
		if hasDelivery {
			return nil, corrupt("delivery image present before delivery evidence")
		}
		if p.Status == models.PostingStatusInTransit {
			return InTransit{Claim: claim, Courier: courier, PickupImage: p.PickupVerificationImage}, nil
		}
		return PickupPending{Claim: claim, Courier: courier, PickupImage: p.PickupVerificationImage}, nil

	case models.PostingStatusDeliveryVerificationPending, models.PostingStatusDelivered:
		if !hasClaim || !hasCourier {
			return nil, corrupt("posting in delivery has no requester or volunteer")
		}
		if p.Status == models.PostingStatusDelivered {
			return Delivered{Claim: claim, Courier: courier, PickupImage: p.PickupVerificationImage, DeliveryImage: p.VerificationImage}, nil
		}
		return DeliveryPending{Claim: claim, Courier: courier, PickupImage: p.PickupVerificationImage, DeliveryImage: p.VerificationImage}, nil
	}

	return nil, corrupt("unknown status")
}

// Encode writes a state's status-gated fields onto a copy of the posting.
// Fields the state does not carry are cleared.
func Encode(base *models.Posting, s State) *models.Posting {
	p := clonePosting(base)
	p.Status = s.Status()

	var claim *Claim
	var courier *Courier
	pickup, delivery := "", ""

	switch st := s.(type) {
	case Available:
	case Requested:
		claim = &st.Claim
	case PickupPending:
		claim, courier, pickup = &st.Claim, &st.Courier, st.PickupImage
	case InTransit:
		claim, courier, pickup = &st.Claim, &st.Courier, st.PickupImage
	case DeliveryPending:
		claim, courier, pickup, delivery = &st.Claim, &st.Courier, st.PickupImage, st.DeliveryImage
	case Delivered:
		claim, courier, pickup, delivery = &st.Claim, &st.Courier, st.PickupImage, st.DeliveryImage
	}

	p.OrphanageID, p.OrphanageName, p.RequesterAddress = "", "", nil
	if claim != nil {
		p.OrphanageID = claim.RequesterID
		p.OrphanageName = claim.RequesterName
		p.RequesterAddress = claim.Address
	}

	p.VolunteerID, p.VolunteerName, p.VolunteerLocation = "", "", nil
	if courier != nil {
		p.VolunteerID = courier.VolunteerID
		p.VolunteerName = courier.VolunteerName
		p.VolunteerLocation = courier.Location
	}

	p.PickupVerificationImage = pickup
	p.VerificationImage = delivery

	return p
}

func clonePosting(p *models.Posting) *models.Posting {
	c := *p
	if p.Tags != nil {
		c.Tags = append([]string(nil), p.Tags...)
	}
	if p.InterestedVolunteers != nil {
		c.InterestedVolunteers = append([]string(nil), p.InterestedVolunteers...)
	}
	if p.Ratings != nil {
		c.Ratings = append([]models.Rating(nil), p.Ratings...)
	}
	return &c
}
