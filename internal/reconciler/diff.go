package reconciler

import (
	"time"

	"donationhub/internal/models"
)

// Snapshot is one poll's view of the client's postings and unread notifications.
type Snapshot struct {
	Postings      []*models.Posting
	Notifications []*models.Notification
	FetchedAt     time.Time
}

// Prompt is the blocking "review this evidence" dialog shown to a donor.
type Prompt struct {
	PostingID string
	Name      string
	Status    models.PostingStatus
}

type StatusChange struct {
	PostingID string
	Name      string
	From      models.PostingStatus
	To        models.PostingStatus
}

// Delta is what changed between two consecutive snapshots.
type Delta struct {
	// Prompt is the current verification prompt, nil when nothing awaits review.
	Prompt        *Prompt
	PromptChanged bool

	StatusChanges    []StatusChange
	Added            []string
	Removed          []string
	NewNotifications []*models.Notification
}

func (d Delta) Empty() bool {
	return !d.PromptChanged &&
		len(d.StatusChanges) == 0 &&
		len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.NewNotifications) == 0
}

// PendingVerification returns the first posting owned by donorID that is waiting
// for the donor to review pickup or delivery evidence.
func PendingVerification(postings []*models.Posting, donorID string) *Prompt {
	if donorID == "" {
		return nil
	}
	for _, p := range postings {
		if p.DonorID == donorID && p.Status.AwaitsDonorVerification() {
			return &Prompt{PostingID: p.ID, Name: p.Name, Status: p.Status}
		}
	}
	return nil
}

// Diff compares two snapshots. It is pure; prev may be the zero Snapshot on the
// first poll, in which case every posting is Added and every notification new.
func Diff(prev, next Snapshot, donorID string) Delta {
	var d Delta

	before := make(map[string]*models.Posting, len(prev.Postings))
	for _, p := range prev.Postings {
		before[p.ID] = p
	}

	seen := make(map[string]bool, len(next.Postings))
	for _, p := range next.Postings {
		seen[p.ID] = true
		old, ok := before[p.ID]
		if !ok {
			d.Added = append(d.Added, p.ID)
			continue
		}
		if old.Status != p.Status {
			d.StatusChanges = append(d.StatusChanges, StatusChange{
				PostingID: p.ID,
				Name:      p.Name,
				From:      old.Status,
				To:        p.Status,
			})
		}
	}
	for _, p := range prev.Postings {
		if !seen[p.ID] {
			d.Removed = append(d.Removed, p.ID)
		}
	}

	known := make(map[string]bool, len(prev.Notifications))
	for _, n := range prev.Notifications {
		known[n.ID] = true
	}
	for _, n := range next.Notifications {
		if !known[n.ID] {
			d.NewNotifications = append(d.NewNotifications, n)
		}
	}

	oldPrompt := PendingVerification(prev.Postings, donorID)
	d.Prompt = PendingVerification(next.Postings, donorID)
	d.PromptChanged = !samePrompt(oldPrompt, d.Prompt)

	return d
}

func samePrompt(a, b *Prompt) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
