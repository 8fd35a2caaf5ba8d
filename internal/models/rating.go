package models

import (
	"time"
)

// Rating is embedded in the posting it was given for. A rater rates at most once per posting.
type Rating struct {
	RaterID   string    `json:"rater_id" bson:"rater_id" firestore:"raterId" validate:"required"`
	RaterRole Role      `json:"rater_role" bson:"rater_role" firestore:"raterRole" validate:"required,role"`
	TargetID  string    `json:"target_id" bson:"target_id" firestore:"targetId" validate:"required"`
	Rating    int       `json:"rating" bson:"rating" firestore:"rating" validate:"required,rating_value"`
	Feedback  string    `json:"feedback" bson:"feedback" firestore:"feedback" validate:"max=1000"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" firestore:"createdAt"`
}

type RatingRequest struct {
	TargetID string `json:"target_id" validate:"required"`
	Rating   int    `json:"rating" validate:"required,rating_value"`
	Feedback string `json:"feedback" validate:"max=1000"`
}

// RatingResult describes the outcome of the composite rating operation. UserStatsUpdated is
// false when the posting write succeeded but the target's aggregate is still pending.
type RatingResult struct {
	Posting          *Posting `json:"posting"`
	Target           *User    `json:"target,omitempty"`
	UserStatsUpdated bool     `json:"user_stats_updated"`
}
