package wellness

import "time"

// Activity is a logged self-care or homework activity.
type Activity struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Kind       string    `json:"kind"`
	Notes      string    `json:"notes,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// GroundingProgress tracks how far a user has advanced through a grounding
// technique. One row per (user, technique).
type GroundingProgress struct {
	UserID    string    `json:"userId"`
	Technique string    `json:"technique"`
	Step      int       `json:"step"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CheckIn is an anxiety check-in on a 1..10 scale.
type CheckIn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Level     int       `json:"level"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
