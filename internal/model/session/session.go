package session

import "time"

// Role identifies which side of a therapeutic engagement a user is on.
type Role string

const (
	RoleTherapist Role = "therapist"
	RoleClient    Role = "client"
)

// Valid reports whether the role is one of the two supported roles.
func (r Role) Valid() bool {
	return r == RoleTherapist || r == RoleClient
}

// Status values a session moves through. The realtime layer never mutates
// status; only the REST surface does.
const (
	StatusScheduled = "scheduled"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is a known session status.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Session is a therapeutic engagement between one therapist and one client.
type Session struct {
	ID          string    `json:"id"`
	TherapistID string    `json:"therapistId"`
	ClientID    string    `json:"clientId"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
