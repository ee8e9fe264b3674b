package journal

import "time"

// Entry is a private journal entry, optionally linked to mapped parts.
type Entry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	PartIDs   []string  `json:"partIds,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
