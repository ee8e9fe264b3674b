package part

import "time"

// IFS part categories.
const (
	CategoryManager     = "manager"
	CategoryFirefighter = "firefighter"
	CategoryExile       = "exile"
	CategorySelf        = "self"
)

// ValidCategory reports whether c is a known part category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryManager, CategoryFirefighter, CategoryExile, CategorySelf:
		return true
	}
	return false
}

// Part is an internal-family-systems part mapped by a client, optionally
// together with their therapist.
type Part struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Emotions    []string  `json:"emotions,omitempty"`
	Needs       []string  `json:"needs,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
