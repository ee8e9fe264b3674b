package user

import "time"

// User is a registered account. Credential handling lives upstream; this
// service only stores profile data keyed by the externally verified id.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
