package domain

import "time"

// User is the authenticated shopper's profile.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// IsAdmin reports whether the user may manage the catalog.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// AuthResult is the payload returned by signup, login and password change.
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
