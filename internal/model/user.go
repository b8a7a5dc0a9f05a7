package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User mirrors a row of the `users` table.  Admin accounts are never
// charged for generations and are reported with UnlimitedCredits set.
type User struct {
	ID               uint64     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Credits          int64      `json:"credits"`
	UnlimitedCredits bool       `json:"unlimited_credits"`
	Role             string     `json:"role"`
	Avatar           *string    `json:"avatar,omitempty"`
	Favorites        []Favorite `json:"favorites,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the account bypasses credit checks.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
