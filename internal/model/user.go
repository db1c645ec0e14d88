package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Users are created by the auth flow and only referenced by the
// social and booking features.
type User struct {
	ID           string    // users.id
	Email        string    // users.email
	DisplayName  string    // users.display_name
	PhotoURL     string    // users.photo_url
	PasswordHash string    // users.password_hash
	Role         string    // users.role (CUSTOMER or ADMIN)
	CreatedAt    time.Time // users.created_at
}

// PublicProfile is the subset of a user that friends may see.
type PublicProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL"`
}

// Profile returns the public fields of u.
func (u User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, DisplayName: u.DisplayName, Email: u.Email, PhotoURL: u.PhotoURL}
}

// Label is the name shown to other users: display name, then email, then a
// generic fallback.
func (p PublicProfile) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if p.Email != "" {
		return p.Email
	}
	return "Someone"
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        string     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
