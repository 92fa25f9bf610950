package domain

import "time"

// User represents a user of the application in the domain.
type User struct {
	UserID       string    `json:"userID"` // Primary Key (UUID)
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`

	// Refresh token state, hashed at rest.
	RefreshTokenHash   *string    `json:"-"`
	RefreshTokenExpiry *time.Time `json:"-"`
}
