package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserAuth represents the core user entity in the domain.
type UserAuth struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // Hashed password (never exposed).
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Claims represents the custom claims included in the JWT access token.
type Claims struct {
	UserID               string `json:"uid"`
	Username             string `json:"usr,omitempty"`
	Email                string `json:"eml"`
	jwt.RegisteredClaims
}
