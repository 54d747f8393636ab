package auth

import (
	"context"

	"github.com/apotekcare/apotek-backend/internal/modules/user"
)

// Credentials returned by a successful login or refresh. The refresh token
// travels as an httpOnly cookie, the access token in the response body.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	User         *user.User
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// Service defines the interface for authentication-related business logic.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*user.User, error)
	Login(ctx context.Context, email, password string) (*Credentials, error)

	// Refresh validates the presented refresh token against the one stored
	// on the user row, rotates it, and issues a fresh access token.
	Refresh(ctx context.Context, refreshToken string) (*Credentials, error)

	// Logout clears the stored refresh token so the cookie can no longer
	// be redeemed.
	Logout(ctx context.Context, refreshToken string) error
}
