package user

import "context"

// Repository defines data access for user accounts.
type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)

	// SetRefreshToken stores the user's current refresh token; an empty
	// token clears it (logout).
	SetRefreshToken(ctx context.Context, id string, token string) error
}
