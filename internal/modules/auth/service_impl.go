package auth

import (
	"context"
	"errors"
	"time"

	"github.com/apotekcare/apotek-backend/internal/modules/user"
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 24 * time.Hour
)

// ErrInvalidCredentials is returned for a bad email/password pair and for
// refresh tokens that are expired, malformed, or no longer current.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims carried by access tokens. Role lets the middleware gate admin
// routes without a user lookup per request.
type Claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

type service struct {
	userRepo      user.Repository
	accessSecret  []byte
	refreshSecret []byte
}

// NewService creates a new auth service.
func NewService(userRepo user.Repository, accessSecret, refreshSecret []byte) Service {
	return &service{
		userRepo:      userRepo,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return nil, errors.New("email, username and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hashedPassword),
		ProfileImage: req.ProfileImage,
		Role:         user.RoleCustomer,
	}
	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*Credentials, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	u, err := s.redeem(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	u, err := s.redeem(ctx, refreshToken)
	if err != nil {
		return err
	}
	return s.userRepo.SetRefreshToken(ctx, u.ID.String(), "")
}

// issue signs a new access/refresh pair and persists the refresh token,
// replacing whatever was stored before (rotation).
func (s *service) issue(ctx context.Context, u *user.User) (*Credentials, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: string(u.Role),
		StandardClaims: jwt.StandardClaims{
			Subject:   u.ID.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(accessTokenTTL).Unix(),
		},
	})
	accessToken, err := access.SignedString(s.accessSecret)
	if err != nil {
		return nil, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.StandardClaims{
		Subject:   u.ID.String(),
		Id:        uuid.NewString(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(refreshTokenTTL).Unix(),
	})
	refreshToken, err := refresh.SignedString(s.refreshSecret)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetRefreshToken(ctx, u.ID.String(), refreshToken); err != nil {
		return nil, err
	}

	return &Credentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         u,
	}, nil
}

// redeem resolves a refresh token to its user, rejecting tokens that do not
// match the stored value (rotated out or cleared by logout).
func (s *service) redeem(ctx context.Context, refreshToken string) (*user.User, error) {
	if refreshToken == "" {
		return nil, ErrInvalidCredentials
	}
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.refreshSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}

	u, err := s.userRepo.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.RefreshToken == "" || u.RefreshToken != refreshToken {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
