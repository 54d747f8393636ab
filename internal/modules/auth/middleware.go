package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/apotekcare/apotek-backend/internal/modules/user"
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

type contextKey string

const (
	callerIDKey   contextKey = "caller_id"
	callerRoleKey contextKey = "caller_role"
)

// CallerID returns the authenticated user's id from the request context.
func CallerID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(callerIDKey).(uuid.UUID)
	return id, ok
}

// CallerRole returns the authenticated user's role from the request context.
func CallerRole(ctx context.Context) user.Role {
	role, _ := ctx.Value(callerRoleKey).(user.Role)
	return role
}

// Middleware verifies access tokens and gates admin-only routes.
type Middleware struct {
	accessSecret []byte
}

func NewMiddleware(accessSecret []byte) *Middleware {
	return &Middleware{accessSecret: accessSecret}
}

// RequireAuth parses the Bearer access token and injects the caller's id and
// role into the request context. 401 on a missing or invalid token.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing access token", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return m.accessSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "invalid access token", http.StatusUnauthorized)
			return
		}

		callerID, err := uuid.Parse(claims.Subject)
		if err != nil {
			http.Error(w, "invalid access token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), callerIDKey, callerID)
		ctx = context.WithValue(ctx, callerRoleKey, user.Role(claims.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects non-admin callers. Must be mounted after RequireAuth.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CallerRole(r.Context()) != user.RoleAdmin {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
