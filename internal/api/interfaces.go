package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	errorvalues "github.com/limbo/habitstreak/internal/error_values"
	"github.com/limbo/habitstreak/pkg/entity"
)

// JWTServiceI issues and verifies the bearer tokens AuthMiddleware accepts.
type JWTServiceI interface {
	GenerateToken(user *entity.User) (string, error)
	ParseToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims identifies the owner of the habits a request may touch.
type JWTClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// UID returns the user the token was issued for.
func (c *JWTClaims) UID() (uuid.UUID, error) {
	uid, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, errorvalues.ErrInvalidToken
	}
	return uid, nil
}

// ActiveAt reports whether the token may be used at t. Tokens without an
// expiry are never accepted.
func (c *JWTClaims) ActiveAt(t time.Time) bool {
	if c.ExpiresAt == nil || c.ExpiresAt.Time.Before(t) {
		return false
	}
	return c.NotBefore == nil || !c.NotBefore.Time.After(t)
}
