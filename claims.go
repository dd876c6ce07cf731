package identity

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed assertion bound into a session token. It
// carries the account id and email the way downstream consumers expect them.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// AccountID returns the account id claim.
func (c *SessionClaims) AccountID() string {
	return c.UserID
}
