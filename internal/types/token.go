package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a bearer token issued by the identity provider.
// The subject claim is the opaque user identifier that scopes every meal.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// UserID returns the subject claim.
func (c *TokenClaims) UserID() string {
	return c.Subject
}
