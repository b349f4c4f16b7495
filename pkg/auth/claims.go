package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityPayload captures the data available when minting an identity token.
type IdentityPayload struct {
	UserID        string
	Email         string
	EmailVerified bool
	JTI           string
}

// IdentityClaims is the JWT issued by the auth provider. The subject is the user id.
type IdentityClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// User is the authenticated caller as seen by the storefront.
type User struct {
	ID            string
	Email         string
	EmailVerified bool
	TokenID       string
	ExpiresAt     time.Time
	// Token is the raw bearer token, forwarded to the commerce API.
	Token string
}

// User converts validated claims into the caller representation.
func (c *IdentityClaims) User(rawToken string) *User {
	if c == nil {
		return nil
	}
	user := &User{
		ID:            c.Subject,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		TokenID:       c.ID,
		Token:         rawToken,
	}
	if c.ExpiresAt != nil {
		user.ExpiresAt = c.ExpiresAt.Time
	}
	return user
}
