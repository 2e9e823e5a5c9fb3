package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// devTokenTTL matches the cookie lifetime so the token and the cookie
// expire together.
const devTokenTTL = 8 * time.Hour

// devClaims is the payload of locally-minted dev-mode tokens.
type devClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// MintDevToken creates a short-lived HS256 token for non-production
// logins, signed with the shared secret. Stands in for the token the
// authentication upstream would issue.
func MintDevToken(email string, secret []byte) (string, error) {
	claims := devClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(devTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "portal-bff-dev",
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign dev token: %w", err)
	}
	return signed, nil
}
