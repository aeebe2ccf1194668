package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IsJWT reports whether a token has the three dot separated segments of a JWT.
// Opaque API keys are sent as-is and never inspected.
func IsJWT(token string) bool {
	return strings.Count(token, ".") == 2
}

// ParseClaims decodes the claims of a JWT without verifying its signature.
// The server verifies the token; the client only reads expiry and subject.
func ParseClaims(token string) (jwt.MapClaims, error) {
	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse API token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("failed to parse JWT claims")
	}

	return claims, nil
}

// ValidateToken checks that a JWT API token has not expired.
// Tokens without an exp claim and opaque tokens are accepted.
func ValidateToken(token string) error {
	if !IsJWT(token) {
		return nil
	}

	claims, err := ParseClaims(token)
	if err != nil {
		return err
	}

	if exp, ok := claims["exp"].(float64); ok {
		expirationTime := time.Unix(int64(exp), 0)
		if time.Now().After(expirationTime) {
			return fmt.Errorf("API token expired at %s. Please set a new one with 'harvester config set api-token <token>'", expirationTime.Format(time.RFC3339))
		}
	}

	return nil
}

// Subject returns the sub claim of a JWT API token, or "" when unavailable.
func Subject(token string) string {
	if !IsJWT(token) {
		return ""
	}

	claims, err := ParseClaims(token)
	if err != nil {
		return ""
	}

	sub, _ := claims["sub"].(string)
	return sub
}
