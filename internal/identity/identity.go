// Package identity issues and verifies session tokens and normalizes the
// user-facing parts of a profile.
package identity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
)

// Display name bounds, in characters.
const (
	MinDisplayNameLength = 3
	MaxDisplayNameLength = 20
)

var (
	// ErrInvalidToken is returned for malformed or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrEmptyDisplayName is returned when no display name was supplied.
	ErrEmptyDisplayName = errors.New("display name cannot be empty")

	// ErrDisplayNameLength is returned when a display name is out of bounds.
	ErrDisplayNameLength = fmt.Errorf("display name must be between %d and %d characters", MinDisplayNameLength, MaxDisplayNameLength)
)

// Claims carries the authenticated user in a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"uid"`
	DisplayName string `json:"name,omitempty"`
}

// GenerateToken signs an HS256 token for the user valid for ttl.
func GenerateToken(userID, displayName string, secret []byte, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("signing secret is required")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:      userID,
		DisplayName: displayName,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns its claims.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// NormalizeDisplayName trims surrounding whitespace and checks the length bounds.
func NormalizeDisplayName(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyDisplayName
	}
	normalized := strings.TrimSpace(name)
	n := utf8.RuneCountInString(normalized)
	if n < MinDisplayNameLength || n > MaxDisplayNameLength {
		return "", ErrDisplayNameLength
	}
	return normalized, nil
}

// HashSubject returns the hex BLAKE2b-256 digest of an identity provider
// subject. Only the digest is stored.
func HashSubject(subject string) string {
	sum := blake2b.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:])
}
