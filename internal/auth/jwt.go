// Package auth validates access tokens issued by the external auth
// service. Token issuance, refresh, and account management are not this
// service's concern.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jaqb8/lingocheck/internal/domain"
)

// Validator verifies HS256 access tokens and extracts the caller identity.
type Validator struct {
	secret []byte
	issuer string
}

// NewValidator creates a Validator.
// secret must be at least 32 characters for HS256 security.
func NewValidator(secret, issuer string) *Validator {
	return &Validator{secret: []byte(secret), issuer: issuer}
}

// accessClaims extends standard JWT claims with the user's email.
type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// ValidateAccessToken parses and validates a JWT access token.
// Returns the caller identity if valid.
func (v *Validator) ValidateAccessToken(tokenString string) (domain.User, error) {
	if tokenString == "" {
		return domain.User{}, fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return domain.User{}, fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != v.issuer {
		return domain.User{}, fmt.Errorf("invalid issuer: expected %s, got %s", v.issuer, claims.Issuer)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.User{}, fmt.Errorf("invalid subject UUID: %w", err)
	}

	return domain.User{ID: userID, Email: claims.Email}, nil
}

// SignAccessToken creates a signed token for the given identity.
// Only tests and local tooling use it; production tokens come from the
// external auth service with the same secret and issuer.
func (v *Validator) SignAccessToken(user domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    v.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
