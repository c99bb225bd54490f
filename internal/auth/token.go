// Package auth provides session tokens, the auth middleware, and the
// Google OAuth provider.
//
// SESSION FLOW:
// 1. The user signs in with Google (or enters demo mode at /auth/demo)
// 2. The server issues a JWT carrying the full identity, stored in an
//    HttpOnly cookie
// 3. Middleware reads the cookie on each request, validates the JWT, and
//    puts the identity in the request context
//
// The token carries the identity fields themselves, not just a user id:
// demo sessions have no database row to look up, so the identity must be
// self-contained either way.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/memeforge/internal/model"
)

const issuer = "memeforge"

// TokenService signs and validates session JWTs with an HMAC secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// Generate one with: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type claims struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
	PhotoURL    string `json:"picture,omitempty"`
	Kind        string `json:"kind"`
	jwt.RegisteredClaims
}

// Generate creates a signed session token for the identity, valid for 24
// hours.
func (s *TokenService) Generate(identity model.Identity) (string, error) {
	return s.GenerateWithDuration(identity, 24*time.Hour)
}

// GenerateWithDuration creates a token with a custom expiry. Used in tests.
func (s *TokenService) GenerateWithDuration(identity model.Identity, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		PhotoURL:    identity.PhotoURL,
		Kind:        identity.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string and returns the identity it
// carries. WithValidMethods pins the algorithm to HS256 — without it an
// attacker could attempt an algorithm confusion attack.
func (s *TokenService) Validate(tokenStr string) (model.Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Identity{}, fmt.Errorf("auth: token expired")
		}
		return model.Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return model.Identity{}, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return model.Identity{}, fmt.Errorf("auth: token has no subject")
	}

	kind := c.Kind
	if kind == "" {
		kind = model.KindReal
	}

	return model.Identity{
		ID:          c.Subject,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		PhotoURL:    c.PhotoURL,
		Kind:        kind,
	}, nil
}
