// Package auth issues and verifies identity tokens and guards user credentials.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/task-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// claims is the signed payload; RegisteredClaims carries exp when a TTL is set.
type claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies stateless HS256 identity tokens
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenService builds a TokenService. A zero ttl issues tokens without expiry.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	return newTokenService(secret, ttl, time.Now)
}

func newTokenService(secret string, ttl time.Duration, now func() time.Time) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl < 0 {
		return nil, fmt.Errorf("token ttl must not be negative, got %v", ttl)
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithStrictDecoding(),
			jwt.WithTimeFunc(now),
		),
	}, nil
}

// Issue signs the identity. Without a ttl the output is a pure function of the identity.
func (s *TokenService) Issue(id models.Identity) (string, error) {
	c := claims{UserID: id.UserID, Username: id.Username}
	if s.ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(s.now().Add(s.ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify returns the embedded identity, or false for any token this service
// would not have produced.
func (s *TokenService) Verify(tokenString string) (models.Identity, bool) {
	if tokenString == "" {
		return models.Identity{}, false
	}
	c := &claims{}
	token, err := s.parser.ParseWithClaims(tokenString, c, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid || c.UserID == "" {
		return models.Identity{}, false
	}
	return models.Identity{UserID: c.UserID, Username: c.Username}, true
}
