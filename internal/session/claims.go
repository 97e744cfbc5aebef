package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no session token")

// Claims is the informational subset of a JWT access token. It is decoded
// without verifying the signature and must never be used for authorization
// decisions.
type Claims struct {
	Subject   string
	UserID    string
	TokenType string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

func (c *Claims) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Claims decodes the held token when it is JWT shaped. Opaque tokens
// return an error.
func (s *Session) Claims() (*Claims, error) {
	token := s.Token()
	if len(token) == 0 {
		return nil, ErrNoToken
	}
	return ParseClaims(token)
}

func ParseClaims(token string) (*Claims, error) {
	mapClaims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return nil, fmt.Errorf("token is not a JWT: %w", err)
	}

	claims := &Claims{}

	if subject, err := mapClaims.GetSubject(); err == nil {
		claims.Subject = subject
	}

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt := exp.Time.UTC()
		claims.ExpiresAt = &expiresAt
	}

	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		issuedAt := iat.Time.UTC()
		claims.IssuedAt = &issuedAt
	}

	if tokenType, ok := mapClaims["token_type"].(string); ok {
		claims.TokenType = tokenType
	}

	switch userID := mapClaims["user_id"].(type) {
	case string:
		claims.UserID = userID
	case float64:
		claims.UserID = fmt.Sprintf("%.0f", userID)
	}

	return claims, nil
}
