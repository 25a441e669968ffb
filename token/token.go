// Package token issues and verifies the access/refresh JWT pair. Both tokens
// carry only the user id; each kind has its own signing secret and expiry.
package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"foliotrack/apperr"
)

type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssuePair generates an access and refresh token for the user. Either both
// tokens are returned or neither.
func (s *Service) IssuePair(userID uint) (accessToken, refreshToken string, err error) {
	accessToken, err = s.sign(userID, s.accessSecret, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("signing access token: %w", err)
	}
	refreshToken, err = s.sign(userID, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("signing refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}

// VerifyAccess validates an access token and returns the user id.
func (s *Service) VerifyAccess(tokenString string) (uint, error) {
	return s.verify(tokenString, s.accessSecret)
}

// VerifyRefresh validates a refresh token and returns the user id. Callers
// must additionally compare the token against the user's stored slot; a
// cryptographically valid but superseded token is not acceptable.
func (s *Service) VerifyRefresh(tokenString string) (uint, error) {
	return s.verify(tokenString, s.refreshSecret)
}

func (s *Service) sign(userID uint, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	// The jti makes every issued token distinct; rotation compares the
	// refresh token against the stored slot byte for byte.
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *Service) verify(tokenString string, secret []byte) (uint, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, apperr.Unauthorized("Invalid token")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, apperr.Unauthorized("Invalid token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, apperr.Unauthorized("Invalid token")
	}
	return uint(userID), nil
}
