package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lromerof/comite-agua/internal/apperr"
)

// PINVerifier checks the access PIN. Satisfied by tariff.Service.
type PINVerifier interface {
	VerifyPIN(ctx context.Context, pin string) (bool, error)
}

// Service exchanges the committee PIN for a signed session token. There is a
// single shared operator identity, so tokens carry no subject beyond the
// issuer claim.
type Service struct {
	pins   PINVerifier
	secret []byte
	ttl    time.Duration
}

func NewService(pins PINVerifier, secret string, ttl time.Duration) *Service {
	return &Service{pins: pins, secret: []byte(secret), ttl: ttl}
}

// Login verifies the PIN and returns a session token with its expiry.
func (s *Service) Login(ctx context.Context, pin string) (string, time.Time, error) {
	ok, err := s.pins.VerifyPIN(ctx, pin)
	if err != nil {
		return "", time.Time{}, err
	}
	if !ok {
		return "", time.Time{}, apperr.Validation("incorrect PIN")
	}

	expires := time.Now().Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "comite-agua",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expires),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expires, nil
}

// Verify parses and validates a session token.
func (s *Service) Verify(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid session token")
	}
	return nil
}
