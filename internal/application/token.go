package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer mints and verifies the bearer tokens returned by Login. Tokens
// are HMAC-SHA256 signed JWTs whose subject claim carries the user id.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue returns a signed token for the user and its expiry instant.
func (ti *TokenIssuer) Issue(userID string) (string, time.Time, error) {
	issuedAt := ti.now()
	expiresAt := issuedAt.Add(ti.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies the signature and expiry of a token and returns its
// subject. Expired tokens report ErrTokenExpired, every other failure
// reports ErrInvalidCredentials.
func (ti *TokenIssuer) Parse(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidCredentials
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}
