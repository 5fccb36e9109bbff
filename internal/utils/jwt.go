package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Access token verification failures. Handlers and services map these into
// their own taxonomy; both mean the caller must reauthenticate.
var (
	ErrTokenExpired = errors.New("access token expired")
	ErrTokenInvalid = errors.New("access token invalid")
)

// IssueAccessToken signs an HS256 JWT whose subject is the user's email.
// The token is self-contained: subject, issued-at and expiration are the
// only claims, and validity is a pure function of the token and the secret.
func IssueAccessToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// VerifyAccessToken parses and validates a signed access token, returning
// the subject email and the encoded expiration. Expired tokens yield
// ErrTokenExpired; anything that fails to parse, was signed with a different
// method or lacks a subject yields ErrTokenInvalid.
func VerifyAccessToken(secret []byte, raw string) (string, time.Time, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject anything but HMAC; the service only ever signs HS256.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", time.Time{}, ErrTokenExpired
		}
		return "", time.Time{}, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return "", time.Time{}, ErrTokenInvalid
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", time.Time{}, ErrTokenInvalid
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", time.Time{}, ErrTokenInvalid
	}
	return sub, exp.Time, nil
}
