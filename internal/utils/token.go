package utils // helpers for session identifiers and cookie tokens

import (
	"crypto/rand" // secure random number generation
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a session cookie token fails signature
// or expiry validation, or carries no session id.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionID returns a random hex string suitable as a server-side
// session key. 32 bytes of entropy gives a 64 character identifier.
func NewSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// SignSessionToken wraps a session id in a signed HS256 JWT for transport
// inside the admin cookie. The token carries only the opaque session id
// and an expiry; the authoritative session state lives server-side, so a
// stolen secret alone cannot resurrect a logged-out session.
func SignSessionToken(secret, sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": expiresAt.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseSessionToken verifies the signature and expiry of a cookie token
// and extracts the session id. Any failure maps to ErrInvalidToken; the
// caller has no use for the distinction.
func ParseSessionToken(secret, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrInvalidToken
	}
	return sid, nil
}
