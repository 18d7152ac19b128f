// Package auth issues and verifies the service's session tokens and the
// identity provider's ID tokens.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

const issuer = "blocniti"

// DefaultCookieName carries the session token in browsers.
const DefaultCookieName = "blocniti_session"

// Sessions signs and verifies HS256 session tokens whose subject is the user id.
type Sessions struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewSessions(secret string, duration time.Duration) *Sessions {
	if duration <= 0 {
		duration = 7 * 24 * time.Hour
	}
	return &Sessions{secret: []byte(secret), duration: duration, now: time.Now}
}

// Duration is how long issued tokens stay valid.
func (s *Sessions) Duration() time.Duration { return s.duration }

// Issue returns a signed session token for userID.
func (s *Sessions) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies a session token and returns the user id it was issued for.
func (s *Sessions) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !t.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// TokenFromRequest reads the session token from the Authorization header
// ("Bearer <token>") or, failing that, from the named cookie.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
