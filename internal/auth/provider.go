package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/blocniti/blocniti/pkg/models"
)

// ProviderConfig describes the external identity provider.
type ProviderConfig struct {
	LoginURL    string
	Secret      string
	Issuer      string
	Audience    string
	CallbackURL string
}

// Provider verifies ID tokens minted by the external identity provider and
// builds its login redirect.
type Provider struct {
	cfg ProviderConfig
}

func NewProvider(cfg ProviderConfig) *Provider {
	return &Provider{cfg: cfg}
}

// IdentityClaims are the claims read from a provider ID token.
type IdentityClaims struct {
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	jwt.RegisteredClaims
}

// NewState returns a random value binding a login redirect to its callback.
func NewState() string {
	return uuid.NewString()
}

// LoginURL returns the provider URL the browser is sent to, carrying state
// and the callback address.
func (p *Provider) LoginURL(state string) (string, error) {
	if p.cfg.LoginURL == "" {
		return "", fmt.Errorf("identity provider login url is not configured")
	}
	u, err := url.Parse(p.cfg.LoginURL)
	if err != nil {
		return "", fmt.Errorf("parse login url: %w", err)
	}
	q := u.Query()
	q.Set("state", state)
	if p.cfg.CallbackURL != "" {
		q.Set("redirect_uri", p.cfg.CallbackURL)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// VerifyIdentity checks an ID token and maps its claims to an upsert record.
func (p *Provider) VerifyIdentity(token string) (*models.UpsertUser, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if p.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.cfg.Issuer))
	}
	if p.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(p.cfg.Audience))
	}

	claims := &IdentityClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(p.cfg.Secret), nil
	}, opts...)
	if err != nil || !t.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}

	return &models.UpsertUser{
		ID:              claims.Subject,
		Email:           optional(claims.Email),
		FirstName:       optional(claims.FirstName),
		LastName:        optional(claims.LastName),
		ProfileImageURL: optional(claims.ProfileImageURL),
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
