package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

// ImpersonationCookie names the cookie carrying a signed Impersonation. The name is
// part of the signed value, so a value cannot be replayed under another cookie.
const ImpersonationCookie = "innkeeper_impersonate"

// DefaultMaxAge bounds cookie age when NewSigner is given none.
const DefaultMaxAge = time.Hour

var (
	ErrBadSignature = errors.New("impersonation cookie is not valid")
	ErrExpired      = errors.New("impersonation cookie expired")
)

// Impersonation is the effective scope a super admin has chosen to act in. AdminID
// is the super admin who started it; no other session may use the cookie.
type Impersonation struct {
	AdminID   string      `json:"admin_id"`
	HotelID   string      `json:"hotel_id"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Signer signs and verifies impersonation cookie values with securecookie: the JSON
// payload is timestamped and HMAC-SHA256 signed, and values older than maxAge are
// rejected before ExpiresAt is checked.
type Signer struct {
	codec *securecookie.SecureCookie
}

// NewSigner returns a Signer. The key must be at least 32 bytes.
func NewSigner(key []byte, maxAge time.Duration) (*Signer, error) {
	if len(key) < 32 {
		return nil, errors.New("impersonation signing key must be at least 32 bytes")
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	codec := securecookie.New(append([]byte(nil), key...), nil).
		MaxAge(int(maxAge/time.Second) + 1).
		SetSerializer(securecookie.JSONEncoder{})
	return &Signer{codec: codec}, nil
}

// Sign encodes imp into a cookie value.
func (s *Signer) Sign(imp Impersonation) (string, error) {
	value, err := s.codec.Encode(ImpersonationCookie, imp)
	if err != nil {
		return "", fmt.Errorf("sign impersonation: %w", err)
	}
	return value, nil
}

// Verify decodes a cookie value, checking the signature, its age and the expiry
// against now.
func (s *Signer) Verify(value string, now time.Time) (Impersonation, error) {
	var imp Impersonation
	if err := s.codec.Decode(ImpersonationCookie, value, &imp); err != nil {
		return Impersonation{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if !now.Before(imp.ExpiresAt) {
		return imp, ErrExpired
	}
	if imp.AdminID == "" || imp.HotelID == "" || !imp.Role.HotelRole() {
		return imp, fmt.Errorf("impersonation cookie names an invalid scope")
	}
	return imp, nil
}
