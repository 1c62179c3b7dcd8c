// Package tenant carries the authenticated hotel scope through a request context.
package tenant

import (
	"context"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

// Scope is the effective identity a request acts with. For an impersonating super
// admin, HotelID and Role are the impersonated values and StaffID stays the admin's.
type Scope struct {
	StaffID       string
	StaffName     string
	HotelID       string
	Role          domain.Role
	Impersonating bool
}

// SuperAdmin reports whether the scope has platform-wide authority.
func (s Scope) SuperAdmin() bool {
	return s.Role == domain.RoleSuperAdmin
}

// Can reports whether the scope's role grants perm.
func (s Scope) Can(perm domain.Permission) bool {
	return s.Role.Can(perm)
}

// Require returns a permission error when perm is not granted.
func (s Scope) Require(perm domain.Permission) error {
	if !s.Can(perm) {
		return domain.ErrPermission("your role does not allow " + string(perm))
	}
	return nil
}

// RequireHotel returns an error when the scope is not bound to a hotel.
func (s Scope) RequireHotel() error {
	if s.HotelID == "" {
		return domain.ErrInvalidRequest("no hotel selected; impersonate a hotel first").WithParam("hotel_id")
	}
	return nil
}

// contextKey is the type for tenant context keys
type contextKey string

const ScopeContextKey contextKey = "scope"

// WithScope returns a copy of ctx carrying scope.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, ScopeContextKey, scope)
}

// FromContext returns the scope stored in ctx.
func FromContext(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(ScopeContextKey).(Scope)
	return scope, ok
}
