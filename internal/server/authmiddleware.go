package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/tjfontaine/innkeeper/internal/auth"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// Cookie names read by AuthMiddleware.
const (
	SessionCookie       = "innkeeper_session"
	ImpersonationCookie = auth.ImpersonationCookie
)

// Authenticator resolves session tokens to staff and their effective scope.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Staff, error)
	ResolveScope(ctx context.Context, st *domain.Staff, impersonation string) tenant.Scope
}

type staffContextKey struct{}

// SessionToken extracts the session token from the Authorization header (Bearer
// format) or, failing that, the session cookie.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return strings.TrimSpace(h)
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// AuthMiddleware authenticates the session and injects the staff member and their
// effective tenant scope into the request context.
func AuthMiddleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				WriteError(w, r, domain.ErrAuthentication("missing session token"))
				return
			}

			st, err := a.Authenticate(r.Context(), token)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			var impersonation string
			if c, err := r.Cookie(ImpersonationCookie); err == nil {
				impersonation = c.Value
			}
			sc := a.ResolveScope(r.Context(), st, impersonation)
			addScopeFields(r.Context(), sc)

			ctx := context.WithValue(r.Context(), staffContextKey{}, st)
			ctx = tenant.WithScope(ctx, sc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetStaff retrieves the authenticated staff member from context.
// Returns nil if no staff member is set.
func GetStaff(ctx context.Context) *domain.Staff {
	if st, ok := ctx.Value(staffContextKey{}).(*domain.Staff); ok {
		return st
	}
	return nil
}
