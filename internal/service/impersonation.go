package service

import (
	"context"

	"github.com/tjfontaine/innkeeper/internal/auth"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// Impersonate lets a super admin act inside hotelID with role. It returns the signed
// cookie value and the impersonation it encodes.
func (s *Service) Impersonate(ctx context.Context, admin *domain.Staff, hotelID string, role domain.Role) (string, auth.Impersonation, error) {
	var imp auth.Impersonation
	if s.signer == nil {
		return "", imp, domain.ErrUnavailable("impersonation is not configured")
	}
	if admin == nil || admin.Role != domain.RoleSuperAdmin {
		return "", imp, domain.ErrPermission("only super admins can impersonate")
	}
	if role == "" {
		role = domain.RoleAdmin
	}
	if !role.HotelRole() {
		return "", imp, domain.ErrInvalidRequest("role must be a hotel role").WithParam("role")
	}
	h, err := s.store.GetHotel(ctx, hotelID)
	if err != nil {
		return "", imp, storeErr(err, "hotel")
	}
	if !h.Active {
		return "", imp, domain.ErrConflict("hotel " + h.Name + " is deactivated")
	}

	imp = auth.Impersonation{
		AdminID:   admin.ID,
		HotelID:   h.ID,
		Role:      role,
		ExpiresAt: s.now().Add(s.opts.ImpersonationTTL).UTC(),
	}
	value, err := s.signer.Sign(imp)
	if err != nil {
		return "", auth.Impersonation{}, err
	}
	s.audit(ctx, tenant.Scope{StaffID: admin.ID, HotelID: h.ID}, "impersonation.start", admin.ID, string(role))
	return value, imp, nil
}

// StopImpersonation records the end of an impersonation. Clearing the cookie is the
// caller's job.
func (s *Service) StopImpersonation(ctx context.Context, admin *domain.Staff, hotelID string) {
	if admin == nil || hotelID == "" {
		return
	}
	s.audit(ctx, tenant.Scope{StaffID: admin.ID, HotelID: hotelID}, "impersonation.stop", admin.ID, "")
}

// ResolveScope returns the effective scope of st. A valid impersonation cookie issued
// to st narrows the scope to the impersonated hotel and role; a cookie that is
// invalid, expired or issued to another admin is ignored.
func (s *Service) ResolveScope(ctx context.Context, st *domain.Staff, cookie string) tenant.Scope {
	sc := ScopeFor(st)
	if cookie == "" || s.signer == nil || st.Role != domain.RoleSuperAdmin {
		return sc
	}
	imp, err := s.signer.Verify(cookie, s.now())
	if err != nil || imp.AdminID != st.ID {
		return sc
	}
	h, err := s.store.GetHotel(ctx, imp.HotelID)
	if err != nil || !h.Active {
		return sc
	}
	sc.HotelID = imp.HotelID
	sc.Role = imp.Role
	sc.Impersonating = true
	return sc
}
