package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/tjfontaine/innkeeper/internal/auth"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

type StaffInput struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	// HotelID is only read from super admins; everyone else creates staff in their own hotel.
	HotelID string `json:"hotel_id,omitempty"`
}

// StaffPatch changes a staff member. Nil fields are left alone.
type StaffPatch struct {
	Name   *string      `json:"name,omitempty"`
	Role   *domain.Role `json:"role,omitempty"`
	Active *bool        `json:"active,omitempty"`
}

func passwordError(err error) error {
	return domain.ErrInvalidRequest(err.Error()).WithParam("password")
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ErrInvalidRequest("email is not a valid address").WithParam("email")
	}
	return email, nil
}

func (s *Service) newStaff(ctx context.Context, hotelID string, in StaffInput) (*domain.Staff, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidRequest("name is required").WithParam("name")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, passwordError(err)
	}

	st := &domain.Staff{
		ID:           uuid.NewString(),
		HotelID:      hotelID,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
	}
	if err := s.store.CreateStaff(ctx, st); err != nil {
		return nil, storeErr(err, "staff member with email "+email)
	}
	return st, nil
}

// CreateStaff adds a staff account. Hotel admins create staff in their own hotel and
// can never create super admins.
func (s *Service) CreateStaff(ctx context.Context, sc tenant.Scope, in StaffInput) (*domain.Staff, error) {
	if err := sc.Require(domain.PermStaffManage); err != nil {
		return nil, err
	}
	if !in.Role.Valid() {
		return nil, domain.ErrInvalidRequest("unknown role " + string(in.Role)).WithParam("role")
	}

	hotelID := sc.HotelID
	switch {
	case in.Role == domain.RoleSuperAdmin:
		if !sc.SuperAdmin() {
			return nil, domain.ErrPermission("only super admins can create super admins")
		}
		hotelID = ""
	case sc.SuperAdmin() && in.HotelID != "":
		hotelID = in.HotelID
	}
	if in.Role != domain.RoleSuperAdmin {
		if hotelID == "" {
			return nil, domain.ErrInvalidRequest("hotel_id is required").WithParam("hotel_id")
		}
		if _, err := s.store.GetHotel(ctx, hotelID); err != nil {
			return nil, storeErr(err, "hotel")
		}
	}

	st, err := s.newStaff(ctx, hotelID, in)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, tenant.Scope{StaffID: sc.StaffID, HotelID: hotelID}, "staff.create", st.ID, string(st.Role))
	return st, nil
}

// CreateSuperAdmin bootstraps a platform account. It is reached from the CLI only.
func (s *Service) CreateSuperAdmin(ctx context.Context, email, name, password string) (*domain.Staff, error) {
	return s.newStaff(ctx, "", StaffInput{Email: email, Name: name, Password: password, Role: domain.RoleSuperAdmin})
}

// managedStaff loads a staff member the scope may manage.
func (s *Service) managedStaff(ctx context.Context, sc tenant.Scope, id string) (*domain.Staff, error) {
	st, err := s.store.GetStaff(ctx, id)
	if err != nil {
		return nil, storeErr(err, "staff member")
	}
	if sc.SuperAdmin() {
		return st, nil
	}
	if st.HotelID == "" || st.HotelID != sc.HotelID {
		return nil, domain.ErrNotFound("staff member not found")
	}
	return st, nil
}

func (s *Service) UpdateStaff(ctx context.Context, sc tenant.Scope, id string, patch StaffPatch) (*domain.Staff, error) {
	if err := sc.Require(domain.PermStaffManage); err != nil {
		return nil, err
	}
	st, err := s.managedStaff(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	self := st.ID == sc.StaffID

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.ErrInvalidRequest("name is required").WithParam("name")
		}
		st.Name = name
	}
	if patch.Role != nil && *patch.Role != st.Role {
		if self {
			return nil, domain.ErrInvalidRequest("you cannot change your own role").WithParam("role")
		}
		if !patch.Role.Valid() {
			return nil, domain.ErrInvalidRequest("unknown role " + string(*patch.Role)).WithParam("role")
		}
		if (*patch.Role == domain.RoleSuperAdmin) != (st.Role == domain.RoleSuperAdmin) {
			return nil, domain.ErrInvalidRequest("super admin accounts cannot move to or from a hotel").WithParam("role")
		}
		st.Role = *patch.Role
	}
	revoke := false
	if patch.Active != nil && *patch.Active != st.Active {
		if self && !*patch.Active {
			return nil, domain.ErrInvalidRequest("you cannot deactivate yourself").WithParam("active")
		}
		st.Active = *patch.Active
		revoke = !st.Active
	}

	if err := s.store.UpdateStaff(ctx, st); err != nil {
		return nil, storeErr(err, "staff member")
	}
	if revoke {
		if err := s.store.DeleteStaffSessions(ctx, st.ID); err != nil {
			return nil, err
		}
	}
	s.audit(ctx, tenant.Scope{StaffID: sc.StaffID, HotelID: st.HotelID}, "staff.update", st.ID, string(st.Role))
	return st, nil
}

// ResetPassword sets a new password and signs the account out everywhere. Staff
// may always reset their own password.
func (s *Service) ResetPassword(ctx context.Context, sc tenant.Scope, id, password string) error {
	var st *domain.Staff
	var err error
	if id == sc.StaffID {
		st, err = s.store.GetStaff(ctx, id)
		err = storeErr(err, "staff member")
	} else {
		if err := sc.Require(domain.PermStaffManage); err != nil {
			return err
		}
		st, err = s.managedStaff(ctx, sc, id)
	}
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return passwordError(err)
	}
	st.PasswordHash = hash
	if err := s.store.UpdateStaff(ctx, st); err != nil {
		return storeErr(err, "staff member")
	}
	if err := s.store.DeleteStaffSessions(ctx, st.ID); err != nil {
		return err
	}
	s.audit(ctx, tenant.Scope{StaffID: sc.StaffID, HotelID: st.HotelID}, "staff.password_reset", st.ID, "")
	return nil
}

// ListStaff lists the scope's hotel staff. Super admins outside a hotel see the
// super admin accounts.
func (s *Service) ListStaff(ctx context.Context, sc tenant.Scope) ([]domain.Staff, error) {
	if err := sc.Require(domain.PermStaffManage); err != nil {
		return nil, err
	}
	return s.store.ListStaff(ctx, sc.HotelID)
}

// LoginResult is returned by a successful Login. Token is shown once.
type LoginResult struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
	Staff   *domain.Staff   `json:"staff"`
}

var errBadLogin = domain.ErrAuthentication("invalid email or password").WithCode(domain.ErrorCodeInvalidCredentials)

// Login checks credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password, userAgent string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	st, err := s.store.GetStaffByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errBadLogin
		}
		return nil, err
	}
	if err := auth.CheckPassword(st.PasswordHash, password); err != nil {
		return nil, errBadLogin
	}
	if !st.Active {
		return nil, errBadLogin
	}
	if err := s.hotelActive(ctx, st); err != nil {
		return nil, err
	}

	token, hash, err := auth.NewSessionToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sess := &domain.Session{
		TokenHash: hash,
		StaffID:   st.ID,
		UserAgent: userAgent,
		ExpiresAt: now.Add(s.opts.SessionTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	st.LastLoginAt = &now
	if err := s.store.UpdateStaff(ctx, st); err != nil {
		return nil, err
	}
	s.audit(ctx, tenant.Scope{StaffID: st.ID, HotelID: st.HotelID}, "auth.login", st.ID, userAgent)
	return &LoginResult{Token: token, Session: sess, Staff: st}, nil
}

func (s *Service) hotelActive(ctx context.Context, st *domain.Staff) error {
	if st.HotelID == "" {
		return nil
	}
	h, err := s.store.GetHotel(ctx, st.HotelID)
	if err != nil {
		return storeErr(err, "hotel")
	}
	if !h.Active {
		return domain.ErrAuthentication("hotel " + h.Name + " is deactivated")
	}
	return nil
}

// Logout ends the session behind token.
func (s *Service) Logout(ctx context.Context, token string) error {
	err := s.store.DeleteSession(ctx, auth.HashToken(token))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

var errNoSession = domain.ErrAuthentication("session expired or invalid; sign in again")

// Authenticate resolves a session token to its staff member.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Staff, error) {
	if token == "" {
		return nil, errNoSession
	}
	hash := auth.HashToken(token)
	sess, err := s.store.GetSession(ctx, hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errNoSession
		}
		return nil, err
	}
	if !s.now().Before(sess.ExpiresAt) {
		_ = s.store.DeleteSession(ctx, hash)
		return nil, errNoSession
	}
	st, err := s.store.GetStaff(ctx, sess.StaffID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, errNoSession
		}
		return nil, err
	}
	if !st.Active {
		return nil, errNoSession
	}
	if err := s.hotelActive(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// ScopeFor returns the scope a staff member acts with when not impersonating.
func ScopeFor(st *domain.Staff) tenant.Scope {
	return tenant.Scope{StaffID: st.ID, StaffName: st.Name, HotelID: st.HotelID, Role: st.Role}
}
