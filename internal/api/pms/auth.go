package pms

import (
	"net/http"
	"time"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/server"
)

func (s *Server) setCookie(w http.ResponseWriter, name, value string, expires time.Time) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	res, err := s.svc.Login(r.Context(), req.Email, req.Password, r.UserAgent())
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.AddLogField(r.Context(), "staff_id", res.Staff.ID)
	s.setCookie(w, server.SessionCookie, res.Token, res.Session.ExpiresAt)
	server.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Logout(r.Context(), server.SessionToken(r)); err != nil {
		server.WriteError(w, r, err)
		return
	}
	s.setCookie(w, server.SessionCookie, "", time.Time{})
	s.setCookie(w, server.ImpersonationCookie, "", time.Time{})
	w.WriteHeader(http.StatusNoContent)
}

type meResponse struct {
	Staff         *domain.Staff       `json:"staff"`
	HotelID       string              `json:"hotel_id,omitempty"`
	Role          domain.Role         `json:"role"`
	Impersonating bool                `json:"impersonating"`
	Permissions   []domain.Permission `json:"permissions"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sc := scope(r)
	perms := sc.Role.Permissions()
	if perms == nil {
		perms = []domain.Permission{}
	}
	server.WriteJSON(w, http.StatusOK, meResponse{
		Staff:         server.GetStaff(r.Context()),
		HotelID:       sc.HotelID,
		Role:          sc.Role,
		Impersonating: sc.Impersonating,
		Permissions:   perms,
	})
}

type impersonateRequest struct {
	HotelID string      `json:"hotel_id"`
	Role    domain.Role `json:"role"`
}

func (s *Server) handleImpersonate(w http.ResponseWriter, r *http.Request) {
	var req impersonateRequest
	if err := decode(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	value, imp, err := s.svc.Impersonate(r.Context(), server.GetStaff(r.Context()), req.HotelID, req.Role)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	s.setCookie(w, server.ImpersonationCookie, value, imp.ExpiresAt)
	server.WriteJSON(w, http.StatusOK, map[string]any{
		"hotel_id":   imp.HotelID,
		"role":       imp.Role,
		"expires_at": imp.ExpiresAt,
	})
}

func (s *Server) handleStopImpersonation(w http.ResponseWriter, r *http.Request) {
	st := server.GetStaff(r.Context())
	if st.Role != domain.RoleSuperAdmin {
		server.WriteError(w, r, domain.ErrPermission("only super admins can impersonate"))
		return
	}
	sc := scope(r)
	if sc.Impersonating {
		s.svc.StopImpersonation(r.Context(), st, sc.HotelID)
	}
	s.setCookie(w, server.ImpersonationCookie, "", time.Time{})
	w.WriteHeader(http.StatusNoContent)
}
