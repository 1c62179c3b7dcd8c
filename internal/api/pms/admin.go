package pms

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/innkeeper/internal/server"
	"github.com/tjfontaine/innkeeper/internal/service"
)

func (s *Server) handleListHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := s.svc.ListHotels(r.Context(), scope(r))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, list(hotels))
}

func (s *Server) handleCreateHotel(w http.ResponseWriter, r *http.Request) {
	var in service.HotelInput
	if err := decode(w, r, &in); err != nil {
		server.WriteError(w, r, err)
		return
	}
	h, err := s.svc.CreateHotel(r.Context(), scope(r), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, h)
}

func (s *Server) handleGetHotel(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.GetHotel(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, h)
}

func (s *Server) handleUpdateHotel(w http.ResponseWriter, r *http.Request) {
	var in service.HotelInput
	if err := decode(w, r, &in); err != nil {
		server.WriteError(w, r, err)
		return
	}
	h, err := s.svc.UpdateHotel(r.Context(), scope(r), chi.URLParam(r, "id"), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, h)
}

func (s *Server) handleActivateHotel(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.SetHotelActive(r.Context(), scope(r), chi.URLParam(r, "id"), true)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, h)
}

func (s *Server) handleDeactivateHotel(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.DeactivateHotel(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, h)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	events, err := s.svc.ListAudit(r.Context(), scope(r), r.URL.Query().Get("hotel_id"), limit)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, list(events))
}

func (s *Server) handleListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := s.svc.ListStaff(r.Context(), scope(r))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, list(staff))
}

func (s *Server) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	var in service.StaffInput
	if err := decode(w, r, &in); err != nil {
		server.WriteError(w, r, err)
		return
	}
	st, err := s.svc.CreateStaff(r.Context(), scope(r), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, st)
}

func (s *Server) handleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	var patch service.StaffPatch
	if err := decode(w, r, &patch); err != nil {
		server.WriteError(w, r, err)
		return
	}
	st, err := s.svc.UpdateStaff(r.Context(), scope(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decode(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	if err := s.svc.ResetPassword(r.Context(), scope(r), chi.URLParam(r, "id"), req.Password); err != nil {
		server.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
