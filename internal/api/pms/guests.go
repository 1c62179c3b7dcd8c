package pms

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/server"
	"github.com/tjfontaine/innkeeper/internal/service"
)

func (s *Server) handleSearchGuests(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	guests, err := s.svc.SearchGuests(r.Context(), scope(r), r.URL.Query().Get("q"), limit)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, list(guests))
}

func (s *Server) handleCreateGuest(w http.ResponseWriter, r *http.Request) {
	var in service.GuestInput
	if err := decode(w, r, &in); err != nil {
		server.WriteError(w, r, err)
		return
	}
	g, err := s.svc.CreateGuest(r.Context(), scope(r), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGetGuest(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.GetGuest(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGuest(w http.ResponseWriter, r *http.Request) {
	var in service.GuestInput
	if err := decode(w, r, &in); err != nil {
		server.WriteError(w, r, err)
		return
	}
	g, err := s.svc.UpdateGuest(r.Context(), scope(r), chi.URLParam(r, "id"), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGuest(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteGuest(r.Context(), scope(r), chi.URLParam(r, "id")); err != nil {
		server.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGuestHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.GuestHistory(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, h)
}

// handleImportGuests reads a multipart upload whose "file" part is an .xlsx or .xls
// workbook.
func (s *Server) handleImportGuests(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			server.WriteError(w, r, domain.ErrInvalidRequest("upload is too large").
				WithStatusCode(http.StatusRequestEntityTooLarge).WithParam("file"))
			return
		}
		server.WriteError(w, r, domain.ErrInvalidRequest("a multipart file field named \"file\" is required").WithParam("file"))
		return
	}
	defer file.Close()

	res, err := s.svc.ImportGuests(r.Context(), scope(r), header.Filename, file)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, res)
}
