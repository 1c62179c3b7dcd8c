package pms

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/innkeeper/internal/server"
	"github.com/tjfontaine/innkeeper/internal/service"
)

func (s *Server) writeFolio(w http.ResponseWriter, r *http.Request, f *service.FolioView, err error) {
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, f)
}

func (s *Server) handleGetFolio(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.GetFolio(r.Context(), scope(r), chi.URLParam(r, "id"))
	s.writeFolio(w, r, f, err)
}

func (s *Server) handleAddCharge(w http.ResponseWriter, r *http.Request) {
	var in service.ChargeInput
	if err := decode(w, r, &in); err != nil {
		server.WriteError(w, r, err)
		return
	}
	f, err := s.svc.AddCharge(r.Context(), scope(r), chi.URLParam(r, "id"), in)
	s.writeFolio(w, r, f, err)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.RemoveItem(r.Context(), scope(r), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	s.writeFolio(w, r, f, err)
}

func (s *Server) handleAddPayment(w http.ResponseWriter, r *http.Request) {
	var in service.PaymentInput
	if err := decode(w, r, &in); err != nil {
		server.WriteError(w, r, err)
		return
	}
	f, err := s.svc.AddPayment(r.Context(), scope(r), chi.URLParam(r, "id"), in)
	s.writeFolio(w, r, f, err)
}

func (s *Server) handleCloseFolio(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.CloseFolio(r.Context(), scope(r), chi.URLParam(r, "id"))
	s.writeFolio(w, r, f, err)
}

// handleInvoice renders into a buffer so a template failure still produces a JSON error.
func (s *Server) handleInvoice(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.svc.RenderInvoice(r.Context(), scope(r), &buf, chi.URLParam(r, "id")); err != nil {
		server.WriteError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExportFolio(w http.ResponseWriter, r *http.Request) {
	exp, err := s.svc.ExportFolio(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	s.writeFile(w, exp)
}

func (s *Server) handleExportReservations(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	exp, err := s.svc.ExportReservations(r.Context(), scope(r), from, to)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	s.writeFile(w, exp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	rep, err := s.svc.Report(r.Context(), scope(r), from, to)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Dashboard(r.Context(), scope(r))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, d)
}
