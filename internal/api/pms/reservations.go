package pms

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/innkeeper/internal/availability"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/server"
	"github.com/tjfontaine/innkeeper/internal/service"
	"github.com/tjfontaine/innkeeper/internal/storage"
)

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	checkIn, err := queryDate(r, "check_in")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	checkOut, err := queryDate(r, "check_out")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	guests, err := queryInt(r, "guests")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}

	avail, err := s.svc.CheckAvailability(r.Context(), scope(r), domain.Stay{CheckIn: checkIn, CheckOut: checkOut},
		service.AvailabilityQuery{RoomTypeID: r.URL.Query().Get("room_type_id"), Guests: guests})
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, avail)
}

// handleTimeline returns the room timeline as JSON, or as a text chart with
// ?format=text.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	days, err := queryInt(r, "days")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	tl, err := s.svc.Timeline(r.Context(), scope(r), from, days)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := availability.RenderTimeline(w, *tl); err != nil {
			server.AddError(r.Context(), err)
		}
		return
	}
	server.WriteJSON(w, http.StatusOK, tl)
}

func reservationFilter(r *http.Request) (storage.ReservationFilter, error) {
	q := r.URL.Query()
	f := storage.ReservationFilter{RoomID: q.Get("room_id"), GuestID: q.Get("guest_id")}

	if v := q.Get("status"); v != "" {
		for _, part := range strings.Split(v, ",") {
			st := domain.ReservationStatus(strings.TrimSpace(part))
			if !st.Valid() {
				return f, domain.ErrInvalidRequest("unknown status " + string(st)).WithParam("status")
			}
			f.Statuses = append(f.Statuses, st)
		}
	}

	var err error
	if f.From, err = queryDate(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(r, "to"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(r, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	f, err := reservationFilter(r)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	out, err := s.svc.ListReservations(r.Context(), scope(r), f)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, list(out))
}

func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var in service.ReservationInput
	if err := decode(w, r, &in); err != nil {
		server.WriteError(w, r, err)
		return
	}
	res, err := s.svc.CreateReservation(r.Context(), scope(r), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.AddLogField(r.Context(), "reservation_id", res.ID)
	server.WriteJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.GetReservation(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleUpdateReservation(w http.ResponseWriter, r *http.Request) {
	var patch service.ReservationPatch
	if err := decode(w, r, &patch); err != nil {
		server.WriteError(w, r, err)
		return
	}
	res, err := s.svc.UpdateReservation(r.Context(), scope(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleReservationFolio(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.GetReservationFolio(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, f)
}

func (s *Server) writeReservation(w http.ResponseWriter, r *http.Request, res *domain.Reservation, err error) {
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.AddLogField(r.Context(), "reservation_id", res.ID)
	server.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Confirm(r.Context(), scope(r), chi.URLParam(r, "id"))
	s.writeReservation(w, r, res, err)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeOptional(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	res, err := s.svc.Cancel(r.Context(), scope(r), chi.URLParam(r, "id"), req.Reason)
	s.writeReservation(w, r, res, err)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.CheckIn(r.Context(), scope(r), chi.URLParam(r, "id"))
	s.writeReservation(w, r, res, err)
}

func (s *Server) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Force bool `json:"force"`
	}
	if err := decodeOptional(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	res, err := s.svc.CheckOut(r.Context(), scope(r), chi.URLParam(r, "id"), req.Force)
	s.writeReservation(w, r, res, err)
}

func (s *Server) handleNoShow(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.MarkNoShow(r.Context(), scope(r), chi.URLParam(r, "id"))
	s.writeReservation(w, r, res, err)
}

func (s *Server) handleArrivals(w http.ResponseWriter, r *http.Request) {
	day, err := queryDate(r, "date")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	out, err := s.svc.Arrivals(r.Context(), scope(r), day)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, list(out))
}

func (s *Server) handleDepartures(w http.ResponseWriter, r *http.Request) {
	day, err := queryDate(r, "date")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	out, err := s.svc.Departures(r.Context(), scope(r), day)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, list(out))
}

func (s *Server) handleInHouse(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.InHouse(r.Context(), scope(r))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, list(out))
}
