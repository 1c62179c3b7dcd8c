package pms

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/server"
	"github.com/tjfontaine/innkeeper/internal/service"
)

func (s *Server) handleListRoomTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.svc.ListRoomTypes(r.Context(), scope(r))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, list(types))
}

func (s *Server) handleCreateRoomType(w http.ResponseWriter, r *http.Request) {
	var in service.RoomTypeInput
	if err := decode(w, r, &in); err != nil {
		server.WriteError(w, r, err)
		return
	}
	rt, err := s.svc.CreateRoomType(r.Context(), scope(r), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, rt)
}

func (s *Server) handleGetRoomType(w http.ResponseWriter, r *http.Request) {
	rt, err := s.svc.GetRoomType(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, rt)
}

func (s *Server) handleUpdateRoomType(w http.ResponseWriter, r *http.Request) {
	var in service.RoomTypeInput
	if err := decode(w, r, &in); err != nil {
		server.WriteError(w, r, err)
		return
	}
	rt, err := s.svc.UpdateRoomType(r.Context(), scope(r), chi.URLParam(r, "id"), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, rt)
}

func (s *Server) handleDeleteRoomType(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteRoomType(r.Context(), scope(r), chi.URLParam(r, "id")); err != nil {
		server.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.svc.ListRooms(r.Context(), scope(r))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, list(rooms))
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var in service.RoomInput
	if err := decode(w, r, &in); err != nil {
		server.WriteError(w, r, err)
		return
	}
	room, err := s.svc.CreateRoom(r.Context(), scope(r), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, room)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.svc.GetRoom(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, room)
}

func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	var in service.RoomInput
	if err := decode(w, r, &in); err != nil {
		server.WriteError(w, r, err)
		return
	}
	room, err := s.svc.UpdateRoom(r.Context(), scope(r), chi.URLParam(r, "id"), in)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, room)
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteRoom(r.Context(), scope(r), chi.URLParam(r, "id")); err != nil {
		server.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetRoomStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.RoomStatus `json:"status"`
	}
	if err := decode(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	room, err := s.svc.SetRoomStatus(r.Context(), scope(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, room)
}

func (s *Server) handleSetHousekeeping(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Housekeeping domain.Housekeeping `json:"housekeeping"`
	}
	if err := decode(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	room, err := s.svc.SetHousekeeping(r.Context(), scope(r), chi.URLParam(r, "id"), req.Housekeeping)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, room)
}
