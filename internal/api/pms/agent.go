package pms

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/server"
)

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.agent == nil {
		server.WriteError(w, r, domain.ErrUnavailable("the assistant is not configured"))
		return
	}
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		server.WriteError(w, r, err)
		return
	}
	reply, err := s.agent.Chat(r.Context(), scope(r), req.ConversationID, req.Message)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.AddLogField(r.Context(), "conversation_id", reply.ConversationID)
	server.WriteJSON(w, http.StatusOK, reply)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	convs, err := s.svc.ListConversations(r.Context(), scope(r), limit)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, list(convs))
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.GetConversation(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteConversation(r.Context(), scope(r), chi.URLParam(r, "id")); err != nil {
		server.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	status := domain.DraftStatus(r.URL.Query().Get("status"))
	drafts, err := s.svc.ListDrafts(r.Context(), scope(r), status)
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, list(drafts))
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.GetDraft(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, d)
}

func (s *Server) handleConfirmDraft(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.ConfirmDraft(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.AddLogField(r.Context(), "reservation_id", res.ID)
	server.WriteJSON(w, http.StatusCreated, res)
}

func (s *Server) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.DiscardDraft(r.Context(), scope(r), chi.URLParam(r, "id"))
	if err != nil {
		server.WriteError(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, d)
}
