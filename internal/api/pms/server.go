// Package pms serves the property-management REST API under /api/v1.
package pms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/innkeeper/internal/agent"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/ratelimit"
	"github.com/tjfontaine/innkeeper/internal/server"
	"github.com/tjfontaine/innkeeper/internal/service"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 10 << 20
	healthTimeout  = 2 * time.Second
)

type Server struct {
	router       *chi.Mux
	svc          *service.Service
	agent        *agent.Agent
	loginLimiter ratelimit.Limiter
	secure       bool
	logger       *slog.Logger
}

type Option func(*Server)

// WithAgent enables the /agent routes.
func WithAgent(a *agent.Agent) Option {
	return func(s *Server) { s.agent = a }
}

// WithLoginLimiter rate-limits login attempts per client address.
func WithLoginLimiter(l ratelimit.Limiter) Option {
	return func(s *Server) { s.loginLimiter = l }
}

// WithSecureCookies marks session and impersonation cookies Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) { s.secure = secure }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

func NewServer(svc *service.Service, opts ...Option) *Server {
	s := &Server{
		router: chi.NewRouter(),
		svc:    svc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		server.WriteError(w, r, domain.ErrNotFound("no route for "+r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		server.WriteError(w, r, domain.NewAPIError(domain.ErrorTypeInvalidRequest, r.Method+" is not allowed here").
			WithStatusCode(http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(server.RateLimitMiddleware(s.loginLimiter, "login", server.ClientIP, s.logger)).
			Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(server.AuthMiddleware(s.svc))

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleMe)

			r.Route("/room-types", func(r chi.Router) {
				r.Get("/", s.handleListRoomTypes)
				r.Post("/", s.handleCreateRoomType)
				r.Get("/{id}", s.handleGetRoomType)
				r.Put("/{id}", s.handleUpdateRoomType)
				r.Delete("/{id}", s.handleDeleteRoomType)
			})
			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", s.handleListRooms)
				r.Post("/", s.handleCreateRoom)
				r.Get("/{id}", s.handleGetRoom)
				r.Put("/{id}", s.handleUpdateRoom)
				r.Delete("/{id}", s.handleDeleteRoom)
				r.Put("/{id}/status", s.handleSetRoomStatus)
				r.Put("/{id}/housekeeping", s.handleSetHousekeeping)
			})
			r.Route("/guests", func(r chi.Router) {
				r.Get("/", s.handleSearchGuests)
				r.Post("/", s.handleCreateGuest)
				r.Get("/search", s.handleSearchGuests)
				r.Post("/import", s.handleImportGuests)
				r.Get("/{id}", s.handleGetGuest)
				r.Put("/{id}", s.handleUpdateGuest)
				r.Delete("/{id}", s.handleDeleteGuest)
				r.Get("/{id}/history", s.handleGuestHistory)
			})

			r.Get("/availability", s.handleAvailability)
			r.Get("/timeline", s.handleTimeline)
			r.Route("/reservations", func(r chi.Router) {
				r.Get("/", s.handleListReservations)
				r.Post("/", s.handleCreateReservation)
				r.Get("/{id}", s.handleGetReservation)
				r.Patch("/{id}", s.handleUpdateReservation)
				r.Get("/{id}/folio", s.handleReservationFolio)
				r.Post("/{id}/confirm", s.handleConfirm)
				r.Post("/{id}/cancel", s.handleCancel)
				r.Post("/{id}/check-in", s.handleCheckIn)
				r.Post("/{id}/check-out", s.handleCheckOut)
				r.Post("/{id}/no-show", s.handleNoShow)
			})
			r.Get("/arrivals", s.handleArrivals)
			r.Get("/departures", s.handleDepartures)
			r.Get("/in-house", s.handleInHouse)

			r.Route("/folios/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetFolio)
				r.Post("/charges", s.handleAddCharge)
				r.Delete("/items/{itemID}", s.handleRemoveItem)
				r.Post("/payments", s.handleAddPayment)
				r.Post("/close", s.handleCloseFolio)
				r.Get("/invoice", s.handleInvoice)
				r.Get("/export", s.handleExportFolio)
			})
			r.Get("/exports/reservations", s.handleExportReservations)

			r.Get("/analytics/report", s.handleReport)
			r.Get("/dashboard", s.handleDashboard)

			r.Route("/staff", func(r chi.Router) {
				r.Get("/", s.handleListStaff)
				r.Post("/", s.handleCreateStaff)
				r.Patch("/{id}", s.handleUpdateStaff)
				r.Post("/{id}/password", s.handleResetPassword)
			})

			r.Route("/agent", func(r chi.Router) {
				r.Post("/chat", s.handleChat)
				r.Get("/conversations", s.handleListConversations)
				r.Get("/conversations/{id}", s.handleGetConversation)
				r.Delete("/conversations/{id}", s.handleDeleteConversation)
				r.Get("/drafts", s.handleListDrafts)
				r.Get("/drafts/{id}", s.handleGetDraft)
				r.Post("/drafts/{id}/confirm", s.handleConfirmDraft)
				r.Post("/drafts/{id}/discard", s.handleDiscardDraft)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/hotels", s.handleListHotels)
				r.Post("/hotels", s.handleCreateHotel)
				r.Get("/hotels/{id}", s.handleGetHotel)
				r.Put("/hotels/{id}", s.handleUpdateHotel)
				r.Post("/hotels/{id}/activate", s.handleActivateHotel)
				r.Post("/hotels/{id}/deactivate", s.handleDeactivateHotel)
				r.Post("/impersonate", s.handleImpersonate)
				r.Delete("/impersonate", s.handleStopImpersonation)
				r.Get("/audit", s.handleAudit)
			})
		})
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := s.svc.Store().Ping(ctx); err != nil {
		server.AddError(r.Context(), err)
		server.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "store": "down"})
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": "up"})
}

// scope returns the caller's effective scope; AuthMiddleware guarantees one.
func scope(r *http.Request) tenant.Scope {
	sc, _ := tenant.FromContext(r.Context())
	return sc
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return domain.ErrInvalidRequest("request body is required")
		case errors.As(err, &maxErr):
			return domain.ErrInvalidRequest("request body is too large").WithStatusCode(http.StatusRequestEntityTooLarge)
		default:
			return domain.ErrInvalidRequest("invalid JSON body: " + err.Error())
		}
	}
	return nil
}

// decodeOptional is decode for endpoints whose body may be empty.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	if err := decode(w, r, v); err != nil {
		if apiErr := domain.AsAPIError(err); apiErr.Message == "request body is required" {
			return nil
		}
		return err
	}
	return nil
}

func queryDate(r *http.Request, name string) (domain.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return domain.Date{}, nil
	}
	d, err := domain.ParseDate(v)
	if err != nil {
		return domain.Date{}, domain.ErrInvalidRequest(err.Error()).WithParam(name)
	}
	return d, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.ErrInvalidRequest(name + " must be an integer").WithParam(name)
	}
	return n, nil
}

func list[T any](items []T) map[string]any {
	if items == nil {
		items = []T{}
	}
	return map[string]any{"data": items}
}

func (s *Server) writeFile(w http.ResponseWriter, exp *service.Export) {
	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exp.Filename+`"`)
	if exp.ArchiveKey != "" {
		w.Header().Set("X-Archive-Key", exp.ArchiveKey)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Data)
}
