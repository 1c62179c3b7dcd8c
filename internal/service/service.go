// Package service implements the property-management operations shared by the HTTP
// API, the front-desk agent and the CLI. Every operation takes the caller's scope and
// enforces its hotel and role before touching the store.
package service

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/innkeeper/internal/archive"
	"github.com/tjfontaine/innkeeper/internal/auth"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// Defaults for Options fields left at zero.
const (
	DefaultSessionTTL       = 12 * time.Hour
	DefaultImpersonationTTL = 2 * time.Hour
	DefaultDraftTTL         = 15 * time.Minute
)

// Options tunes lifetimes.
type Options struct {
	SessionTTL       time.Duration
	ImpersonationTTL time.Duration
	DraftTTL         time.Duration
}

// Service is the business layer over a Store.
type Service struct {
	store   storage.Store
	signer  *auth.Signer
	archive archive.Archiver
	opts    Options
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSigner enables impersonation with the given cookie signer.
func WithSigner(signer *auth.Signer) Option {
	return func(s *Service) { s.signer = signer }
}

// WithArchive keeps a copy of every export in object storage.
func WithArchive(a archive.Archiver) Option {
	return func(s *Service) { s.archive = a }
}

// WithOptions sets session, impersonation and draft lifetimes.
func WithOptions(o Options) Option {
	return func(s *Service) { s.opts = o }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a Service.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.opts.SessionTTL <= 0 {
		s.opts.SessionTTL = DefaultSessionTTL
	}
	if s.opts.ImpersonationTTL <= 0 {
		s.opts.ImpersonationTTL = DefaultImpersonationTTL
	}
	if s.opts.DraftTTL <= 0 {
		s.opts.DraftTTL = DefaultDraftTTL
	}
	return s
}

// Store exposes the underlying store for health checks.
func (s *Service) Store() storage.Store {
	return s.store
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// authorize checks that the scope is bound to a hotel and holds perm.
func authorize(sc tenant.Scope, perm domain.Permission) error {
	if err := sc.RequireHotel(); err != nil {
		return err
	}
	return sc.Require(perm)
}

// storeErr translates storage sentinels into API errors naming entity.
func storeErr(err error, entity string) error {
	if err == nil {
		return nil
	}
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return domain.ErrNotFound(entity + " not found")
	case errors.Is(err, storage.ErrOverlap):
		return domain.ErrConflict("room is already booked for those dates").WithCode(domain.ErrorCodeRoomUnavailable)
	case errors.Is(err, storage.ErrConflict):
		return domain.ErrConflict(entity + " already exists")
	default:
		return err
	}
}

// hotel loads the scope's hotel.
func (s *Service) hotel(ctx context.Context, sc tenant.Scope) (*domain.Hotel, error) {
	h, err := s.store.GetHotel(ctx, sc.HotelID)
	if err != nil {
		return nil, storeErr(err, "hotel")
	}
	return h, nil
}

// today returns the current calendar day at the hotel.
func (s *Service) today(h *domain.Hotel) domain.Date {
	return domain.DateOf(s.now().In(h.Location()))
}

// audit records an event. Failures are logged, never returned.
func (s *Service) audit(ctx context.Context, sc tenant.Scope, action, subject, detail string) {
	e := &domain.AuditEvent{
		ID:      uuid.NewString(),
		HotelID: sc.HotelID,
		ActorID: sc.StaffID,
		Action:  action,
		Subject: subject,
		Detail:  detail,
	}
	if err := s.store.RecordAudit(ctx, e); err != nil {
		s.logger.Error("failed to record audit event",
			slog.String("action", action),
			slog.String("subject", subject),
			slog.String("error", err.Error()))
	}
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// randomCode returns n characters from an alphabet without look-alike glyphs.
func randomCode(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}
