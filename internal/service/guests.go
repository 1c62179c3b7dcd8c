package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

const (
	DefaultSearchLimit = 25
	MaxSearchLimit     = 200
)

type GuestInput struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Nationality    string `json:"nationality"`
	DocumentNumber string `json:"document_number"`
	VIP            bool   `json:"vip"`
	Notes          string `json:"notes"`
}

func (in *GuestInput) normalize() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.FirstName == "" {
		return domain.ErrInvalidRequest("first_name is required").WithParam("first_name")
	}
	if in.LastName == "" {
		return domain.ErrInvalidRequest("last_name is required").WithParam("last_name")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email != "" {
		addr, err := mail.ParseAddress(in.Email)
		if err != nil || addr.Address != in.Email {
			return domain.ErrInvalidRequest("email is not a valid address").WithParam("email")
		}
	}
	in.Phone = strings.TrimSpace(in.Phone)
	in.Nationality = strings.ToUpper(strings.TrimSpace(in.Nationality))
	in.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	in.Notes = strings.TrimSpace(in.Notes)
	return nil
}

func (in GuestInput) apply(g *domain.Guest) {
	g.FirstName = in.FirstName
	g.LastName = in.LastName
	g.Email = in.Email
	g.Phone = in.Phone
	g.Nationality = in.Nationality
	g.DocumentNumber = in.DocumentNumber
	g.VIP = in.VIP
	g.Notes = in.Notes
}

// emailTaken reports whether another guest of the hotel uses email.
func (s *Service) emailTaken(ctx context.Context, hotelID, email, exceptID string) (bool, error) {
	if email == "" {
		return false, nil
	}
	existing, err := s.store.FindGuestByEmail(ctx, hotelID, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != exceptID, nil
}

func (s *Service) CreateGuest(ctx context.Context, sc tenant.Scope, in GuestInput) (*domain.Guest, error) {
	if err := authorize(sc, domain.PermGuestsWrite); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	return s.createGuest(ctx, sc, in)
}

func (s *Service) createGuest(ctx context.Context, sc tenant.Scope, in GuestInput) (*domain.Guest, error) {
	taken, err := s.emailTaken(ctx, sc.HotelID, in.Email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrConflict("a guest with email " + in.Email + " already exists").WithParam("email")
	}
	g := &domain.Guest{ID: uuid.NewString(), HotelID: sc.HotelID}
	in.apply(g)
	if err := s.store.CreateGuest(ctx, g); err != nil {
		return nil, storeErr(err, "guest")
	}
	return g, nil
}

func (s *Service) UpdateGuest(ctx context.Context, sc tenant.Scope, id string, in GuestInput) (*domain.Guest, error) {
	if err := authorize(sc, domain.PermGuestsWrite); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	g, err := s.store.GetGuest(ctx, sc.HotelID, id)
	if err != nil {
		return nil, storeErr(err, "guest")
	}
	taken, err := s.emailTaken(ctx, sc.HotelID, in.Email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrConflict("a guest with email " + in.Email + " already exists").WithParam("email")
	}
	in.apply(g)
	if err := s.store.UpdateGuest(ctx, g); err != nil {
		return nil, storeErr(err, "guest")
	}
	return g, nil
}

func (s *Service) GetGuest(ctx context.Context, sc tenant.Scope, id string) (*domain.Guest, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	g, err := s.store.GetGuest(ctx, sc.HotelID, id)
	return g, storeErr(err, "guest")
}

// DeleteGuest removes a guest without reservations.
func (s *Service) DeleteGuest(ctx context.Context, sc tenant.Scope, id string) error {
	if err := authorize(sc, domain.PermGuestsWrite); err != nil {
		return err
	}
	stays, err := s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{GuestID: id, Limit: 1})
	if err != nil {
		return err
	}
	if len(stays) > 0 {
		return domain.ErrConflict("guest has reservations").WithCode(domain.ErrorCodeInUse)
	}
	if err := s.store.DeleteGuest(ctx, sc.HotelID, id); err != nil {
		return storeErr(err, "guest")
	}
	s.audit(ctx, sc, "guest.delete", id, "")
	return nil
}

// SearchGuests matches q against names, email, phone and document number.
func (s *Service) SearchGuests(ctx context.Context, sc tenant.Scope, q string, limit int) ([]domain.Guest, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}
	return s.store.SearchGuests(ctx, sc.HotelID, strings.TrimSpace(q), limit)
}

// GuestHistory is a guest's profile with past and upcoming stays.
type GuestHistory struct {
	Guest        *domain.Guest        `json:"guest"`
	Reservations []domain.Reservation `json:"reservations"`
	Stays        int                  `json:"stays"`
	Nights       int                  `json:"nights"`
	TotalSpent   int64                `json:"total_spent"`
	Cancelled    int                  `json:"cancelled"`
	NoShows      int                  `json:"no_shows"`
}

func (s *Service) GuestHistory(ctx context.Context, sc tenant.Scope, id string) (*GuestHistory, error) {
	g, err := s.GetGuest(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	reservations, err := s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{GuestID: id})
	if err != nil {
		return nil, err
	}

	h := &GuestHistory{Guest: g, Reservations: reservations}
	for _, r := range reservations {
		switch r.Status {
		case domain.StatusCheckedOut:
			h.Stays++
			h.Nights += r.Nights()
			h.TotalSpent += r.TotalAmount
		case domain.StatusCancelled:
			h.Cancelled++
		case domain.StatusNoShow:
			h.NoShows++
		}
	}
	return h, nil
}
