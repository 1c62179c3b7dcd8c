package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// DraftReservation validates and prices a booking exactly like CreateReservation but
// only stores it as a pending draft for the caller to confirm.
func (s *Service) DraftReservation(ctx context.Context, sc tenant.Scope, conversationID string, in ReservationInput) (*domain.AgentDraft, error) {
	if err := authorize(sc, domain.PermReservationsWrite); err != nil {
		return nil, err
	}
	in.Source = domain.SourceAgent
	plan, err := s.planBooking(ctx, sc, in)
	if err != nil {
		return nil, err
	}

	payload := domain.ReservationDraft{
		RoomID:       plan.room.ID,
		RoomNumber:   plan.room.Number,
		CheckIn:      plan.stay.CheckIn,
		CheckOut:     plan.stay.CheckOut,
		Adults:       in.Adults,
		Children:     in.Children,
		Notes:        plan.in.Notes,
		RatePerNight: plan.rate,
		TotalAmount:  plan.total(),
	}
	if plan.guest != nil {
		payload.GuestID = plan.guest.ID
	} else {
		payload.GuestFirstName = plan.newGuest.FirstName
		payload.GuestLastName = plan.newGuest.LastName
		payload.GuestEmail = plan.newGuest.Email
		payload.GuestPhone = plan.newGuest.Phone
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft: %w", err)
	}

	d := &domain.AgentDraft{
		ID:             uuid.NewString(),
		HotelID:        sc.HotelID,
		StaffID:        sc.StaffID,
		ConversationID: conversationID,
		Kind:           domain.DraftKindReservation,
		Payload:        types.JSONText(raw),
		Summary: fmt.Sprintf("%s, room %s, %s to %s (%d nights), %s",
			plan.guestName(), plan.room.Number, plan.stay.CheckIn, plan.stay.CheckOut, plan.stay.Nights(),
			domain.FormatMoney(plan.total(), plan.hotel.Currency)),
		Status:    domain.DraftPending,
		ExpiresAt: s.now().Add(s.opts.DraftTTL).UTC(),
	}
	if err := s.store.CreateDraft(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ownDraft loads a draft that belongs to the caller.
func (s *Service) ownDraft(ctx context.Context, sc tenant.Scope, id string) (*domain.AgentDraft, error) {
	d, err := s.store.GetDraft(ctx, sc.HotelID, id)
	if err != nil {
		return nil, storeErr(err, "draft")
	}
	if d.StaffID != sc.StaffID {
		return nil, domain.ErrNotFound("draft not found")
	}
	return d, nil
}

func draftStateError(d *domain.AgentDraft) error {
	if d.Status == domain.DraftExpired {
		return domain.ErrConflict("draft has expired").WithCode(domain.ErrorCodeDraftExpired)
	}
	return domain.ErrConflict("draft is already " + string(d.Status))
}

// ConfirmDraft books a pending, unexpired draft owned by the caller. A draft is
// confirmed at most once.
func (s *Service) ConfirmDraft(ctx context.Context, sc tenant.Scope, id string) (*domain.Reservation, error) {
	if err := authorize(sc, domain.PermReservationsWrite); err != nil {
		return nil, err
	}
	d, err := s.ownDraft(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.DraftPending {
		return nil, draftStateError(d)
	}
	if !s.now().Before(d.ExpiresAt) {
		_ = s.store.TransitionDraft(ctx, sc.HotelID, d.ID, domain.DraftPending, domain.DraftExpired, "")
		return nil, domain.ErrConflict("draft has expired").WithCode(domain.ErrorCodeDraftExpired)
	}
	if d.Kind != domain.DraftKindReservation {
		return nil, domain.ErrInvalidRequest("unsupported draft kind " + d.Kind)
	}

	var payload domain.ReservationDraft
	if err := json.Unmarshal(d.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode draft %s: %w", d.ID, err)
	}
	in := ReservationInput{
		GuestID:      payload.GuestID,
		RoomID:       payload.RoomID,
		CheckIn:      payload.CheckIn,
		CheckOut:     payload.CheckOut,
		Adults:       payload.Adults,
		Children:     payload.Children,
		Source:       domain.SourceAgent,
		Notes:        payload.Notes,
		RatePerNight: payload.RatePerNight,
		Confirm:      true,
	}
	if payload.GuestID == "" {
		in.Guest = &GuestInput{
			FirstName: payload.GuestFirstName,
			LastName:  payload.GuestLastName,
			Email:     payload.GuestEmail,
			Phone:     payload.GuestPhone,
		}
	}

	// Claim the draft first so a concurrent confirm loses the race.
	if err := s.store.TransitionDraft(ctx, sc.HotelID, d.ID, domain.DraftPending, domain.DraftConfirmed, ""); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, domain.ErrConflict("draft is no longer pending")
		}
		return nil, storeErr(err, "draft")
	}

	plan, err := s.planBooking(ctx, sc, in)
	var res *domain.Reservation
	if err == nil {
		res, err = s.book(ctx, sc, plan)
	}
	if err != nil {
		if rerr := s.store.TransitionDraft(ctx, sc.HotelID, d.ID, domain.DraftConfirmed, domain.DraftPending, ""); rerr != nil {
			s.logger.Error("failed to release draft", slog.String("draft_id", d.ID), slog.String("error", rerr.Error()))
		}
		return nil, err
	}

	if err := s.store.TransitionDraft(ctx, sc.HotelID, d.ID, domain.DraftConfirmed, domain.DraftConfirmed, res.ID); err != nil {
		s.logger.Error("failed to link draft to reservation",
			slog.String("draft_id", d.ID), slog.String("reservation_id", res.ID), slog.String("error", err.Error()))
	}
	s.audit(ctx, sc, "draft.confirm", d.ID, res.Code)
	return res, nil
}

// DiscardDraft abandons a pending draft owned by the caller.
func (s *Service) DiscardDraft(ctx context.Context, sc tenant.Scope, id string) (*domain.AgentDraft, error) {
	if err := authorize(sc, domain.PermReservationsWrite); err != nil {
		return nil, err
	}
	d, err := s.ownDraft(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.DraftPending {
		return nil, draftStateError(d)
	}
	if err := s.store.TransitionDraft(ctx, sc.HotelID, d.ID, domain.DraftPending, domain.DraftDiscarded, ""); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, domain.ErrConflict("draft is no longer pending")
		}
		return nil, storeErr(err, "draft")
	}
	d.Status = domain.DraftDiscarded
	return d, nil
}

// GetDraft returns one of the caller's drafts.
func (s *Service) GetDraft(ctx context.Context, sc tenant.Scope, id string) (*domain.AgentDraft, error) {
	if err := authorize(sc, domain.PermAgentUse); err != nil {
		return nil, err
	}
	return s.ownDraft(ctx, sc, id)
}

// ListDrafts lists the caller's drafts, optionally by status.
func (s *Service) ListDrafts(ctx context.Context, sc tenant.Scope, status domain.DraftStatus) ([]domain.AgentDraft, error) {
	if err := authorize(sc, domain.PermAgentUse); err != nil {
		return nil, err
	}
	return s.store.ListDrafts(ctx, sc.HotelID, sc.StaffID, status)
}

// ExpireStale marks overdue drafts expired and deletes expired sessions. It runs on a
// ticker in the server.
func (s *Service) ExpireStale(ctx context.Context) error {
	now := s.now()
	drafts, err := s.store.ExpireDrafts(ctx, now)
	if err != nil {
		return err
	}
	sessions, err := s.store.DeleteExpiredSessions(ctx, now)
	if err != nil {
		return err
	}
	if drafts > 0 || sessions > 0 {
		s.logger.Info("expired stale records",
			slog.Int64("drafts", drafts),
			slog.Int64("sessions", sessions))
	}
	return nil
}

// ListAudit returns recent audit events. Super admins see every hotel unless hotelID
// narrows it; hotel admins see their own hotel.
func (s *Service) ListAudit(ctx context.Context, sc tenant.Scope, hotelID string, limit int) ([]domain.AuditEvent, error) {
	if err := sc.Require(domain.PermStaffManage); err != nil {
		return nil, err
	}
	if !sc.SuperAdmin() {
		if err := sc.RequireHotel(); err != nil {
			return nil, err
		}
		hotelID = sc.HotelID
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.ListAudit(ctx, storage.AuditFilter{HotelID: hotelID, Limit: limit})
}
