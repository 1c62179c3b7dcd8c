package agent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/tjfontaine/innkeeper/internal/analytics"
	"github.com/tjfontaine/innkeeper/internal/availability"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/service"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// Backend is the slice of the service the agent drives.
type Backend interface {
	GetHotel(ctx context.Context, sc tenant.Scope, id string) (*domain.Hotel, error)
	CheckAvailability(ctx context.Context, sc tenant.Scope, stay domain.Stay, q service.AvailabilityQuery) (*service.Availability, error)
	DraftReservation(ctx context.Context, sc tenant.Scope, conversationID string, in service.ReservationInput) (*domain.AgentDraft, error)
	ConfirmDraft(ctx context.Context, sc tenant.Scope, id string) (*domain.Reservation, error)
	Report(ctx context.Context, sc tenant.Scope, from, to domain.Date) (*analytics.Report, error)
	Dashboard(ctx context.Context, sc tenant.Scope) (*analytics.Dashboard, error)
	SearchGuests(ctx context.Context, sc tenant.Scope, q string, limit int) ([]domain.Guest, error)
	GetReservation(ctx context.Context, sc tenant.Scope, idOrCode string) (*domain.Reservation, error)

	StartConversation(ctx context.Context, sc tenant.Scope, firstMessage string) (*domain.Conversation, error)
	GetConversation(ctx context.Context, sc tenant.Scope, id string) (*domain.Conversation, error)
	AppendMessages(ctx context.Context, sc tenant.Scope, conversationID string, msgs ...domain.ChatMessage) error
}

// DefaultTools returns the front-desk tool set.
func DefaultTools(b Backend) []Tool {
	return []Tool{
		&checkAvailability{b},
		&draftReservation{b},
		&confirmReservation{b},
		&getAnalytics{b},
		&findGuest{b},
		&getReservation{b},
	}
}

func object(required []string, props map[string]any) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func integer(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func date(desc string) map[string]any {
	return map[string]any{"type": "string", "format": "date", "description": desc + " (YYYY-MM-DD)"}
}

type checkAvailability struct{ b Backend }

func (t *checkAvailability) Name() string { return "check_availability" }

func (t *checkAvailability) Description() string {
	return "List rooms free for a whole stay, with nightly rates and stay totals per room type."
}

func (t *checkAvailability) Parameters() map[string]any {
	return object([]string{"check_in", "check_out"}, map[string]any{
		"check_in":     date("Arrival date"),
		"check_out":    date("Departure date"),
		"guests":       integer("Total number of guests, to filter by occupancy"),
		"room_type_id": str("Restrict to one room type"),
	})
}

type availableRoom struct {
	RoomID   string `json:"room_id"`
	Number   string `json:"number"`
	RoomType string `json:"room_type"`
}

type availabilityResult struct {
	CheckIn  domain.Date                `json:"check_in"`
	CheckOut domain.Date                `json:"check_out"`
	Nights   int                        `json:"nights"`
	Rooms    []availableRoom            `json:"rooms"`
	Types    []availability.TypeSummary `json:"room_types"`
}

func (t *checkAvailability) Call(ctx context.Context, inv Invocation, args json.RawMessage) (any, error) {
	var in struct {
		CheckIn    domain.Date `json:"check_in"`
		CheckOut   domain.Date `json:"check_out"`
		Guests     int         `json:"guests"`
		RoomTypeID string      `json:"room_type_id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	avail, err := t.b.CheckAvailability(ctx, inv.Scope, domain.Stay{CheckIn: in.CheckIn, CheckOut: in.CheckOut},
		service.AvailabilityQuery{RoomTypeID: in.RoomTypeID, Guests: in.Guests})
	if err != nil {
		return nil, err
	}

	out := availabilityResult{
		CheckIn:  avail.Stay.CheckIn,
		CheckOut: avail.Stay.CheckOut,
		Nights:   avail.Nights,
		Rooms:    make([]availableRoom, 0, len(avail.Rooms)),
		Types:    avail.Types,
	}
	for _, r := range avail.Rooms {
		out.Rooms = append(out.Rooms, availableRoom{RoomID: r.ID, Number: r.Number, RoomType: r.RoomTypeName})
	}
	return out, nil
}

type draftReservation struct{ b Backend }

func (t *draftReservation) Name() string { return "draft_reservation" }

func (t *draftReservation) Description() string {
	return "Prepare a reservation for the staff member to approve. Nothing is booked until " +
		"confirm_reservation is called with the returned draft_id after the user explicitly agrees."
}

func (t *draftReservation) Parameters() map[string]any {
	return object([]string{"room_id", "check_in", "check_out", "adults"}, map[string]any{
		"room_id":   str("Room id from check_availability"),
		"check_in":  date("Arrival date"),
		"check_out": date("Departure date"),
		"adults":    integer("Number of adults"),
		"children":  integer("Number of children"),
		"guest_id":  str("Existing guest id from find_guest"),
		"guest": object([]string{"last_name"}, map[string]any{
			"first_name": str("Given name"),
			"last_name":  str("Family name"),
			"email":      str("Email address"),
			"phone":      str("Phone number"),
		}),
		"notes": str("Special requests"),
	})
}

type draftResult struct {
	DraftID   string    `json:"draft_id"`
	Summary   string    `json:"summary"`
	ExpiresAt time.Time `json:"expires_at"`
	Status    string    `json:"status"`

	draft *domain.AgentDraft
}

func (t *draftReservation) Call(ctx context.Context, inv Invocation, args json.RawMessage) (any, error) {
	var in struct {
		RoomID   string              `json:"room_id"`
		CheckIn  domain.Date         `json:"check_in"`
		CheckOut domain.Date         `json:"check_out"`
		Adults   int                 `json:"adults"`
		Children int                 `json:"children"`
		GuestID  string              `json:"guest_id"`
		Guest    *service.GuestInput `json:"guest"`
		Notes    string              `json:"notes"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	d, err := t.b.DraftReservation(ctx, inv.Scope, inv.ConversationID, service.ReservationInput{
		GuestID:  in.GuestID,
		Guest:    in.Guest,
		RoomID:   in.RoomID,
		CheckIn:  in.CheckIn,
		CheckOut: in.CheckOut,
		Adults:   in.Adults,
		Children: in.Children,
		Notes:    in.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &draftResult{
		DraftID:   d.ID,
		Summary:   d.Summary,
		ExpiresAt: d.ExpiresAt,
		Status:    "awaiting_confirmation",
		draft:     d,
	}, nil
}

type confirmReservation struct{ b Backend }

func (t *confirmReservation) Name() string { return "confirm_reservation" }

func (t *confirmReservation) Description() string {
	return "Book a drafted reservation. Only call this after the user has approved the draft summary."
}

func (t *confirmReservation) Parameters() map[string]any {
	return object([]string{"draft_id"}, map[string]any{
		"draft_id": str("Id returned by draft_reservation"),
	})
}

type confirmResult struct {
	ReservationID string                   `json:"reservation_id"`
	Code          string                   `json:"code"`
	Status        domain.ReservationStatus `json:"status"`
	Room          string                   `json:"room"`
	CheckIn       domain.Date              `json:"check_in"`
	CheckOut      domain.Date              `json:"check_out"`
	TotalAmount   int64                    `json:"total_amount"`

	draftID string
}

func (t *confirmReservation) Call(ctx context.Context, inv Invocation, args json.RawMessage) (any, error) {
	var in struct {
		DraftID string `json:"draft_id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.DraftID) == "" {
		return nil, domain.ErrInvalidRequest("draft_id is required").WithParam("draft_id")
	}
	res, err := t.b.ConfirmDraft(ctx, inv.Scope, in.DraftID)
	if err != nil {
		return nil, err
	}
	return &confirmResult{
		ReservationID: res.ID,
		Code:          res.Code,
		Status:        res.Status,
		Room:          res.RoomNumber,
		CheckIn:       res.CheckIn,
		CheckOut:      res.CheckOut,
		TotalAmount:   res.TotalAmount,
		draftID:       in.DraftID,
	}, nil
}

type getAnalytics struct{ b Backend }

func (t *getAnalytics) Name() string { return "get_analytics" }

func (t *getAnalytics) Description() string {
	return "Occupancy, ADR, RevPAR and revenue for a date range. Without dates, returns today's " +
		"front-desk dashboard (arrivals, departures, in-house, open balance)."
}

func (t *getAnalytics) Parameters() map[string]any {
	return object(nil, map[string]any{
		"from": date("First night of the period"),
		"to":   date("Day after the last night"),
	})
}

func (t *getAnalytics) Call(ctx context.Context, inv Invocation, args json.RawMessage) (any, error) {
	var in struct {
		From domain.Date `json:"from"`
		To   domain.Date `json:"to"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if in.From.IsZero() && in.To.IsZero() {
		return t.b.Dashboard(ctx, inv.Scope)
	}
	rep, err := t.b.Report(ctx, inv.Scope, in.From, in.To)
	if err != nil {
		return nil, err
	}
	// Daily rows are noise for the model.
	summary := *rep
	summary.Daily = nil
	return summary, nil
}

type findGuest struct{ b Backend }

func (t *findGuest) Name() string { return "find_guest" }

func (t *findGuest) Description() string {
	return "Search guest profiles by name, email or phone."
}

func (t *findGuest) Parameters() map[string]any {
	return object([]string{"query"}, map[string]any{
		"query": str("Name, email or phone fragment"),
		"limit": integer("Maximum results, default 10"),
	})
}

type guestMatch struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	VIP   bool   `json:"vip,omitempty"`
}

func (t *findGuest) Call(ctx context.Context, inv Invocation, args json.RawMessage) (any, error) {
	var in struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Query) == "" {
		return nil, domain.ErrInvalidRequest("query is required").WithParam("query")
	}
	if in.Limit <= 0 {
		in.Limit = 10
	}
	guests, err := t.b.SearchGuests(ctx, inv.Scope, in.Query, in.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]guestMatch, len(guests))
	for i := range guests {
		g := &guests[i]
		out[i] = guestMatch{ID: g.ID, Name: g.FullName(), Email: g.Email, Phone: g.Phone, VIP: g.VIP}
	}
	return map[string]any{"guests": out}, nil
}

type getReservation struct{ b Backend }

func (t *getReservation) Name() string { return "get_reservation" }

func (t *getReservation) Description() string {
	return "Look up a reservation by id or confirmation code (RSV-XXXXXX)."
}

func (t *getReservation) Parameters() map[string]any {
	return object([]string{"reservation"}, map[string]any{
		"reservation": str("Reservation id or confirmation code"),
	})
}

func (t *getReservation) Call(ctx context.Context, inv Invocation, args json.RawMessage) (any, error) {
	var in struct {
		Reservation string `json:"reservation"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Reservation) == "" {
		return nil, domain.ErrInvalidRequest("reservation is required").WithParam("reservation")
	}
	return t.b.GetReservation(ctx, inv.Scope, in.Reservation)
}
