// Package storage defines the persistence ports of the property-management system.
// Every tenant-scoped method takes the hotel id and must filter on it; an id that
// belongs to another hotel is reported as ErrNotFound.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

var (
	// ErrNotFound is returned when a row does not exist in the caller's hotel.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a uniqueness constraint is violated or a
	// conditional update lost a race.
	ErrConflict = errors.New("conflict")

	// ErrOverlap is returned when a reservation would double-book its room.
	ErrOverlap = errors.New("room is already booked for those dates")
)

type HotelStore interface {
	CreateHotel(ctx context.Context, h *domain.Hotel) error
	UpdateHotel(ctx context.Context, h *domain.Hotel) error
	GetHotel(ctx context.Context, id string) (*domain.Hotel, error)
	ListHotels(ctx context.Context) ([]domain.HotelSummary, error)
}

type InventoryStore interface {
	CreateRoomType(ctx context.Context, rt *domain.RoomType) error
	UpdateRoomType(ctx context.Context, rt *domain.RoomType) error
	GetRoomType(ctx context.Context, hotelID, id string) (*domain.RoomType, error)
	ListRoomTypes(ctx context.Context, hotelID string) ([]domain.RoomType, error)
	DeleteRoomType(ctx context.Context, hotelID, id string) error

	CreateRoom(ctx context.Context, room *domain.Room) error
	UpdateRoom(ctx context.Context, room *domain.Room) error
	GetRoom(ctx context.Context, hotelID, id string) (*domain.Room, error)
	ListRooms(ctx context.Context, hotelID string) ([]domain.Room, error)
	CountRooms(ctx context.Context, hotelID, roomTypeID string) (int, error)
	DeleteRoom(ctx context.Context, hotelID, id string) error
}

type GuestStore interface {
	CreateGuest(ctx context.Context, g *domain.Guest) error
	UpdateGuest(ctx context.Context, g *domain.Guest) error
	GetGuest(ctx context.Context, hotelID, id string) (*domain.Guest, error)
	FindGuestByEmail(ctx context.Context, hotelID, email string) (*domain.Guest, error)
	// SearchGuests matches q against name, email, phone and document number.
	// An empty q lists guests by last name.
	SearchGuests(ctx context.Context, hotelID, q string, limit int) ([]domain.Guest, error)
	DeleteGuest(ctx context.Context, hotelID, id string) error
}

// ReservationFilter selects reservations. Zero fields do not filter.
type ReservationFilter struct {
	Statuses []domain.ReservationStatus
	RoomID   string
	GuestID  string

	// From and To select reservations whose stay overlaps [From, To).
	From domain.Date
	To   domain.Date

	CheckInOn  domain.Date
	CheckOutOn domain.Date

	Limit  int
	Offset int
}

type ReservationStore interface {
	// CreateReservation inserts the reservation and its folio in one transaction,
	// re-checking for blocking overlaps on the room first. It returns ErrOverlap when
	// the room was taken and ErrConflict when the confirmation code is in use.
	CreateReservation(ctx context.Context, res *domain.Reservation, folio *domain.Folio) error
	// UpdateReservation saves the reservation, re-checking overlaps when it is blocking.
	UpdateReservation(ctx context.Context, res *domain.Reservation) error
	GetReservation(ctx context.Context, hotelID, id string) (*domain.Reservation, error)
	GetReservationByCode(ctx context.Context, hotelID, code string) (*domain.Reservation, error)
	ListReservations(ctx context.Context, hotelID string, f ReservationFilter) ([]domain.Reservation, error)
}

// FolioFilter selects folios for reporting.
type FolioFilter struct {
	Status domain.FolioStatus
	// ServiceFrom and ServiceTo keep folios with at least one item dated in [ServiceFrom, ServiceTo).
	ServiceFrom domain.Date
	ServiceTo   domain.Date
}

type FolioStore interface {
	GetFolio(ctx context.Context, hotelID, id string) (*domain.Folio, error)
	GetFolioByReservation(ctx context.Context, hotelID, reservationID string) (*domain.Folio, error)
	ListFolios(ctx context.Context, hotelID string, f FolioFilter) ([]domain.Folio, error)
	UpdateFolio(ctx context.Context, f *domain.Folio) error
	AddFolioItem(ctx context.Context, hotelID string, item *domain.FolioItem) error
	DeleteFolioItem(ctx context.Context, hotelID, folioID, itemID string) error
	// ReplaceFolioItems swaps every item of the given kinds for items.
	ReplaceFolioItems(ctx context.Context, hotelID, folioID string, kinds []domain.ItemKind, items []domain.FolioItem) error
	AddPayment(ctx context.Context, hotelID string, p *domain.Payment) error
	ListPayments(ctx context.Context, hotelID string, from, to time.Time) ([]domain.Payment, error)
}

type StaffStore interface {
	CreateStaff(ctx context.Context, s *domain.Staff) error
	UpdateStaff(ctx context.Context, s *domain.Staff) error
	GetStaff(ctx context.Context, id string) (*domain.Staff, error)
	GetStaffByEmail(ctx context.Context, email string) (*domain.Staff, error)
	// ListStaff lists a hotel's staff. An empty hotelID lists super admins.
	ListStaff(ctx context.Context, hotelID string) ([]domain.Staff, error)

	CreateSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, tokenHash string) (*domain.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteStaffSessions(ctx context.Context, staffID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type DraftStore interface {
	CreateDraft(ctx context.Context, d *domain.AgentDraft) error
	GetDraft(ctx context.Context, hotelID, id string) (*domain.AgentDraft, error)
	// TransitionDraft moves a draft out of from. It returns ErrConflict when the
	// draft is no longer in that state.
	TransitionDraft(ctx context.Context, hotelID, id string, from, to domain.DraftStatus, resultID string) error
	ListDrafts(ctx context.Context, hotelID, staffID string, status domain.DraftStatus) ([]domain.AgentDraft, error)
	ExpireDrafts(ctx context.Context, now time.Time) (int64, error)
}

type ConversationStore interface {
	CreateConversation(ctx context.Context, c *domain.Conversation) error
	GetConversation(ctx context.Context, hotelID, id string) (*domain.Conversation, error)
	ListConversations(ctx context.Context, hotelID, staffID string, limit int) ([]domain.Conversation, error)
	AppendMessages(ctx context.Context, hotelID, conversationID string, msgs ...domain.ChatMessage) error
	DeleteConversation(ctx context.Context, hotelID, id string) error
}

// AuditFilter selects audit events. An empty HotelID returns events for every hotel.
type AuditFilter struct {
	HotelID string
	ActorID string
	Limit   int
}

type AuditStore interface {
	RecordAudit(ctx context.Context, e *domain.AuditEvent) error
	ListAudit(ctx context.Context, f AuditFilter) ([]domain.AuditEvent, error)
}

// Store is the full persistence surface.
type Store interface {
	HotelStore
	InventoryStore
	GuestStore
	ReservationStore
	FolioStore
	StaffStore
	DraftStore
	ConversationStore
	AuditStore

	Ping(ctx context.Context) error
	Close() error
}
