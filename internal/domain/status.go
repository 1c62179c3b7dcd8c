package domain

import "fmt"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusCheckedIn  ReservationStatus = "checked_in"
	StatusCheckedOut ReservationStatus = "checked_out"
	StatusCancelled  ReservationStatus = "cancelled"
	StatusNoShow     ReservationStatus = "no_show"
)

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn: {StatusCheckedOut},
}

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Blocking reports whether a reservation in this state holds its room.
func (s ReservationStatus) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCheckedIn
}

// Editable reports whether dates, room and party size may still change.
func (s ReservationStatus) Editable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransition reports whether s may move to next.
func (s ReservationStatus) CanTransition(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition validates a status change and returns a conflict error when it is not allowed.
func (s ReservationStatus) Transition(next ReservationStatus) error {
	if !s.CanTransition(next) {
		return ErrConflict(fmt.Sprintf("cannot move reservation from %s to %s", s, next)).
			WithCode(ErrorCodeInvalidTransition)
	}
	return nil
}

// Badge returns the colour the front desk UI uses for the status pill.
func (s ReservationStatus) Badge() string {
	switch s {
	case StatusPending:
		return "amber"
	case StatusConfirmed:
		return "blue"
	case StatusCheckedIn:
		return "green"
	case StatusCheckedOut:
		return "gray"
	case StatusCancelled:
		return "red"
	case StatusNoShow:
		return "purple"
	default:
		return "gray"
	}
}

// BookingSource records the channel a reservation came through.
type BookingSource string

const (
	SourceDirect BookingSource = "direct"
	SourcePhone  BookingSource = "phone"
	SourceWalkIn BookingSource = "walk_in"
	SourceOTA    BookingSource = "ota"
	SourceAgent  BookingSource = "agent"
)

func (s BookingSource) Valid() bool {
	switch s {
	case SourceDirect, SourcePhone, SourceWalkIn, SourceOTA, SourceAgent:
		return true
	}
	return false
}

// RoomStatus is the operational state of a room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomOutOfOrder  RoomStatus = "out_of_order"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomOutOfOrder:
		return true
	}
	return false
}

// InService reports whether the room can be sold.
func (s RoomStatus) InService() bool {
	return s != RoomMaintenance && s != RoomOutOfOrder
}

func (s RoomStatus) Badge() string {
	switch s {
	case RoomAvailable:
		return "green"
	case RoomOccupied:
		return "blue"
	case RoomMaintenance:
		return "amber"
	default:
		return "red"
	}
}

// Housekeeping is the cleaning state of a room.
type Housekeeping string

const (
	HousekeepingClean     Housekeeping = "clean"
	HousekeepingDirty     Housekeeping = "dirty"
	HousekeepingInspected Housekeeping = "inspected"
)

func (h Housekeeping) Valid() bool {
	return h == HousekeepingClean || h == HousekeepingDirty || h == HousekeepingInspected
}

// FolioStatus is the state of a billing folio.
type FolioStatus string

const (
	FolioOpen   FolioStatus = "open"
	FolioClosed FolioStatus = "closed"
	FolioVoid   FolioStatus = "void"
)

// ItemKind classifies folio lines.
type ItemKind string

const (
	ItemRoom     ItemKind = "room"
	ItemService  ItemKind = "service"
	ItemTax      ItemKind = "tax"
	ItemDiscount ItemKind = "discount"
)

func (k ItemKind) Valid() bool {
	return k == ItemRoom || k == ItemService || k == ItemTax || k == ItemDiscount
}

// PaymentMethod is how a payment was received.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentVoucher  PaymentMethod = "voucher"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentVoucher:
		return true
	}
	return false
}

// DraftStatus is the state of an agent-prepared action awaiting confirmation.
type DraftStatus string

const (
	DraftPending   DraftStatus = "pending"
	DraftConfirmed DraftStatus = "confirmed"
	DraftDiscarded DraftStatus = "discarded"
	DraftExpired   DraftStatus = "expired"
)
