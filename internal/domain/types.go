package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Hotel is a tenant. Every other entity except super-admin staff belongs to one.
type Hotel struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Slug         string    `json:"slug" db:"slug"`
	Address      string    `json:"address,omitempty" db:"address"`
	Phone        string    `json:"phone,omitempty" db:"phone"`
	Email        string    `json:"email,omitempty" db:"email"`
	Currency     string    `json:"currency" db:"currency"`
	Timezone     string    `json:"timezone" db:"timezone"`
	TaxRateBP    int       `json:"tax_rate_bp" db:"tax_rate_bp"`
	CheckInTime  string    `json:"check_in_time" db:"check_in_time"`
	CheckOutTime string    `json:"check_out_time" db:"check_out_time"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Location resolves the hotel's timezone, falling back to UTC.
func (h *Hotel) Location() *time.Location {
	if h == nil || h.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HotelSummary is a hotel row with the counts shown on the super-admin overview.
type HotelSummary struct {
	Hotel
	RoomCount  int `json:"room_count" db:"room_count"`
	StaffCount int `json:"staff_count" db:"staff_count"`
}

// StringList is a string slice persisted as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

type RoomType struct {
	ID           string     `json:"id" db:"id"`
	HotelID      string     `json:"hotel_id" db:"hotel_id"`
	Name         string     `json:"name" db:"name"`
	Description  string     `json:"description,omitempty" db:"description"`
	BaseRate     int64      `json:"base_rate" db:"base_rate"`
	MaxOccupancy int        `json:"max_occupancy" db:"max_occupancy"`
	Amenities    StringList `json:"amenities" db:"amenities"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

type Room struct {
	ID           string       `json:"id" db:"id"`
	HotelID      string       `json:"hotel_id" db:"hotel_id"`
	RoomTypeID   string       `json:"room_type_id" db:"room_type_id"`
	Number       string       `json:"number" db:"number"`
	Floor        int          `json:"floor" db:"floor"`
	Status       RoomStatus   `json:"status" db:"status"`
	Housekeeping Housekeeping `json:"housekeeping" db:"housekeeping"`
	Notes        string       `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`

	RoomTypeName string `json:"room_type_name,omitempty" db:"room_type_name"`
}

type Guest struct {
	ID             string    `json:"id" db:"id"`
	HotelID        string    `json:"hotel_id" db:"hotel_id"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	Email          string    `json:"email,omitempty" db:"email"`
	Phone          string    `json:"phone,omitempty" db:"phone"`
	Nationality    string    `json:"nationality,omitempty" db:"nationality"`
	DocumentNumber string    `json:"document_number,omitempty" db:"document_number"`
	VIP            bool      `json:"vip" db:"vip"`
	Notes          string    `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name.
func (g *Guest) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}

type Reservation struct {
	ID           string            `json:"id" db:"id"`
	HotelID      string            `json:"hotel_id" db:"hotel_id"`
	Code         string            `json:"code" db:"code"`
	GuestID      string            `json:"guest_id" db:"guest_id"`
	RoomID       string            `json:"room_id" db:"room_id"`
	CheckIn      Date              `json:"check_in" db:"check_in"`
	CheckOut     Date              `json:"check_out" db:"check_out"`
	Adults       int               `json:"adults" db:"adults"`
	Children     int               `json:"children" db:"children"`
	Status       ReservationStatus `json:"status" db:"status"`
	Source       BookingSource     `json:"source" db:"source"`
	RatePerNight int64             `json:"rate_per_night" db:"rate_per_night"`
	TotalAmount  int64             `json:"total_amount" db:"total_amount"`
	Notes        string            `json:"notes,omitempty" db:"notes"`
	CancelReason string            `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CreatedBy    string            `json:"created_by,omitempty" db:"created_by"`
	CheckedInAt  *time.Time        `json:"checked_in_at,omitempty" db:"checked_in_at"`
	CheckedOutAt *time.Time        `json:"checked_out_at,omitempty" db:"checked_out_at"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`

	GuestName  string `json:"guest_name,omitempty" db:"guest_name"`
	RoomNumber string `json:"room_number,omitempty" db:"room_number"`
}

// Stay returns the reservation's night range.
func (r *Reservation) Stay() Stay {
	return Stay{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

// Nights returns the number of nights booked.
func (r *Reservation) Nights() int {
	return r.Stay().Nights()
}

// Guests returns the party size.
func (r *Reservation) Guests() int {
	return r.Adults + r.Children
}

type Folio struct {
	ID            string      `json:"id" db:"id"`
	HotelID       string      `json:"hotel_id" db:"hotel_id"`
	ReservationID string      `json:"reservation_id" db:"reservation_id"`
	Number        string      `json:"number" db:"number"`
	Status        FolioStatus `json:"status" db:"status"`
	Currency      string      `json:"currency" db:"currency"`
	TaxRateBP     int         `json:"tax_rate_bp" db:"tax_rate_bp"`
	ClosedAt      *time.Time  `json:"closed_at,omitempty" db:"closed_at"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`

	Items    []FolioItem `json:"items" db:"-"`
	Payments []Payment   `json:"payments" db:"-"`
}

type FolioItem struct {
	ID          string    `json:"id" db:"id"`
	FolioID     string    `json:"folio_id" db:"folio_id"`
	Kind        ItemKind  `json:"kind" db:"kind"`
	Description string    `json:"description" db:"description"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UnitAmount  int64     `json:"unit_amount" db:"unit_amount"`
	Amount      int64     `json:"amount" db:"amount"`
	ServiceDate Date      `json:"service_date" db:"service_date"`
	PostedBy    string    `json:"posted_by,omitempty" db:"posted_by"`
	PostedAt    time.Time `json:"posted_at" db:"posted_at"`
}

type Payment struct {
	ID         string        `json:"id" db:"id"`
	FolioID    string        `json:"folio_id" db:"folio_id"`
	Method     PaymentMethod `json:"method" db:"method"`
	Amount     int64         `json:"amount" db:"amount"`
	Reference  string        `json:"reference,omitempty" db:"reference"`
	ReceivedBy string        `json:"received_by,omitempty" db:"received_by"`
	ReceivedAt time.Time     `json:"received_at" db:"received_at"`
}

// FolioTotals are the derived amounts of a folio, in minor units.
type FolioTotals struct {
	Charges   int64 `json:"charges"`
	Discounts int64 `json:"discounts"`
	Tax       int64 `json:"tax"`
	Total     int64 `json:"total"`
	Paid      int64 `json:"paid"`
	Balance   int64 `json:"balance"`
}

// Totals sums the folio's items and payments.
func (f *Folio) Totals() FolioTotals {
	var t FolioTotals
	for _, item := range f.Items {
		switch item.Kind {
		case ItemTax:
			t.Tax += item.Amount
		case ItemDiscount:
			t.Discounts += item.Amount
		default:
			t.Charges += item.Amount
		}
	}
	for _, p := range f.Payments {
		t.Paid += p.Amount
	}
	t.Total = t.Charges + t.Discounts + t.Tax
	t.Balance = t.Total - t.Paid
	return t
}

// TaxOn applies a basis-point rate to amount, rounding half away from zero.
func TaxOn(amount int64, rateBP int) int64 {
	if rateBP <= 0 || amount == 0 {
		return 0
	}
	product := amount * int64(rateBP)
	if product < 0 {
		return -((-product + 5000) / 10000)
	}
	return (product + 5000) / 10000
}

// FormatMoney renders minor units with the currency code, e.g. "USD 120.50".
func FormatMoney(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%s %d.%02d", sign, currency, amount/100, amount%100)
}

type Staff struct {
	ID           string     `json:"id" db:"id"`
	HotelID      string     `json:"hotel_id,omitempty" db:"hotel_id"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role"`
	Active       bool       `json:"active" db:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Session is a login session. Only the SHA-256 of the bearer token is stored.
type Session struct {
	TokenHash string    `json:"-" db:"token_hash"`
	StaffID   string    `json:"staff_id" db:"staff_id"`
	UserAgent string    `json:"user_agent,omitempty" db:"user_agent"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AgentDraft is an action the front-desk agent prepared and a human must confirm.
type AgentDraft struct {
	ID             string         `json:"id" db:"id"`
	HotelID        string         `json:"hotel_id" db:"hotel_id"`
	StaffID        string         `json:"staff_id" db:"staff_id"`
	ConversationID string         `json:"conversation_id,omitempty" db:"conversation_id"`
	Kind           string         `json:"kind" db:"kind"`
	Payload        types.JSONText `json:"payload" db:"payload"`
	Summary        string         `json:"summary" db:"summary"`
	Status         DraftStatus    `json:"status" db:"status"`
	ResultID       string         `json:"result_id,omitempty" db:"result_id"`
	ExpiresAt      time.Time      `json:"expires_at" db:"expires_at"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// DraftKindReservation is the only draft kind the agent produces today.
const DraftKindReservation = "reservation"

// ReservationDraft is the payload of a reservation draft.
type ReservationDraft struct {
	GuestID        string `json:"guest_id,omitempty"`
	GuestFirstName string `json:"guest_first_name,omitempty"`
	GuestLastName  string `json:"guest_last_name,omitempty"`
	GuestEmail     string `json:"guest_email,omitempty"`
	GuestPhone     string `json:"guest_phone,omitempty"`
	RoomID         string `json:"room_id"`
	RoomNumber     string `json:"room_number"`
	CheckIn        Date   `json:"check_in"`
	CheckOut       Date   `json:"check_out"`
	Adults         int    `json:"adults"`
	Children       int    `json:"children"`
	Notes          string `json:"notes,omitempty"`
	RatePerNight   int64  `json:"rate_per_night"`
	TotalAmount    int64  `json:"total_amount"`
}

type AuditEvent struct {
	ID        string    `json:"id" db:"id"`
	HotelID   string    `json:"hotel_id,omitempty" db:"hotel_id"`
	ActorID   string    `json:"actor_id" db:"actor_id"`
	Action    string    `json:"action" db:"action"`
	Subject   string    `json:"subject,omitempty" db:"subject"`
	Detail    string    `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Conversation is an agent chat thread owned by one staff member.
type Conversation struct {
	ID        string        `json:"id" db:"id"`
	HotelID   string        `json:"hotel_id" db:"hotel_id"`
	StaffID   string        `json:"staff_id" db:"staff_id"`
	Title     string        `json:"title" db:"title"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
	Messages  []ChatMessage `json:"messages,omitempty" db:"-"`
}

// Chat roles mirror the chat-completion wire roles.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleTool      = "tool"
)

type ChatMessage struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversation_id"`
	Role           string           `json:"role"`
	Content        string           `json:"content"`
	ToolCalls      []ToolCallRecord `json:"tool_calls,omitempty"`
	ToolCallID     string           `json:"tool_call_id,omitempty"`
	Name           string           `json:"name,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ToolCallRecord is one function call requested by the model.
type ToolCallRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}
