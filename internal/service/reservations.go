package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tjfontaine/innkeeper/internal/availability"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// codeAttempts bounds retries when a generated confirmation code collides.
const codeAttempts = 5

var blocking = []domain.ReservationStatus{domain.StatusPending, domain.StatusConfirmed, domain.StatusCheckedIn}

// AvailabilityQuery narrows an availability search.
type AvailabilityQuery struct {
	RoomTypeID string `json:"room_type_id,omitempty"`
	Guests     int    `json:"guests,omitempty"`
}

// Availability is the answer to an availability search.
type Availability struct {
	Stay   domain.Stay                `json:"stay"`
	Nights int                        `json:"nights"`
	Rooms  []domain.Room              `json:"rooms"`
	Types  []availability.TypeSummary `json:"types"`
}

// CheckAvailability lists the rooms free for the whole stay.
func (s *Service) CheckAvailability(ctx context.Context, sc tenant.Scope, stay domain.Stay, q AvailabilityQuery) (*Availability, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	if err := stay.Validate(); err != nil {
		return nil, err
	}
	if q.Guests < 0 {
		return nil, domain.ErrInvalidRequest("guests cannot be negative").WithParam("guests")
	}

	rooms, err := s.store.ListRooms(ctx, sc.HotelID)
	if err != nil {
		return nil, err
	}
	types, err := s.store.ListRoomTypes(ctx, sc.HotelID)
	if err != nil {
		return nil, err
	}
	reservations, err := s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{
		Statuses: blocking,
		From:     stay.CheckIn,
		To:       stay.CheckOut,
	})
	if err != nil {
		return nil, err
	}

	filter := availability.Filter{RoomTypeID: q.RoomTypeID, Guests: q.Guests, RoomTypes: make(map[string]domain.RoomType, len(types))}
	for _, rt := range types {
		filter.RoomTypes[rt.ID] = rt
	}
	free := availability.AvailableRooms(rooms, reservations, stay, filter)

	summaries := availability.SummarizeByType(types, free, stay)
	if q.RoomTypeID != "" || q.Guests > 0 {
		kept := summaries[:0]
		for _, ts := range summaries {
			if (q.RoomTypeID == "" || ts.RoomTypeID == q.RoomTypeID) && ts.MaxOccupancy >= q.Guests {
				kept = append(kept, ts)
			}
		}
		summaries = kept
	}

	return &Availability{Stay: stay, Nights: stay.Nights(), Rooms: free, Types: summaries}, nil
}

// ReservationInput describes a booking. Either GuestID or Guest must be set; Guest
// reuses an existing profile with the same email.
type ReservationInput struct {
	GuestID      string               `json:"guest_id,omitempty"`
	Guest        *GuestInput          `json:"guest,omitempty"`
	RoomID       string               `json:"room_id"`
	CheckIn      domain.Date          `json:"check_in"`
	CheckOut     domain.Date          `json:"check_out"`
	Adults       int                  `json:"adults"`
	Children     int                  `json:"children"`
	Source       domain.BookingSource `json:"source,omitempty"`
	Notes        string               `json:"notes,omitempty"`
	RatePerNight int64                `json:"rate_per_night,omitempty"`
	Confirm      bool                 `json:"confirm,omitempty"`
}

// bookingPlan is a validated, priced reservation ready to be written.
type bookingPlan struct {
	hotel    *domain.Hotel
	guest    *domain.Guest
	newGuest *GuestInput
	room     *domain.Room
	roomType *domain.RoomType
	stay     domain.Stay
	rate     int64
	in       ReservationInput
}

func (p *bookingPlan) total() int64 {
	return p.rate * int64(p.stay.Nights())
}

func (p *bookingPlan) guestName() string {
	if p.guest != nil {
		return p.guest.FullName()
	}
	return strings.TrimSpace(p.newGuest.FirstName + " " + p.newGuest.LastName)
}

// checkConflicts returns a room_unavailable error naming the reservations that
// overlap stay on roomID.
func (s *Service) checkConflicts(ctx context.Context, hotelID, roomID string, stay domain.Stay, excludeID string) error {
	existing, err := s.store.ListReservations(ctx, hotelID, storage.ReservationFilter{
		RoomID:   roomID,
		Statuses: blocking,
		From:     stay.CheckIn,
		To:       stay.CheckOut,
	})
	if err != nil {
		return err
	}
	conflicts := availability.Conflicts(existing, roomID, stay, excludeID)
	if len(conflicts) == 0 {
		return nil
	}
	codes := make([]string, len(conflicts))
	for i, c := range conflicts {
		codes[i] = c.Code
	}
	return domain.ErrConflict(fmt.Sprintf("room is already booked for those dates (%s)", strings.Join(codes, ", "))).
		WithCode(domain.ErrorCodeRoomUnavailable).WithParam("room_id")
}

// planBooking validates in against the hotel's inventory without writing anything.
func (s *Service) planBooking(ctx context.Context, sc tenant.Scope, in ReservationInput) (*bookingPlan, error) {
	stay := domain.Stay{CheckIn: in.CheckIn, CheckOut: in.CheckOut}
	if err := stay.Validate(); err != nil {
		return nil, err
	}
	if in.Adults < 1 {
		return nil, domain.ErrInvalidRequest("at least one adult is required").WithParam("adults")
	}
	if in.Children < 0 {
		return nil, domain.ErrInvalidRequest("children cannot be negative").WithParam("children")
	}
	if in.RatePerNight < 0 {
		return nil, domain.ErrInvalidRequest("rate_per_night cannot be negative").WithParam("rate_per_night")
	}
	if in.Source == "" {
		in.Source = domain.SourceDirect
	}
	if !in.Source.Valid() {
		return nil, domain.ErrInvalidRequest("unknown booking source " + string(in.Source)).WithParam("source")
	}
	in.Notes = strings.TrimSpace(in.Notes)

	hotel, err := s.hotel(ctx, sc)
	if err != nil {
		return nil, err
	}
	if stay.CheckOut.Before(s.today(hotel)) || stay.CheckOut.Equal(s.today(hotel)) {
		return nil, domain.ErrInvalidRequest("the stay is in the past").WithParam("check_out")
	}

	plan := &bookingPlan{hotel: hotel, stay: stay, in: in}
	switch {
	case in.GuestID != "":
		if plan.guest, err = s.store.GetGuest(ctx, sc.HotelID, in.GuestID); err != nil {
			return nil, storeErr(err, "guest")
		}
	case in.Guest != nil:
		g := *in.Guest
		if err := g.normalize(); err != nil {
			return nil, err
		}
		if g.Email != "" {
			existing, err := s.store.FindGuestByEmail(ctx, sc.HotelID, g.Email)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
			plan.guest = existing
		}
		if plan.guest == nil {
			plan.newGuest = &g
		}
	default:
		return nil, domain.ErrInvalidRequest("guest_id or guest is required").WithParam("guest_id")
	}

	if in.RoomID == "" {
		return nil, domain.ErrInvalidRequest("room_id is required").WithParam("room_id")
	}
	if plan.room, err = s.store.GetRoom(ctx, sc.HotelID, in.RoomID); err != nil {
		return nil, storeErr(err, "room")
	}
	if !plan.room.Status.InService() {
		return nil, domain.ErrConflict("room " + plan.room.Number + " is " + string(plan.room.Status)).
			WithCode(domain.ErrorCodeRoomUnavailable).WithParam("room_id")
	}
	if plan.roomType, err = s.store.GetRoomType(ctx, sc.HotelID, plan.room.RoomTypeID); err != nil {
		return nil, storeErr(err, "room type")
	}
	if guests := in.Adults + in.Children; guests > plan.roomType.MaxOccupancy {
		return nil, domain.ErrInvalidRequest(fmt.Sprintf("%s sleeps at most %d guests", plan.roomType.Name, plan.roomType.MaxOccupancy)).
			WithParam("adults")
	}
	if err := s.checkConflicts(ctx, sc.HotelID, plan.room.ID, stay, ""); err != nil {
		return nil, err
	}

	plan.rate = plan.roomType.BaseRate
	if in.RatePerNight > 0 {
		plan.rate = in.RatePerNight
	}
	return plan, nil
}

// stayLines prices each night of the stay with a room line and, when the hotel
// charges tax, a tax line.
func stayLines(res *domain.Reservation, roomLabel string, taxRateBP int, postedBy string) []domain.FolioItem {
	var items []domain.FolioItem
	for _, night := range res.Stay().Days() {
		items = append(items, domain.FolioItem{
			ID:          uuid.NewString(),
			Kind:        domain.ItemRoom,
			Description: roomLabel,
			Quantity:    1,
			UnitAmount:  res.RatePerNight,
			Amount:      res.RatePerNight,
			ServiceDate: night,
			PostedBy:    postedBy,
		})
		if tax := domain.TaxOn(res.RatePerNight, taxRateBP); tax != 0 {
			items = append(items, domain.FolioItem{
				ID:          uuid.NewString(),
				Kind:        domain.ItemTax,
				Description: fmt.Sprintf("Tax %d.%02d%%", taxRateBP/100, taxRateBP%100),
				Quantity:    1,
				UnitAmount:  tax,
				Amount:      tax,
				ServiceDate: night,
				PostedBy:    postedBy,
			})
		}
	}
	return items
}

func roomLabel(room *domain.Room, roomTypeName string) string {
	if roomTypeName == "" {
		return "Room " + room.Number
	}
	return "Room " + room.Number + " (" + roomTypeName + ")"
}

// book writes a planned reservation with its folio.
func (s *Service) book(ctx context.Context, sc tenant.Scope, plan *bookingPlan) (*domain.Reservation, error) {
	guest := plan.guest
	if guest == nil {
		var err error
		if guest, err = s.createGuest(ctx, sc, *plan.newGuest); err != nil {
			return nil, err
		}
	}

	status := domain.StatusPending
	if plan.in.Confirm {
		status = domain.StatusConfirmed
	}
	res := &domain.Reservation{
		ID:           uuid.NewString(),
		HotelID:      sc.HotelID,
		GuestID:      guest.ID,
		RoomID:       plan.room.ID,
		CheckIn:      plan.stay.CheckIn,
		CheckOut:     plan.stay.CheckOut,
		Adults:       plan.in.Adults,
		Children:     plan.in.Children,
		Status:       status,
		Source:       plan.in.Source,
		RatePerNight: plan.rate,
		TotalAmount:  plan.total(),
		Notes:        plan.in.Notes,
		CreatedBy:    sc.StaffID,
	}

	var err error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		suffix := randomCode(6)
		res.Code = "RSV-" + suffix
		folio := &domain.Folio{
			ID:        uuid.NewString(),
			HotelID:   sc.HotelID,
			Number:    "F-" + suffix,
			Status:    domain.FolioOpen,
			Currency:  plan.hotel.Currency,
			TaxRateBP: plan.hotel.TaxRateBP,
			Items:     stayLines(res, roomLabel(plan.room, plan.roomType.Name), plan.hotel.TaxRateBP, sc.StaffID),
		}
		err = s.store.CreateReservation(ctx, res, folio)
		if !errors.Is(err, storage.ErrConflict) {
			break
		}
	}
	if err != nil {
		if plan.newGuest != nil {
			s.discardGuest(ctx, guest)
		}
		return nil, storeErr(err, "reservation code")
	}

	s.audit(ctx, sc, "reservation.create", res.ID, res.Code)
	s.logger.Info("reservation created",
		slog.String("hotel_id", sc.HotelID),
		slog.String("code", res.Code),
		slog.String("room", plan.room.Number))

	res.GuestName = guest.FullName()
	res.RoomNumber = plan.room.Number
	return res, nil
}

// discardGuest removes a guest created for a booking that was not stored.
func (s *Service) discardGuest(ctx context.Context, g *domain.Guest) {
	if err := s.store.DeleteGuest(ctx, g.HotelID, g.ID); err != nil {
		s.logger.Warn("failed to remove guest of failed booking",
			slog.String("hotel_id", g.HotelID),
			slog.String("guest_id", g.ID),
			slog.String("error", err.Error()))
	}
}

// CreateReservation validates, prices and books a stay, opening its folio.
func (s *Service) CreateReservation(ctx context.Context, sc tenant.Scope, in ReservationInput) (*domain.Reservation, error) {
	if err := authorize(sc, domain.PermReservationsWrite); err != nil {
		return nil, err
	}
	plan, err := s.planBooking(ctx, sc, in)
	if err != nil {
		return nil, err
	}
	return s.book(ctx, sc, plan)
}

// ReservationPatch changes a reservation. Nil fields are left alone. Only notes may
// change once the guest has checked in.
type ReservationPatch struct {
	GuestID      *string      `json:"guest_id,omitempty"`
	RoomID       *string      `json:"room_id,omitempty"`
	CheckIn      *domain.Date `json:"check_in,omitempty"`
	CheckOut     *domain.Date `json:"check_out,omitempty"`
	Adults       *int         `json:"adults,omitempty"`
	Children     *int         `json:"children,omitempty"`
	RatePerNight *int64       `json:"rate_per_night,omitempty"`
	Notes        *string      `json:"notes,omitempty"`
}

func (p ReservationPatch) changesStay() bool {
	return p.GuestID != nil || p.RoomID != nil || p.CheckIn != nil || p.CheckOut != nil ||
		p.Adults != nil || p.Children != nil || p.RatePerNight != nil
}

// UpdateReservation applies patch, re-checking conflicts and re-pricing the folio.
func (s *Service) UpdateReservation(ctx context.Context, sc tenant.Scope, id string, patch ReservationPatch) (*domain.Reservation, error) {
	if err := authorize(sc, domain.PermReservationsWrite); err != nil {
		return nil, err
	}
	res, err := s.store.GetReservation(ctx, sc.HotelID, id)
	if err != nil {
		return nil, storeErr(err, "reservation")
	}
	if patch.Notes != nil {
		res.Notes = strings.TrimSpace(*patch.Notes)
	}
	if !patch.changesStay() {
		if err := s.store.UpdateReservation(ctx, res); err != nil {
			return nil, storeErr(err, "reservation")
		}
		return res, nil
	}
	if !res.Status.Editable() {
		return nil, domain.ErrConflict("a " + string(res.Status) + " reservation cannot be changed").
			WithCode(domain.ErrorCodeInvalidTransition)
	}

	if patch.GuestID != nil {
		if _, err := s.store.GetGuest(ctx, sc.HotelID, *patch.GuestID); err != nil {
			return nil, storeErr(err, "guest")
		}
		res.GuestID = *patch.GuestID
	}
	if patch.RoomID != nil {
		res.RoomID = *patch.RoomID
	}
	if patch.CheckIn != nil {
		res.CheckIn = *patch.CheckIn
	}
	if patch.CheckOut != nil {
		res.CheckOut = *patch.CheckOut
	}
	if patch.Adults != nil {
		res.Adults = *patch.Adults
	}
	if patch.Children != nil {
		res.Children = *patch.Children
	}

	if err := res.Stay().Validate(); err != nil {
		return nil, err
	}
	if res.Adults < 1 {
		return nil, domain.ErrInvalidRequest("at least one adult is required").WithParam("adults")
	}
	if res.Children < 0 {
		return nil, domain.ErrInvalidRequest("children cannot be negative").WithParam("children")
	}

	room, err := s.store.GetRoom(ctx, sc.HotelID, res.RoomID)
	if err != nil {
		return nil, storeErr(err, "room")
	}
	if !room.Status.InService() {
		return nil, domain.ErrConflict("room " + room.Number + " is " + string(room.Status)).
			WithCode(domain.ErrorCodeRoomUnavailable).WithParam("room_id")
	}
	rt, err := s.store.GetRoomType(ctx, sc.HotelID, room.RoomTypeID)
	if err != nil {
		return nil, storeErr(err, "room type")
	}
	if res.Guests() > rt.MaxOccupancy {
		return nil, domain.ErrInvalidRequest(fmt.Sprintf("%s sleeps at most %d guests", rt.Name, rt.MaxOccupancy)).
			WithParam("adults")
	}
	if err := s.checkConflicts(ctx, sc.HotelID, room.ID, res.Stay(), res.ID); err != nil {
		return nil, err
	}

	switch {
	case patch.RatePerNight != nil:
		if *patch.RatePerNight < 0 {
			return nil, domain.ErrInvalidRequest("rate_per_night cannot be negative").WithParam("rate_per_night")
		}
		res.RatePerNight = *patch.RatePerNight
	case patch.RoomID != nil:
		res.RatePerNight = rt.BaseRate
	}
	res.TotalAmount = res.RatePerNight * int64(res.Nights())

	if err := s.store.UpdateReservation(ctx, res); err != nil {
		return nil, storeErr(err, "reservation")
	}

	folio, err := s.store.GetFolioByReservation(ctx, sc.HotelID, res.ID)
	if err != nil {
		return nil, storeErr(err, "folio")
	}
	if folio.Status == domain.FolioOpen {
		items := stayLines(res, roomLabel(room, rt.Name), folio.TaxRateBP, sc.StaffID)
		if err := s.store.ReplaceFolioItems(ctx, sc.HotelID, folio.ID,
			[]domain.ItemKind{domain.ItemRoom, domain.ItemTax}, items); err != nil {
			return nil, err
		}
	}

	s.audit(ctx, sc, "reservation.update", res.ID, res.Code)
	return s.store.GetReservation(ctx, sc.HotelID, res.ID)
}

// transition loads a reservation and moves it to next.
func (s *Service) transition(ctx context.Context, sc tenant.Scope, id string, next domain.ReservationStatus) (*domain.Reservation, *domain.Hotel, error) {
	if err := authorize(sc, domain.PermReservationsWrite); err != nil {
		return nil, nil, err
	}
	res, err := s.store.GetReservation(ctx, sc.HotelID, id)
	if err != nil {
		return nil, nil, storeErr(err, "reservation")
	}
	if err := res.Status.Transition(next); err != nil {
		return nil, nil, err
	}
	hotel, err := s.hotel(ctx, sc)
	if err != nil {
		return nil, nil, err
	}
	res.Status = next
	return res, hotel, nil
}

func (s *Service) saveTransition(ctx context.Context, sc tenant.Scope, res *domain.Reservation) (*domain.Reservation, error) {
	if err := s.store.UpdateReservation(ctx, res); err != nil {
		return nil, storeErr(err, "reservation")
	}
	s.audit(ctx, sc, "reservation."+string(res.Status), res.ID, res.Code)
	return res, nil
}

// Confirm moves a pending reservation to confirmed.
func (s *Service) Confirm(ctx context.Context, sc tenant.Scope, id string) (*domain.Reservation, error) {
	res, _, err := s.transition(ctx, sc, id, domain.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	return s.saveTransition(ctx, sc, res)
}

// releaseFolio voids the folio of a reservation that will not be stayed when nothing
// has been paid on it.
func (s *Service) releaseFolio(ctx context.Context, sc tenant.Scope, res *domain.Reservation) error {
	folio, err := s.store.GetFolioByReservation(ctx, sc.HotelID, res.ID)
	if err != nil {
		return storeErr(err, "folio")
	}
	if folio.Status != domain.FolioOpen || len(folio.Payments) > 0 {
		return nil
	}
	folio.Status = domain.FolioVoid
	return s.store.UpdateFolio(ctx, folio)
}

// Cancel cancels a pending or confirmed reservation.
func (s *Service) Cancel(ctx context.Context, sc tenant.Scope, id, reason string) (*domain.Reservation, error) {
	res, _, err := s.transition(ctx, sc, id, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	res.CancelReason = strings.TrimSpace(reason)
	if res, err = s.saveTransition(ctx, sc, res); err != nil {
		return nil, err
	}
	if err := s.releaseFolio(ctx, sc, res); err != nil {
		return nil, err
	}
	return res, nil
}

// MarkNoShow records that a confirmed guest never arrived.
func (s *Service) MarkNoShow(ctx context.Context, sc tenant.Scope, id string) (*domain.Reservation, error) {
	res, hotel, err := s.transition(ctx, sc, id, domain.StatusNoShow)
	if err != nil {
		return nil, err
	}
	if s.today(hotel).Before(res.CheckIn) {
		return nil, domain.ErrConflict("the guest is not due until " + res.CheckIn.String()).
			WithCode(domain.ErrorCodeInvalidTransition)
	}
	if res, err = s.saveTransition(ctx, sc, res); err != nil {
		return nil, err
	}
	if err := s.releaseFolio(ctx, sc, res); err != nil {
		return nil, err
	}
	return res, nil
}

// CheckIn puts a confirmed guest in house and marks the room occupied.
func (s *Service) CheckIn(ctx context.Context, sc tenant.Scope, id string) (*domain.Reservation, error) {
	res, hotel, err := s.transition(ctx, sc, id, domain.StatusCheckedIn)
	if err != nil {
		return nil, err
	}
	today := s.today(hotel)
	if today.Before(res.CheckIn) {
		return nil, domain.ErrConflict("check-in opens on " + res.CheckIn.String()).
			WithCode(domain.ErrorCodeInvalidTransition)
	}
	if !today.Before(res.CheckOut) {
		return nil, domain.ErrConflict("the stay ended on " + res.CheckOut.String()).
			WithCode(domain.ErrorCodeInvalidTransition)
	}

	room, err := s.store.GetRoom(ctx, sc.HotelID, res.RoomID)
	if err != nil {
		return nil, storeErr(err, "room")
	}
	if !room.Status.InService() || room.Status == domain.RoomOccupied {
		return nil, domain.ErrConflict("room " + room.Number + " is " + string(room.Status)).
			WithCode(domain.ErrorCodeRoomUnavailable)
	}

	at := s.now().UTC()
	res.CheckedInAt = &at
	if res, err = s.saveTransition(ctx, sc, res); err != nil {
		return nil, err
	}
	room.Status = domain.RoomOccupied
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, storeErr(err, "room")
	}
	return res, nil
}

// CheckOut closes the stay. The folio must be settled unless force is set; the folio
// is closed and the room returned to service as dirty.
func (s *Service) CheckOut(ctx context.Context, sc tenant.Scope, id string, force bool) (*domain.Reservation, error) {
	res, _, err := s.transition(ctx, sc, id, domain.StatusCheckedOut)
	if err != nil {
		return nil, err
	}
	folio, err := s.store.GetFolioByReservation(ctx, sc.HotelID, res.ID)
	if err != nil {
		return nil, storeErr(err, "folio")
	}
	if bal := folio.Totals().Balance; bal > 0 && !force {
		return nil, domain.ErrConflict("folio has an outstanding balance of " + domain.FormatMoney(bal, folio.Currency)).
			WithCode(domain.ErrorCodeOutstandingBalance)
	}

	at := s.now().UTC()
	res.CheckedOutAt = &at
	if res, err = s.saveTransition(ctx, sc, res); err != nil {
		return nil, err
	}

	if folio.Status == domain.FolioOpen {
		folio.Status = domain.FolioClosed
		folio.ClosedAt = &at
		if err := s.store.UpdateFolio(ctx, folio); err != nil {
			return nil, storeErr(err, "folio")
		}
	}

	room, err := s.store.GetRoom(ctx, sc.HotelID, res.RoomID)
	if err != nil {
		return nil, storeErr(err, "room")
	}
	if room.Status == domain.RoomOccupied {
		room.Status = domain.RoomAvailable
	}
	room.Housekeeping = domain.HousekeepingDirty
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, storeErr(err, "room")
	}
	return res, nil
}

// GetReservation looks a reservation up by id or confirmation code.
func (s *Service) GetReservation(ctx context.Context, sc tenant.Scope, idOrCode string) (*domain.Reservation, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	idOrCode = strings.TrimSpace(idOrCode)
	if idOrCode == "" {
		return nil, domain.ErrInvalidRequest("reservation id or code is required").WithParam("id")
	}

	res, err := s.store.GetReservation(ctx, sc.HotelID, idOrCode)
	if errors.Is(err, storage.ErrNotFound) {
		res, err = s.store.GetReservationByCode(ctx, sc.HotelID, idOrCode)
	}
	return res, storeErr(err, "reservation")
}

func (s *Service) ListReservations(ctx context.Context, sc tenant.Scope, f storage.ReservationFilter) ([]domain.Reservation, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, domain.ErrInvalidRequest("unknown status " + string(st)).WithParam("status")
		}
	}
	return s.store.ListReservations(ctx, sc.HotelID, f)
}

// dayOrToday returns day, or the hotel's today when day is zero.
func (s *Service) dayOrToday(ctx context.Context, sc tenant.Scope, day domain.Date) (domain.Date, error) {
	if !day.IsZero() {
		return day, nil
	}
	hotel, err := s.hotel(ctx, sc)
	if err != nil {
		return domain.Date{}, err
	}
	return s.today(hotel), nil
}

// Arrivals lists pending and confirmed reservations starting on day.
func (s *Service) Arrivals(ctx context.Context, sc tenant.Scope, day domain.Date) ([]domain.Reservation, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	day, err := s.dayOrToday(ctx, sc, day)
	if err != nil {
		return nil, err
	}
	return s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{
		CheckInOn: day,
		Statuses:  []domain.ReservationStatus{domain.StatusPending, domain.StatusConfirmed},
	})
}

// Departures lists in-house reservations due out on day.
func (s *Service) Departures(ctx context.Context, sc tenant.Scope, day domain.Date) ([]domain.Reservation, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	day, err := s.dayOrToday(ctx, sc, day)
	if err != nil {
		return nil, err
	}
	return s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{
		CheckOutOn: day,
		Statuses:   []domain.ReservationStatus{domain.StatusCheckedIn},
	})
}

// InHouse lists every checked-in reservation.
func (s *Service) InHouse(ctx context.Context, sc tenant.Scope) ([]domain.Reservation, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	return s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{
		Statuses: []domain.ReservationStatus{domain.StatusCheckedIn},
	})
}

// Timeline builds the room-by-day board starting at from, or today when from is zero.
func (s *Service) Timeline(ctx context.Context, sc tenant.Scope, from domain.Date, days int) (*availability.Timeline, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	from, err := s.dayOrToday(ctx, sc, from)
	if err != nil {
		return nil, err
	}
	days = availability.ClampDays(days)

	rooms, err := s.store.ListRooms(ctx, sc.HotelID)
	if err != nil {
		return nil, err
	}
	reservations, err := s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{
		From: from,
		To:   from.AddDays(days),
	})
	if err != nil {
		return nil, err
	}
	tl := availability.BuildTimeline(rooms, reservations, nil, from, days)
	return &tl, nil
}
