package sqldb

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
)

const reservationSelect = `SELECT r.id, r.hotel_id, r.code, r.guest_id, r.room_id, r.check_in, r.check_out,
		r.adults, r.children, r.status, r.source, r.rate_per_night, r.total_amount, r.notes, r.cancel_reason,
		r.created_by, r.checked_in_at, r.checked_out_at, r.created_at, r.updated_at,
		g.first_name || ' ' || g.last_name AS guest_name, rm.number AS room_number
	FROM reservations r
	JOIN guests g ON g.id = r.guest_id
	JOIN rooms rm ON rm.id = r.room_id`

var blockingStatuses = []any{
	domain.StatusPending,
	domain.StatusConfirmed,
	domain.StatusCheckedIn,
}

// lockRoom confirms the room belongs to the hotel and, on dialects with row locks,
// holds it until the transaction ends so concurrent bookings of the room serialise.
func (s *Store) lockRoom(ctx context.Context, tx *sqlx.Tx, hotelID, roomID string) error {
	var id string
	query := `SELECT id FROM rooms WHERE hotel_id = ? AND id = ? ` + s.dialect.LockClause()
	if err := s.get(ctx, tx, &id, query, hotelID, roomID); err != nil {
		return fmt.Errorf("room %s: %w", roomID, err)
	}
	return nil
}

func (s *Store) checkOverlap(ctx context.Context, tx *sqlx.Tx, res *domain.Reservation) error {
	args := []any{res.HotelID, res.RoomID, res.ID}
	args = append(args, blockingStatuses...)
	args = append(args, res.CheckOut, res.CheckIn)

	var n int
	err := s.get(ctx, tx, &n, `SELECT COUNT(*) FROM reservations
		WHERE hotel_id = ? AND room_id = ? AND id <> ?
		AND status IN (`+placeholders(len(blockingStatuses))+`)
		AND check_in < ? AND check_out > ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to check overlapping reservations: %w", err)
	}
	if n > 0 {
		return storage.ErrOverlap
	}
	return nil
}

func (s *Store) CreateReservation(ctx context.Context, res *domain.Reservation, folio *domain.Folio) error {
	stamp(&res.CreatedAt, &res.UpdatedAt)

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.lockRoom(ctx, tx, res.HotelID, res.RoomID); err != nil {
			return err
		}
		if res.Status.Blocking() {
			if err := s.checkOverlap(ctx, tx, res); err != nil {
				return err
			}
		}

		_, err := s.exec(ctx, tx, `INSERT INTO reservations (id, hotel_id, code, guest_id, room_id, check_in,
				check_out, adults, children, status, source, rate_per_night, total_amount, notes, cancel_reason,
				created_by, checked_in_at, checked_out_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			res.ID, res.HotelID, res.Code, res.GuestID, res.RoomID, res.CheckIn, res.CheckOut,
			res.Adults, res.Children, res.Status, res.Source, res.RatePerNight, res.TotalAmount, res.Notes,
			res.CancelReason, res.CreatedBy, res.CheckedInAt, res.CheckedOutAt, res.CreatedAt, res.UpdatedAt)
		if err != nil {
			return err
		}

		if folio == nil {
			return nil
		}
		folio.ReservationID = res.ID
		return s.insertFolio(ctx, tx, folio)
	})
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (s *Store) UpdateReservation(ctx context.Context, res *domain.Reservation) error {
	res.UpdatedAt = now()

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.lockRoom(ctx, tx, res.HotelID, res.RoomID); err != nil {
			return err
		}
		if res.Status.Blocking() {
			if err := s.checkOverlap(ctx, tx, res); err != nil {
				return err
			}
		}
		return s.execOne(ctx, tx, `UPDATE reservations SET guest_id = ?, room_id = ?, check_in = ?, check_out = ?,
				adults = ?, children = ?, status = ?, source = ?, rate_per_night = ?, total_amount = ?, notes = ?,
				cancel_reason = ?, checked_in_at = ?, checked_out_at = ?, updated_at = ?
			WHERE hotel_id = ? AND id = ?`,
			res.GuestID, res.RoomID, res.CheckIn, res.CheckOut, res.Adults, res.Children, res.Status, res.Source,
			res.RatePerNight, res.TotalAmount, res.Notes, res.CancelReason, res.CheckedInAt, res.CheckedOutAt,
			res.UpdatedAt, res.HotelID, res.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to update reservation %s: %w", res.ID, err)
	}
	return nil
}

func (s *Store) GetReservation(ctx context.Context, hotelID, id string) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := s.get(ctx, s.db, &res, reservationSelect+` WHERE r.hotel_id = ? AND r.id = ?`, hotelID, id); err != nil {
		return nil, fmt.Errorf("failed to get reservation %s: %w", id, err)
	}
	return &res, nil
}

func (s *Store) GetReservationByCode(ctx context.Context, hotelID, code string) (*domain.Reservation, error) {
	var res domain.Reservation
	err := s.get(ctx, s.db, &res, reservationSelect+` WHERE r.hotel_id = ? AND r.code = ?`,
		hotelID, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation %s: %w", code, err)
	}
	return &res, nil
}

func (s *Store) ListReservations(ctx context.Context, hotelID string, f storage.ReservationFilter) ([]domain.Reservation, error) {
	where := []string{"r.hotel_id = ?"}
	args := []any{hotelID}

	if len(f.Statuses) > 0 {
		where = append(where, "r.status IN ("+placeholders(len(f.Statuses))+")")
		for _, st := range f.Statuses {
			args = append(args, st)
		}
	}
	if f.RoomID != "" {
		where = append(where, "r.room_id = ?")
		args = append(args, f.RoomID)
	}
	if f.GuestID != "" {
		where = append(where, "r.guest_id = ?")
		args = append(args, f.GuestID)
	}
	if !f.To.IsZero() {
		where = append(where, "r.check_in < ?")
		args = append(args, f.To)
	}
	if !f.From.IsZero() {
		where = append(where, "r.check_out > ?")
		args = append(args, f.From)
	}
	if !f.CheckInOn.IsZero() {
		where = append(where, "r.check_in = ?")
		args = append(args, f.CheckInOn)
	}
	if !f.CheckOutOn.IsZero() {
		where = append(where, "r.check_out = ?")
		args = append(args, f.CheckOutOn)
	}

	query := reservationSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY r.check_in, rm.number"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	var out []domain.Reservation
	if err := s.list(ctx, s.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return out, nil
}
