package sqldb

import (
	"context"
	"fmt"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

const hotelColumns = `id, name, slug, address, phone, email, currency, timezone, tax_rate_bp,
	check_in_time, check_out_time, active, created_at, updated_at`

func (s *Store) CreateHotel(ctx context.Context, h *domain.Hotel) error {
	stamp(&h.CreatedAt, &h.UpdatedAt)
	_, err := s.exec(ctx, s.db, `INSERT INTO hotels (`+hotelColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Name, h.Slug, h.Address, h.Phone, h.Email, h.Currency, h.Timezone, h.TaxRateBP,
		h.CheckInTime, h.CheckOutTime, h.Active, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}
	return nil
}

func (s *Store) UpdateHotel(ctx context.Context, h *domain.Hotel) error {
	h.UpdatedAt = now()
	err := s.execOne(ctx, s.db, `UPDATE hotels SET name = ?, slug = ?, address = ?, phone = ?, email = ?,
		currency = ?, timezone = ?, tax_rate_bp = ?, check_in_time = ?, check_out_time = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		h.Name, h.Slug, h.Address, h.Phone, h.Email, h.Currency, h.Timezone, h.TaxRateBP,
		h.CheckInTime, h.CheckOutTime, h.Active, h.UpdatedAt, h.ID)
	if err != nil {
		return fmt.Errorf("failed to update hotel %s: %w", h.ID, err)
	}
	return nil
}

func (s *Store) GetHotel(ctx context.Context, id string) (*domain.Hotel, error) {
	var h domain.Hotel
	if err := s.get(ctx, s.db, &h, `SELECT `+hotelColumns+` FROM hotels WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to get hotel %s: %w", id, err)
	}
	return &h, nil
}

func (s *Store) ListHotels(ctx context.Context) ([]domain.HotelSummary, error) {
	var hotels []domain.HotelSummary
	err := s.list(ctx, s.db, &hotels, `SELECT h.id, h.name, h.slug, h.address, h.phone, h.email, h.currency,
			h.timezone, h.tax_rate_bp, h.check_in_time, h.check_out_time, h.active, h.created_at, h.updated_at,
			(SELECT COUNT(*) FROM rooms r WHERE r.hotel_id = h.id) AS room_count,
			(SELECT COUNT(*) FROM staff st WHERE st.hotel_id = h.id) AS staff_count
		FROM hotels h ORDER BY h.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return hotels, nil
}
