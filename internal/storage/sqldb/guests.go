package sqldb

import (
	"context"
	"fmt"
	"strings"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

const guestColumns = `id, hotel_id, first_name, last_name, email, phone, nationality, document_number,
	vip, notes, created_at, updated_at`

func (s *Store) CreateGuest(ctx context.Context, g *domain.Guest) error {
	stamp(&g.CreatedAt, &g.UpdatedAt)
	_, err := s.exec(ctx, s.db, `INSERT INTO guests (`+guestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.HotelID, g.FirstName, g.LastName, g.Email, g.Phone, g.Nationality, g.DocumentNumber,
		g.VIP, g.Notes, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create guest: %w", err)
	}
	return nil
}

func (s *Store) UpdateGuest(ctx context.Context, g *domain.Guest) error {
	g.UpdatedAt = now()
	err := s.execOne(ctx, s.db, `UPDATE guests SET first_name = ?, last_name = ?, email = ?, phone = ?,
		nationality = ?, document_number = ?, vip = ?, notes = ?, updated_at = ?
		WHERE hotel_id = ? AND id = ?`,
		g.FirstName, g.LastName, g.Email, g.Phone, g.Nationality, g.DocumentNumber, g.VIP, g.Notes,
		g.UpdatedAt, g.HotelID, g.ID)
	if err != nil {
		return fmt.Errorf("failed to update guest %s: %w", g.ID, err)
	}
	return nil
}

func (s *Store) GetGuest(ctx context.Context, hotelID, id string) (*domain.Guest, error) {
	var g domain.Guest
	if err := s.get(ctx, s.db, &g, `SELECT `+guestColumns+` FROM guests WHERE hotel_id = ? AND id = ?`, hotelID, id); err != nil {
		return nil, fmt.Errorf("failed to get guest %s: %w", id, err)
	}
	return &g, nil
}

func (s *Store) FindGuestByEmail(ctx context.Context, hotelID, email string) (*domain.Guest, error) {
	var g domain.Guest
	err := s.get(ctx, s.db, &g, `SELECT `+guestColumns+` FROM guests
		WHERE hotel_id = ? AND LOWER(email) = ? ORDER BY created_at LIMIT 1`,
		hotelID, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to find guest by email: %w", err)
	}
	return &g, nil
}

func (s *Store) SearchGuests(ctx context.Context, hotelID, q string, limit int) ([]domain.Guest, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + guestColumns + ` FROM guests WHERE hotel_id = ?`
	args := []any{hotelID}

	for _, term := range strings.Fields(q) {
		like := s.dialect.LikeOperator()
		pattern := "%" + escapeLike(term) + "%"
		query += fmt.Sprintf(` AND (first_name %[1]s ? ESCAPE '\' OR last_name %[1]s ? ESCAPE '\'
			OR email %[1]s ? ESCAPE '\' OR phone %[1]s ? ESCAPE '\' OR document_number %[1]s ? ESCAPE '\')`, like)
		args = append(args, pattern, pattern, pattern, pattern, pattern)
	}
	query += ` ORDER BY last_name, first_name LIMIT ?`
	args = append(args, limit)

	var out []domain.Guest
	if err := s.list(ctx, s.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search guests: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteGuest(ctx context.Context, hotelID, id string) error {
	if err := s.execOne(ctx, s.db, `DELETE FROM guests WHERE hotel_id = ? AND id = ?`, hotelID, id); err != nil {
		return fmt.Errorf("failed to delete guest %s: %w", id, err)
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
