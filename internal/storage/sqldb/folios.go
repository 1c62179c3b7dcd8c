package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
)

const (
	folioColumns   = `id, hotel_id, reservation_id, number, status, currency, tax_rate_bp, closed_at, created_at, updated_at`
	itemColumns    = `id, folio_id, kind, description, quantity, unit_amount, amount, service_date, posted_by, posted_at`
	paymentColumns = `id, folio_id, method, amount, reference, received_by, received_at`
)

func (s *Store) insertFolio(ctx context.Context, tx *sqlx.Tx, f *domain.Folio) error {
	stamp(&f.CreatedAt, &f.UpdatedAt)
	_, err := s.exec(ctx, tx, `INSERT INTO folios (`+folioColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.HotelID, f.ReservationID, f.Number, f.Status, f.Currency, f.TaxRateBP, f.ClosedAt,
		f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert folio: %w", err)
	}
	for i := range f.Items {
		f.Items[i].FolioID = f.ID
		if err := s.insertItem(ctx, tx, f.HotelID, &f.Items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertItem(ctx context.Context, e sqlx.ExecerContext, hotelID string, item *domain.FolioItem) error {
	if item.PostedAt.IsZero() {
		item.PostedAt = now()
	}
	_, err := s.exec(ctx, e, `INSERT INTO folio_items (hotel_id, `+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		hotelID, item.ID, item.FolioID, item.Kind, item.Description, item.Quantity, item.UnitAmount,
		item.Amount, item.ServiceDate, item.PostedBy, item.PostedAt)
	if err != nil {
		return fmt.Errorf("failed to insert folio item: %w", err)
	}
	return nil
}

func (s *Store) loadLines(ctx context.Context, hotelID string, f *domain.Folio) error {
	f.Items = []domain.FolioItem{}
	f.Payments = []domain.Payment{}
	if err := s.list(ctx, s.db, &f.Items, `SELECT `+itemColumns+` FROM folio_items
		WHERE hotel_id = ? AND folio_id = ? ORDER BY service_date, posted_at`, hotelID, f.ID); err != nil {
		return fmt.Errorf("failed to load folio items: %w", err)
	}
	if err := s.list(ctx, s.db, &f.Payments, `SELECT `+paymentColumns+` FROM payments
		WHERE hotel_id = ? AND folio_id = ? ORDER BY received_at`, hotelID, f.ID); err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}
	return nil
}

func (s *Store) GetFolio(ctx context.Context, hotelID, id string) (*domain.Folio, error) {
	var f domain.Folio
	if err := s.get(ctx, s.db, &f, `SELECT `+folioColumns+` FROM folios WHERE hotel_id = ? AND id = ?`, hotelID, id); err != nil {
		return nil, fmt.Errorf("failed to get folio %s: %w", id, err)
	}
	if err := s.loadLines(ctx, hotelID, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) GetFolioByReservation(ctx context.Context, hotelID, reservationID string) (*domain.Folio, error) {
	var f domain.Folio
	err := s.get(ctx, s.db, &f, `SELECT `+folioColumns+` FROM folios
		WHERE hotel_id = ? AND reservation_id = ? ORDER BY created_at DESC LIMIT 1`, hotelID, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get folio for reservation %s: %w", reservationID, err)
	}
	if err := s.loadLines(ctx, hotelID, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFolios loads matching folios with their items and payments in three queries.
func (s *Store) ListFolios(ctx context.Context, hotelID string, f storage.FolioFilter) ([]domain.Folio, error) {
	query := `SELECT ` + folioColumns + ` FROM folios f WHERE hotel_id = ?`
	args := []any{hotelID}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if !f.ServiceFrom.IsZero() && !f.ServiceTo.IsZero() {
		query += ` AND EXISTS (SELECT 1 FROM folio_items i WHERE i.folio_id = f.id
			AND i.service_date >= ? AND i.service_date < ?)`
		args = append(args, f.ServiceFrom, f.ServiceTo)
	}
	query += ` ORDER BY created_at`

	var folios []domain.Folio
	if err := s.list(ctx, s.db, &folios, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list folios: %w", err)
	}
	if len(folios) == 0 {
		return folios, nil
	}

	index := make(map[string]int, len(folios))
	for i := range folios {
		index[folios[i].ID] = i
		folios[i].Items = []domain.FolioItem{}
		folios[i].Payments = []domain.Payment{}
	}

	var items []domain.FolioItem
	if err := s.list(ctx, s.db, &items, `SELECT `+itemColumns+` FROM folio_items WHERE hotel_id = ?
		ORDER BY service_date, posted_at`, hotelID); err != nil {
		return nil, fmt.Errorf("failed to load folio items: %w", err)
	}
	for _, item := range items {
		if i, ok := index[item.FolioID]; ok {
			folios[i].Items = append(folios[i].Items, item)
		}
	}

	var payments []domain.Payment
	if err := s.list(ctx, s.db, &payments, `SELECT `+paymentColumns+` FROM payments WHERE hotel_id = ?
		ORDER BY received_at`, hotelID); err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	for _, p := range payments {
		if i, ok := index[p.FolioID]; ok {
			folios[i].Payments = append(folios[i].Payments, p)
		}
	}
	return folios, nil
}

func (s *Store) UpdateFolio(ctx context.Context, f *domain.Folio) error {
	f.UpdatedAt = now()
	err := s.execOne(ctx, s.db, `UPDATE folios SET status = ?, tax_rate_bp = ?, closed_at = ?, updated_at = ?
		WHERE hotel_id = ? AND id = ?`, f.Status, f.TaxRateBP, f.ClosedAt, f.UpdatedAt, f.HotelID, f.ID)
	if err != nil {
		return fmt.Errorf("failed to update folio %s: %w", f.ID, err)
	}
	return nil
}

func (s *Store) AddFolioItem(ctx context.Context, hotelID string, item *domain.FolioItem) error {
	return s.insertItem(ctx, s.db, hotelID, item)
}

func (s *Store) DeleteFolioItem(ctx context.Context, hotelID, folioID, itemID string) error {
	err := s.execOne(ctx, s.db, `DELETE FROM folio_items WHERE hotel_id = ? AND folio_id = ? AND id = ?`,
		hotelID, folioID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete folio item %s: %w", itemID, err)
	}
	return nil
}

func (s *Store) ReplaceFolioItems(ctx context.Context, hotelID, folioID string, kinds []domain.ItemKind, items []domain.FolioItem) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if len(kinds) > 0 {
			args := []any{hotelID, folioID}
			for _, k := range kinds {
				args = append(args, k)
			}
			if _, err := s.exec(ctx, tx, `DELETE FROM folio_items WHERE hotel_id = ? AND folio_id = ?
				AND kind IN (`+placeholders(len(kinds))+`)`, args...); err != nil {
				return err
			}
		}
		for i := range items {
			items[i].FolioID = folioID
			if err := s.insertItem(ctx, tx, hotelID, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace folio items: %w", err)
	}
	return nil
}

func (s *Store) AddPayment(ctx context.Context, hotelID string, p *domain.Payment) error {
	if p.ReceivedAt.IsZero() {
		p.ReceivedAt = now()
	}
	_, err := s.exec(ctx, s.db, `INSERT INTO payments (hotel_id, `+paymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		hotelID, p.ID, p.FolioID, p.Method, p.Amount, p.Reference, p.ReceivedBy, p.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to add payment: %w", err)
	}
	return nil
}

// ListPayments returns payments received in [from, to).
func (s *Store) ListPayments(ctx context.Context, hotelID string, from, to time.Time) ([]domain.Payment, error) {
	var out []domain.Payment
	err := s.list(ctx, s.db, &out, `SELECT `+paymentColumns+` FROM payments
		WHERE hotel_id = ? AND received_at >= ? AND received_at < ? ORDER BY received_at`,
		hotelID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return out, nil
}
