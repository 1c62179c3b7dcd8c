package sqldb

import (
	"context"
	"fmt"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
)

func (s *Store) RecordAudit(ctx context.Context, e *domain.AuditEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	_, err := s.exec(ctx, s.db, `INSERT INTO audit_events (id, hotel_id, actor_id, action, subject, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, e.ID, e.HotelID, e.ActorID, e.Action, e.Subject, e.Detail, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, f storage.AuditFilter) ([]domain.AuditEvent, error) {
	query := `SELECT id, hotel_id, actor_id, action, subject, detail, created_at FROM audit_events WHERE 1 = 1`
	var args []any
	if f.HotelID != "" {
		query += ` AND hotel_id = ?`
		args = append(args, f.HotelID)
	}
	if f.ActorID != "" {
		query += ` AND actor_id = ?`
		args = append(args, f.ActorID)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	var out []domain.AuditEvent
	if err := s.list(ctx, s.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return out, nil
}
