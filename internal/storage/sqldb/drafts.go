package sqldb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
)

const draftColumns = `id, hotel_id, staff_id, conversation_id, kind, payload, summary, status, result_id,
	expires_at, created_at, updated_at`

func (s *Store) CreateDraft(ctx context.Context, d *domain.AgentDraft) error {
	stamp(&d.CreatedAt, &d.UpdatedAt)
	_, err := s.exec(ctx, s.db, `INSERT INTO agent_drafts (`+draftColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.HotelID, d.StaffID, d.ConversationID, d.Kind, string(d.Payload), d.Summary, d.Status,
		d.ResultID, d.ExpiresAt.UTC(), d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	return nil
}

func (s *Store) GetDraft(ctx context.Context, hotelID, id string) (*domain.AgentDraft, error) {
	var d domain.AgentDraft
	if err := s.get(ctx, s.db, &d, `SELECT `+draftColumns+` FROM agent_drafts WHERE hotel_id = ? AND id = ?`, hotelID, id); err != nil {
		return nil, fmt.Errorf("failed to get draft %s: %w", id, err)
	}
	return &d, nil
}

func (s *Store) TransitionDraft(ctx context.Context, hotelID, id string, from, to domain.DraftStatus, resultID string) error {
	err := s.execOne(ctx, s.db, `UPDATE agent_drafts SET status = ?, result_id = ?, updated_at = ?
		WHERE hotel_id = ? AND id = ? AND status = ?`, to, resultID, now(), hotelID, id, from)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to update draft %s: %w", id, err)
	}
	if _, getErr := s.GetDraft(ctx, hotelID, id); getErr == nil {
		return fmt.Errorf("draft %s is no longer %s: %w", id, from, storage.ErrConflict)
	}
	return fmt.Errorf("failed to update draft %s: %w", id, err)
}

// ListDrafts lists a staff member's drafts. An empty status lists all of them.
func (s *Store) ListDrafts(ctx context.Context, hotelID, staffID string, status domain.DraftStatus) ([]domain.AgentDraft, error) {
	query := `SELECT ` + draftColumns + ` FROM agent_drafts WHERE hotel_id = ? AND staff_id = ?`
	args := []any{hotelID, staffID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var out []domain.AgentDraft
	if err := s.list(ctx, s.db, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return out, nil
}

func (s *Store) ExpireDrafts(ctx context.Context, at time.Time) (int64, error) {
	res, err := s.exec(ctx, s.db, `UPDATE agent_drafts SET status = ?, updated_at = ?
		WHERE status = ? AND expires_at < ?`, domain.DraftExpired, now(), domain.DraftPending, at.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire drafts: %w", err)
	}
	return res.RowsAffected()
}
