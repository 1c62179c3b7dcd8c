package sqldb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

const staffColumns = `id, hotel_id, email, name, password_hash, role, active, last_login_at, created_at, updated_at`

func (s *Store) CreateStaff(ctx context.Context, st *domain.Staff) error {
	stamp(&st.CreatedAt, &st.UpdatedAt)
	st.Email = strings.ToLower(strings.TrimSpace(st.Email))
	_, err := s.exec(ctx, s.db, `INSERT INTO staff (`+staffColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.HotelID, st.Email, st.Name, st.PasswordHash, st.Role, st.Active, st.LastLoginAt,
		st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

func (s *Store) UpdateStaff(ctx context.Context, st *domain.Staff) error {
	st.UpdatedAt = now()
	st.Email = strings.ToLower(strings.TrimSpace(st.Email))
	err := s.execOne(ctx, s.db, `UPDATE staff SET email = ?, name = ?, password_hash = ?, role = ?, active = ?,
		last_login_at = ?, updated_at = ? WHERE id = ?`,
		st.Email, st.Name, st.PasswordHash, st.Role, st.Active, st.LastLoginAt, st.UpdatedAt, st.ID)
	if err != nil {
		return fmt.Errorf("failed to update staff %s: %w", st.ID, err)
	}
	return nil
}

func (s *Store) GetStaff(ctx context.Context, id string) (*domain.Staff, error) {
	var st domain.Staff
	if err := s.get(ctx, s.db, &st, `SELECT `+staffColumns+` FROM staff WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to get staff %s: %w", id, err)
	}
	return &st, nil
}

func (s *Store) GetStaffByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	var st domain.Staff
	err := s.get(ctx, s.db, &st, `SELECT `+staffColumns+` FROM staff WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get staff by email: %w", err)
	}
	return &st, nil
}

func (s *Store) ListStaff(ctx context.Context, hotelID string) ([]domain.Staff, error) {
	var out []domain.Staff
	if err := s.list(ctx, s.db, &out, `SELECT `+staffColumns+` FROM staff WHERE hotel_id = ? ORDER BY name`, hotelID); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return out, nil
}

func (s *Store) CreateSession(ctx context.Context, sess *domain.Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now()
	}
	_, err := s.exec(ctx, s.db, `INSERT INTO sessions (token_hash, staff_id, user_agent, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`, sess.TokenHash, sess.StaffID, sess.UserAgent, sess.ExpiresAt.UTC(), sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var sess domain.Session
	err := s.get(ctx, s.db, &sess, `SELECT token_hash, staff_id, user_agent, expires_at, created_at
		FROM sessions WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	if _, err := s.exec(ctx, s.db, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteStaffSessions(ctx context.Context, staffID string) error {
	if _, err := s.exec(ctx, s.db, `DELETE FROM sessions WHERE staff_id = ?`, staffID); err != nil {
		return fmt.Errorf("failed to delete sessions for %s: %w", staffID, err)
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, at time.Time) (int64, error) {
	res, err := s.exec(ctx, s.db, `DELETE FROM sessions WHERE expires_at < ?`, at.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
