// Package sqldb implements storage.Store on database/sql through sqlx. SQLite
// (modernc.org/sqlite) and PostgreSQL (pgx) are supported through storage/dialect.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tjfontaine/innkeeper/internal/storage"
	"github.com/tjfontaine/innkeeper/internal/storage/dialect"
)

// Store is the SQL implementation of storage.Store.
type Store struct {
	db      *sqlx.DB
	dialect dialect.Dialect
}

var _ storage.Store = (*Store)(nil)

// Config holds database connection configuration
type Config struct {
	Driver string // Driver name: sqlite, postgres
	DSN    string // Data source name / connection string
}

// New opens the database, applies the dialect's pragmas and creates or migrates the schema.
func New(cfg Config) (*Store, error) {
	d, err := dialect.FromDriverName(cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("unsupported database driver: %w", err)
	}

	db, err := sqlx.Open(d.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if n := d.MaxOpenConns(); n > 0 {
		db.SetMaxOpenConns(n)
	}

	for _, stmt := range d.PragmaStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute pragma: %w", err)
		}
	}

	store := &Store{db: db, dialect: d}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSQLite opens a SQLite store at dbPath.
func NewSQLite(dbPath string) (*Store, error) {
	return New(Config{Driver: "sqlite", DSN: dbPath})
}

// Dialect returns the dialect being used
func (s *Store) Dialect() dialect.Dialect {
	return s.dialect
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	b := s.dialect.BooleanType()
	ts := s.dialect.TimestampType()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS hotels (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			address TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL,
			timezone TEXT NOT NULL,
			tax_rate_bp INTEGER NOT NULL DEFAULT 0,
			check_in_time TEXT NOT NULL DEFAULT '15:00',
			check_out_time TEXT NOT NULL DEFAULT '11:00',
			active ` + b + ` NOT NULL,
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS room_types (
			id TEXT PRIMARY KEY,
			hotel_id TEXT NOT NULL REFERENCES hotels(id),
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			base_rate BIGINT NOT NULL,
			max_occupancy INTEGER NOT NULL,
			amenities TEXT NOT NULL DEFAULT '[]',
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL,
			UNIQUE (hotel_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			hotel_id TEXT NOT NULL REFERENCES hotels(id),
			room_type_id TEXT NOT NULL REFERENCES room_types(id),
			number TEXT NOT NULL,
			floor INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			housekeeping TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL,
			UNIQUE (hotel_id, number)
		)`,
		`CREATE TABLE IF NOT EXISTS guests (
			id TEXT PRIMARY KEY,
			hotel_id TEXT NOT NULL REFERENCES hotels(id),
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			nationality TEXT NOT NULL DEFAULT '',
			document_number TEXT NOT NULL DEFAULT '',
			vip ` + b + ` NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reservations (
			id TEXT PRIMARY KEY,
			hotel_id TEXT NOT NULL REFERENCES hotels(id),
			code TEXT NOT NULL,
			guest_id TEXT NOT NULL REFERENCES guests(id),
			room_id TEXT NOT NULL REFERENCES rooms(id),
			check_in TEXT NOT NULL,
			check_out TEXT NOT NULL,
			adults INTEGER NOT NULL,
			children INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			source TEXT NOT NULL,
			rate_per_night BIGINT NOT NULL,
			total_amount BIGINT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_by TEXT NOT NULL DEFAULT '',
			checked_in_at ` + ts + `,
			checked_out_at ` + ts + `,
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL,
			UNIQUE (hotel_id, code)
		)`,
		`CREATE TABLE IF NOT EXISTS folios (
			id TEXT PRIMARY KEY,
			hotel_id TEXT NOT NULL REFERENCES hotels(id),
			reservation_id TEXT NOT NULL REFERENCES reservations(id),
			number TEXT NOT NULL,
			status TEXT NOT NULL,
			currency TEXT NOT NULL,
			tax_rate_bp INTEGER NOT NULL DEFAULT 0,
			closed_at ` + ts + `,
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL,
			UNIQUE (hotel_id, number)
		)`,
		`CREATE TABLE IF NOT EXISTS folio_items (
			id TEXT PRIMARY KEY,
			hotel_id TEXT NOT NULL,
			folio_id TEXT NOT NULL REFERENCES folios(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			description TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			unit_amount BIGINT NOT NULL,
			amount BIGINT NOT NULL,
			service_date TEXT NOT NULL,
			posted_by TEXT NOT NULL DEFAULT '',
			posted_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			hotel_id TEXT NOT NULL,
			folio_id TEXT NOT NULL REFERENCES folios(id) ON DELETE CASCADE,
			method TEXT NOT NULL,
			amount BIGINT NOT NULL,
			reference TEXT NOT NULL DEFAULT '',
			received_by TEXT NOT NULL DEFAULT '',
			received_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			hotel_id TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			active ` + b + ` NOT NULL,
			last_login_at ` + ts + `,
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token_hash TEXT PRIMARY KEY,
			staff_id TEXT NOT NULL REFERENCES staff(id) ON DELETE CASCADE,
			user_agent TEXT NOT NULL DEFAULT '',
			expires_at ` + ts + ` NOT NULL,
			created_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS agent_drafts (
			id TEXT PRIMARY KEY,
			hotel_id TEXT NOT NULL,
			staff_id TEXT NOT NULL,
			conversation_id TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL,
			payload TEXT NOT NULL,
			summary TEXT NOT NULL,
			status TEXT NOT NULL,
			result_id TEXT NOT NULL DEFAULT '',
			expires_at ` + ts + ` NOT NULL,
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			hotel_id TEXT NOT NULL,
			staff_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			hotel_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			tool_calls TEXT NOT NULL DEFAULT '',
			tool_call_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			created_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_events (
			id TEXT PRIMARY KEY,
			hotel_id TEXT NOT NULL DEFAULT '',
			actor_id TEXT NOT NULL,
			action TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			created_at ` + ts + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_hotel ON rooms(hotel_id)`,
		`CREATE INDEX IF NOT EXISTS idx_guests_hotel_name ON guests(hotel_id, last_name)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_room_dates ON reservations(room_id, check_in, check_out)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_hotel_dates ON reservations(hotel_id, check_in)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_guest ON reservations(guest_id)`,
		`CREATE INDEX IF NOT EXISTS idx_folios_reservation ON folios(reservation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_folio_items_folio ON folio_items(folio_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_hotel_received ON payments(hotel_id, received_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_drafts_status ON agent_drafts(status, expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_conversation ON chat_messages(conversation_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_hotel ON audit_events(hotel_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(s.dialect.Rebind(stmt)); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	// Run migrations for existing databases - add columns that may not exist
	if err := s.runMigrations(); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_drafts_conversation ON agent_drafts(conversation_id)`,
	}
	for _, stmt := range indexes {
		if _, err := s.db.Exec(s.dialect.Rebind(stmt)); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func (s *Store) runMigrations() error {
	migrations := []struct {
		table  string
		column string
		ddl    string
	}{
		{"reservations", "cancel_reason", "ALTER TABLE reservations ADD COLUMN cancel_reason TEXT NOT NULL DEFAULT ''"},
		{"agent_drafts", "conversation_id", "ALTER TABLE agent_drafts ADD COLUMN conversation_id TEXT NOT NULL DEFAULT ''"},
	}

	for _, m := range migrations {
		exists, err := s.columnExists(m.table, m.column)
		if err != nil {
			return fmt.Errorf("failed to check column %s.%s: %w", m.table, m.column, err)
		}
		if !exists {
			if _, err := s.db.Exec(s.dialect.Rebind(m.ddl)); err != nil {
				return fmt.Errorf("failed to add column %s.%s: %w", m.table, m.column, err)
			}
		}
	}

	return nil
}

func (s *Store) columnExists(table, column string) (bool, error) {
	var count int
	err := s.db.QueryRow(s.dialect.ColumnExistsQuery(), table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// get runs a single-row query on q, mapping sql.ErrNoRows to storage.ErrNotFound.
func (s *Store) get(ctx context.Context, q sqlx.QueryerContext, dest any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q, dest, s.dialect.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func (s *Store) list(ctx context.Context, q sqlx.QueryerContext, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q, dest, s.dialect.Rebind(query), args...)
}

// exec runs a statement and maps unique violations to storage.ErrConflict.
func (s *Store) exec(ctx context.Context, e sqlx.ExecerContext, query string, args ...any) (sql.Result, error) {
	res, err := e.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if s.dialect.IsUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %v", storage.ErrConflict, err)
	}
	return res, err
}

// execOne is exec for statements that must touch exactly one row.
func (s *Store) execOne(ctx context.Context, e sqlx.ExecerContext, query string, args ...any) error {
	res, err := s.exec(ctx, e, query, args...)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// placeholders returns "?, ?, ?" for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func now() time.Time {
	return time.Now().UTC()
}

func stamp(created, updated *time.Time) {
	t := now()
	if created.IsZero() {
		*created = t
	}
	*updated = t
}
