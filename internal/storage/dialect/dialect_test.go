package dialect

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		dialectType DialectType
		wantName    string
		wantErr     bool
	}{
		{"sqlite", SQLite, "sqlite", false},
		{"postgres", Postgres, "postgres", false},
		{"mysql", DialectType("mysql"), "", true},
		{"unknown", DialectType("unknown"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.dialectType)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil && d.Name() != tt.wantName {
				t.Errorf("Name() = %v, want %v", d.Name(), tt.wantName)
			}
		})
	}
}

func TestFromDriverName(t *testing.T) {
	tests := []struct {
		driverName string
		wantName   string
		wantDriver string
		wantErr    bool
	}{
		{"sqlite", "sqlite", "sqlite", false},
		{"sqlite3", "sqlite", "sqlite", false},
		{"postgres", "postgres", "pgx", false},
		{"pgx", "postgres", "pgx", false},
		{"mysql", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.driverName, func(t *testing.T) {
			d, err := FromDriverName(tt.driverName)
			if (err != nil) != tt.wantErr {
				t.Errorf("FromDriverName() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}
			if d.Name() != tt.wantName {
				t.Errorf("Name() = %v, want %v", d.Name(), tt.wantName)
			}
			if d.DriverName() != tt.wantDriver {
				t.Errorf("DriverName() = %v, want %v", d.DriverName(), tt.wantDriver)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	query := "SELECT * FROM reservations WHERE hotel_id = ? AND check_in < ? AND check_out > ?"

	sqlite, _ := New(SQLite)
	if got := sqlite.Rebind(query); got != query {
		t.Errorf("sqlite Rebind() = %q, want unchanged", got)
	}

	pg, _ := New(Postgres)
	want := "SELECT * FROM reservations WHERE hotel_id = $1 AND check_in < $2 AND check_out > $3"
	if got := pg.Rebind(query); got != want {
		t.Errorf("postgres Rebind() = %q, want %q", got, want)
	}
}

func TestLocking(t *testing.T) {
	sqlite, _ := New(SQLite)
	if sqlite.LockClause() != "" {
		t.Errorf("sqlite LockClause() = %q, want empty", sqlite.LockClause())
	}
	if sqlite.MaxOpenConns() != 1 {
		t.Errorf("sqlite MaxOpenConns() = %d, want 1", sqlite.MaxOpenConns())
	}

	pg, _ := New(Postgres)
	if pg.LockClause() != "FOR UPDATE" {
		t.Errorf("postgres LockClause() = %q, want FOR UPDATE", pg.LockClause())
	}
}

func TestIsUniqueViolation(t *testing.T) {
	sqlite, _ := New(SQLite)
	pg, _ := New(Postgres)

	sqliteErr := errors.New("constraint failed: UNIQUE constraint failed: rooms.hotel_id, rooms.number (2067)")
	pgErr := errors.New(`ERROR: duplicate key value violates unique constraint "rooms_number" (SQLSTATE 23505)`)

	if !sqlite.IsUniqueViolation(sqliteErr) {
		t.Error("sqlite should recognise its unique violation")
	}
	if sqlite.IsUniqueViolation(pgErr) {
		t.Error("sqlite should not match postgres errors")
	}
	if !pg.IsUniqueViolation(pgErr) {
		t.Error("postgres should recognise SQLSTATE 23505")
	}
	if pg.IsUniqueViolation(nil) {
		t.Error("nil is not a violation")
	}
}
