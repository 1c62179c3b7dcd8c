package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/innkeeper/internal/auth"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/service"
	"github.com/tjfontaine/innkeeper/internal/storage/sqldb"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

const fixturesYAML = `
super_admins:
  - email: root@example.com
    name: Root
    password: correct horse battery
hotels:
  - name: Harbor View
    tax_rate_bp: 1000
    room_types:
      - name: Double
        base_rate: 12000
        max_occupancy: 2
        rooms: ["101", "102"]
      - name: Suite
        base_rate: 30000
        max_occupancy: 4
        rooms: ["1201"]
    staff:
      - email: desk@example.com
        name: Desk
        password: correct horse battery
        role: front_desk
    guests:
      - first_name: Ada
        last_name: Lovelace
        email: ada@example.com
        vip: true
    reservations:
      - guest: ada@example.com
        room: "101"
        arrive_in_days: 1
        nights: 2
        adults: 2
        confirm: true
`

var seedSeq atomic.Int64

func seedService(t *testing.T) *service.Service {
	t.Helper()
	store, err := sqldb.NewSQLite(fmt.Sprintf("file:clidb%d?mode=memory&cache=shared", seedSeq.Add(1)))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return service.New(store, service.WithClock(func() time.Time { return now }))
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed", "hash-password", "create-superadmin", "timeline"} {
		assert.True(t, names[want], "missing %s command", want)
	}

	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "config.yaml", flag.DefValue)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
	}{
		{"argument", []string{"hash-password", "correct horse battery"}, ""},
		{"stdin", []string{"hash-password"}, "correct horse battery\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCommand()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetIn(strings.NewReader(tt.stdin))
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.Execute())

			hash := strings.TrimSpace(out.String())
			assert.NoError(t, auth.CheckPassword(hash, "correct horse battery"))
		})
	}

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"hash-password", "short"})
	assert.Error(t, cmd.Execute())
}

func TestParseFixtures(t *testing.T) {
	f, err := ParseFixtures(strings.NewReader(fixturesYAML))
	require.NoError(t, err)
	require.Len(t, f.Hotels, 1)
	assert.Equal(t, []string{"101", "102"}, f.Hotels[0].RoomTypes[0].Rooms)
	assert.Equal(t, domain.RoleFrontDesk, f.Hotels[0].Staff[0].Role)

	_, err = ParseFixtures(strings.NewReader("hotels:\n  - name: X\n    stars: 5\n"))
	assert.Error(t, err, "unknown fields are rejected")

	empty, err := ParseFixtures(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Hotels)
}

func TestReservationFixtureStay(t *testing.T) {
	today := domain.MustParseDate("2025-03-01")

	rel := ReservationFixture{ArriveInDays: 3}
	stay := rel.stay(today)
	assert.Equal(t, "2025-03-04", stay.CheckIn.String())
	assert.Equal(t, "2025-03-05", stay.CheckOut.String())

	abs := ReservationFixture{CheckIn: domain.MustParseDate("2025-04-10"), CheckOut: domain.MustParseDate("2025-04-12")}
	stay = abs.stay(today)
	assert.Equal(t, "2025-04-10", stay.CheckIn.String())
	assert.Equal(t, "2025-04-12", stay.CheckOut.String())
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc := seedService(t)
	f, err := ParseFixtures(strings.NewReader(fixturesYAML))
	require.NoError(t, err)

	res, err := Seed(ctx, svc, f)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created["super_admins"])
	assert.Equal(t, 1, res.Created["hotels"])
	assert.Equal(t, 2, res.Created["room_types"])
	assert.Equal(t, 3, res.Created["rooms"])
	assert.Equal(t, 1, res.Created["staff"])
	assert.Equal(t, 1, res.Created["guests"])
	assert.Equal(t, 1, res.Created["reservations"])

	root := tenant.Scope{StaffID: "test", Role: domain.RoleSuperAdmin}
	hotels, err := svc.ListHotels(ctx, root)
	require.NoError(t, err)
	require.Len(t, hotels, 1)
	assert.Equal(t, "harbor-view", hotels[0].Slug)

	sc := tenant.Scope{StaffID: "test", HotelID: hotels[0].ID, Role: domain.RoleManager}
	rooms, err := svc.ListRooms(ctx, sc)
	require.NoError(t, err)
	floors := map[string]int{}
	for _, r := range rooms {
		floors[r.Number] = r.Floor
	}
	assert.Equal(t, map[string]int{"101": 1, "102": 1, "1201": 12}, floors)

	again, err := Seed(ctx, svc, f)
	require.NoError(t, err)
	for kind, n := range again.Created {
		assert.Zero(t, n, "re-seeding created %s", kind)
	}
	assert.Equal(t, 1, again.Skipped["hotels"])
	assert.Equal(t, 3, again.Skipped["rooms"])
	assert.Equal(t, 1, again.Skipped["reservations"])
}

func TestSeedUnknownRoom(t *testing.T) {
	svc := seedService(t)
	f := &Fixtures{Hotels: []HotelFixture{{
		Name:         "Harbor View",
		Guests:       []GuestFixture{{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}},
		Reservations: []ReservationFixture{{Guest: "ada@example.com", Room: "999", ArriveInDays: 1}},
	}}}
	_, err := Seed(context.Background(), svc, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown room 999")
}

func TestFloorOf(t *testing.T) {
	tests := map[string]int{"101": 1, "1204": 12, "7": 0, "A12": 0, "B101": 0}
	for in, want := range tests {
		assert.Equal(t, want, floorOf(in), in)
	}
}

func TestCommandsAgainstDatabase(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	dsn := filepath.Join(dir, "innkeeper.db")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  driver: sqlite\n  dsn: "+dsn+"\n"), 0o600))
	fixtures := filepath.Join(dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte(fixturesYAML), 0o600))

	run := func(args ...string) (string, error) {
		cmd := NewRootCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
		err := cmd.Execute()
		return out.String(), err
	}

	out, err := run("migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite schema is up to date")

	out, err = run("seed", "-f", fixtures)
	require.NoError(t, err)
	assert.Contains(t, out, "rooms")

	out, err = run("create-superadmin", "--email", "ops@example.com", "--password", "another long secret")
	require.NoError(t, err)
	assert.Contains(t, out, "created super admin ops@example.com")

	_, err = run("create-superadmin", "--email", "ops@example.com", "--password", "another long secret")
	assert.Error(t, err, "duplicate email")

	t.Setenv(PasswordEnv, "")
	_, err = run("create-superadmin", "--email", "nopass@example.com")
	assert.Error(t, err)

	out, err = run("timeline", "--hotel", "harbor-view", "--days", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Harbor View")
	assert.Contains(t, out, "1201")
	assert.Contains(t, out, "Occ")

	_, err = run("timeline", "--hotel", "nowhere")
	assert.Error(t, err)
}
