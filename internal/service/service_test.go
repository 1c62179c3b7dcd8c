package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tjfontaine/innkeeper/internal/auth"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
	"github.com/tjfontaine/innkeeper/internal/storage/sqldb"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

var memdbSeq atomic.Int64

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	svc   *Service
	clock *clock
	super tenant.Scope
	admin tenant.Scope
	hotel *domain.Hotel
	room  *domain.Room
	suite *domain.Room
}

var signingKey = []byte("0123456789abcdef0123456789abcdef")

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	store, err := sqldb.NewSQLite(fmt.Sprintf("file:svcdb%d?mode=memory&cache=shared", memdbSeq.Add(1)))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	signer, err := auth.NewSigner(signingKey, time.Hour)
	require.NoError(t, err)

	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	e := &env{
		svc:   New(store, WithClock(c.now), WithSigner(signer)),
		clock: c,
		super: tenant.Scope{StaffID: "root", Role: domain.RoleSuperAdmin},
	}

	e.hotel, err = e.svc.CreateHotel(ctx, e.super, HotelInput{Name: "Harbor View", TaxRateBP: 1000})
	require.NoError(t, err)
	e.admin = tenant.Scope{StaffID: "admin-1", HotelID: e.hotel.ID, Role: domain.RoleAdmin}

	double, err := e.svc.CreateRoomType(ctx, e.admin, RoomTypeInput{Name: "Double", BaseRate: 10000, MaxOccupancy: 2})
	require.NoError(t, err)
	suite, err := e.svc.CreateRoomType(ctx, e.admin, RoomTypeInput{Name: "Suite", BaseRate: 25000, MaxOccupancy: 4})
	require.NoError(t, err)

	e.room, err = e.svc.CreateRoom(ctx, e.admin, RoomInput{RoomTypeID: double.ID, Number: "101", Floor: 1})
	require.NoError(t, err)
	e.suite, err = e.svc.CreateRoom(ctx, e.admin, RoomInput{RoomTypeID: suite.ID, Number: "201", Floor: 2})
	require.NoError(t, err)
	return e
}

func (e *env) book(t *testing.T, roomID, in, out string, confirm bool) *domain.Reservation {
	t.Helper()
	res, err := e.svc.CreateReservation(context.Background(), e.admin, ReservationInput{
		Guest:    &GuestInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		RoomID:   roomID,
		CheckIn:  domain.MustParseDate(in),
		CheckOut: domain.MustParseDate(out),
		Adults:   2,
		Confirm:  confirm,
	})
	require.NoError(t, err)
	return res
}

func apiErr(t *testing.T, err error) *domain.APIError {
	t.Helper()
	require.Error(t, err)
	return domain.AsAPIError(err)
}

func TestReservationLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res := e.book(t, e.room.ID, "2025-03-01", "2025-03-03", true)
	assert.True(t, strings.HasPrefix(res.Code, "RSV-"))
	assert.Len(t, res.Code, 10)
	assert.Equal(t, domain.StatusConfirmed, res.Status)
	assert.Equal(t, int64(10000), res.RatePerNight)
	assert.Equal(t, int64(20000), res.TotalAmount)

	folio, err := e.svc.GetReservationFolio(ctx, e.admin, res.ID)
	require.NoError(t, err)
	assert.Len(t, folio.Items, 4)
	assert.Equal(t, int64(20000), folio.Totals.Charges)
	assert.Equal(t, int64(2000), folio.Totals.Tax)
	assert.Equal(t, int64(22000), folio.Totals.Balance)

	byCode, err := e.svc.GetReservation(ctx, e.admin, strings.ToLower(res.Code))
	require.NoError(t, err)
	assert.Equal(t, res.ID, byCode.ID)

	checkedIn, err := e.svc.CheckIn(ctx, e.admin, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCheckedIn, checkedIn.Status)
	room, err := e.svc.GetRoom(ctx, e.admin, e.room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomOccupied, room.Status)

	_, err = e.svc.CheckOut(ctx, e.admin, res.ID, false)
	assert.Equal(t, domain.ErrorCodeOutstandingBalance, apiErr(t, err).Code)

	_, err = e.svc.AddPayment(ctx, e.admin, folio.ID, PaymentInput{Method: domain.PaymentCard, Amount: 22000})
	require.NoError(t, err)

	out, err := e.svc.CheckOut(ctx, e.admin, res.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCheckedOut, out.Status)

	closed, err := e.svc.GetFolio(ctx, e.admin, folio.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FolioClosed, closed.Status)

	room, err = e.svc.GetRoom(ctx, e.admin, e.room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomAvailable, room.Status)
	assert.Equal(t, domain.HousekeepingDirty, room.Housekeeping)
}

func TestCreateReservationRejectsOverlap(t *testing.T) {
	e := newEnv(t)
	first := e.book(t, e.room.ID, "2025-03-05", "2025-03-08", false)

	_, err := e.svc.CreateReservation(context.Background(), e.admin, ReservationInput{
		Guest:    &GuestInput{FirstName: "Alan", LastName: "Turing"},
		RoomID:   e.room.ID,
		CheckIn:  domain.MustParseDate("2025-03-07"),
		CheckOut: domain.MustParseDate("2025-03-09"),
		Adults:   1,
	})
	ae := apiErr(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, ae.Type)
	assert.Equal(t, domain.ErrorCodeRoomUnavailable, ae.Code)
	assert.Contains(t, ae.Message, first.Code)

	// Back-to-back stays share the changeover day.
	e.book(t, e.room.ID, "2025-03-08", "2025-03-10", false)
}

// racingStore loses every booking to a concurrent writer.
type racingStore struct {
	storage.Store
}

func (racingStore) CreateReservation(context.Context, *domain.Reservation, *domain.Folio) error {
	return storage.ErrOverlap
}

func TestFailedBookingRemovesNewGuest(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := New(racingStore{Store: e.svc.store}, WithClock(e.clock.now))

	_, err := svc.CreateReservation(ctx, e.admin, ReservationInput{
		Guest:    &GuestInput{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
		RoomID:   e.room.ID,
		CheckIn:  domain.MustParseDate("2025-03-05"),
		CheckOut: domain.MustParseDate("2025-03-07"),
		Adults:   1,
	})
	require.Error(t, err)

	guests, err := e.svc.SearchGuests(ctx, e.admin, "Hopper", 0)
	require.NoError(t, err)
	assert.Empty(t, guests)

	// An existing guest is left alone.
	known := e.book(t, e.suite.ID, "2025-03-10", "2025-03-11", false)
	_, err = svc.CreateReservation(ctx, e.admin, ReservationInput{
		GuestID:  known.GuestID,
		RoomID:   e.room.ID,
		CheckIn:  domain.MustParseDate("2025-03-05"),
		CheckOut: domain.MustParseDate("2025-03-07"),
		Adults:   1,
	})
	require.Error(t, err)
	_, err = e.svc.store.GetGuest(ctx, e.hotel.ID, known.GuestID)
	assert.NoError(t, err)
}

func TestCreateReservationValidation(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name  string
		in    ReservationInput
		param string
	}{
		{
			name:  "no guest",
			in:    ReservationInput{RoomID: e.room.ID, CheckIn: domain.MustParseDate("2025-03-02"), CheckOut: domain.MustParseDate("2025-03-03"), Adults: 1},
			param: "guest_id",
		},
		{
			name:  "inverted stay",
			in:    ReservationInput{GuestID: "x", RoomID: e.room.ID, CheckIn: domain.MustParseDate("2025-03-04"), CheckOut: domain.MustParseDate("2025-03-03"), Adults: 1},
			param: "check_out",
		},
		{
			name:  "in the past",
			in:    ReservationInput{Guest: &GuestInput{FirstName: "A", LastName: "B"}, RoomID: e.room.ID, CheckIn: domain.MustParseDate("2025-02-20"), CheckOut: domain.MustParseDate("2025-02-22"), Adults: 1},
			param: "check_out",
		},
		{
			name:  "over occupancy",
			in:    ReservationInput{Guest: &GuestInput{FirstName: "A", LastName: "B"}, RoomID: e.room.ID, CheckIn: domain.MustParseDate("2025-03-02"), CheckOut: domain.MustParseDate("2025-03-03"), Adults: 2, Children: 1},
			param: "adults",
		},
		{
			name:  "no adults",
			in:    ReservationInput{Guest: &GuestInput{FirstName: "A", LastName: "B"}, RoomID: e.room.ID, CheckIn: domain.MustParseDate("2025-03-02"), CheckOut: domain.MustParseDate("2025-03-03")},
			param: "adults",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.CreateReservation(context.Background(), e.admin, tt.in)
			ae := apiErr(t, err)
			assert.Equal(t, domain.ErrorTypeInvalidRequest, ae.Type)
			assert.Equal(t, tt.param, ae.Param)
		})
	}
}

func TestCancelVoidsUnpaidFolio(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	res := e.book(t, e.room.ID, "2025-03-10", "2025-03-12", false)

	cancelled, err := e.svc.Cancel(ctx, e.admin, res.ID, "  change of plans ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, "change of plans", cancelled.CancelReason)

	folio, err := e.svc.GetReservationFolio(ctx, e.admin, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FolioVoid, folio.Status)

	// The room is free again.
	e.book(t, e.room.ID, "2025-03-10", "2025-03-12", false)

	_, err = e.svc.CheckIn(ctx, e.admin, res.ID)
	assert.Equal(t, domain.ErrorCodeInvalidTransition, apiErr(t, err).Code)
}

func TestUpdateReservationReprices(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	res := e.book(t, e.room.ID, "2025-03-10", "2025-03-12", true)

	out := domain.MustParseDate("2025-03-13")
	updated, err := e.svc.UpdateReservation(ctx, e.admin, res.ID, ReservationPatch{CheckOut: &out})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), updated.TotalAmount)

	folio, err := e.svc.GetReservationFolio(ctx, e.admin, res.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), folio.Totals.Charges)
	assert.Equal(t, int64(3000), folio.Totals.Tax)
}

func TestBillingCharges(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	res := e.book(t, e.room.ID, "2025-03-01", "2025-03-02", true)
	folio, err := e.svc.GetReservationFolio(ctx, e.admin, res.ID)
	require.NoError(t, err)

	view, err := e.svc.AddCharge(ctx, e.admin, folio.ID, ChargeInput{Description: "Minibar", Quantity: 2, UnitAmount: 450})
	require.NoError(t, err)
	assert.Equal(t, int64(10900), view.Totals.Charges)

	view, err = e.svc.AddCharge(ctx, e.admin, folio.ID, ChargeInput{Kind: domain.ItemDiscount, Description: "Loyalty", UnitAmount: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(-500), view.Totals.Discounts)
	assert.Equal(t, int64(10900-500+1000), view.Totals.Balance)

	_, err = e.svc.AddCharge(ctx, e.admin, folio.ID, ChargeInput{Kind: domain.ItemTax, Description: "VAT", UnitAmount: 10})
	assert.Equal(t, "kind", apiErr(t, err).Param)

	_, err = e.svc.CloseFolio(ctx, e.admin, folio.ID)
	assert.Equal(t, domain.ErrorCodeOutstandingBalance, apiErr(t, err).Code)

	_, err = e.svc.AddPayment(ctx, e.admin, folio.ID, PaymentInput{Method: domain.PaymentCash, Amount: view.Totals.Balance})
	require.NoError(t, err)
	closed, err := e.svc.CloseFolio(ctx, e.admin, folio.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FolioClosed, closed.Status)

	_, err = e.svc.AddCharge(ctx, e.admin, folio.ID, ChargeInput{Description: "Late", UnitAmount: 100})
	assert.Equal(t, domain.ErrorCodeFolioClosed, apiErr(t, err).Code)

	var buf bytes.Buffer
	require.NoError(t, e.svc.RenderInvoice(ctx, e.admin, &buf, folio.ID))
	assert.Contains(t, buf.String(), folio.Number)
	assert.Contains(t, buf.String(), "Minibar")
}

func TestTenantIsolation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	res := e.book(t, e.room.ID, "2025-03-01", "2025-03-02", true)

	other, err := e.svc.CreateHotel(ctx, e.super, HotelInput{Name: "Lakeside"})
	require.NoError(t, err)
	intruder := tenant.Scope{StaffID: "admin-2", HotelID: other.ID, Role: domain.RoleAdmin}

	_, err = e.svc.GetReservation(ctx, intruder, res.ID)
	assert.Equal(t, domain.ErrorTypeNotFound, apiErr(t, err).Type)
	_, err = e.svc.GetRoom(ctx, intruder, e.room.ID)
	assert.Equal(t, domain.ErrorTypeNotFound, apiErr(t, err).Type)

	rooms, err := e.svc.ListRooms(ctx, intruder)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestPermissions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	housekeeper := tenant.Scope{StaffID: "hk-1", HotelID: e.hotel.ID, Role: domain.RoleHousekeeping}

	_, err := e.svc.CreateReservation(ctx, housekeeper, ReservationInput{})
	assert.Equal(t, domain.ErrorTypePermission, apiErr(t, err).Type)

	room, err := e.svc.SetHousekeeping(ctx, housekeeper, e.room.ID, domain.HousekeepingDirty)
	require.NoError(t, err)
	assert.Equal(t, domain.HousekeepingDirty, room.Housekeeping)

	_, err = e.svc.CreateHotel(ctx, e.admin, HotelInput{Name: "Sneaky"})
	assert.Equal(t, domain.ErrorTypePermission, apiErr(t, err).Type)

	_, err = e.svc.CreateStaff(ctx, e.admin, StaffInput{
		Email: "boss@example.com", Name: "Boss", Password: "long-enough-pw", Role: domain.RoleSuperAdmin,
	})
	assert.Equal(t, domain.ErrorTypePermission, apiErr(t, err).Type)

	_, err = e.svc.ListRooms(ctx, e.super)
	assert.Equal(t, "hotel_id", apiErr(t, err).Param)
}

func TestDraftConfirmOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	clerk := tenant.Scope{StaffID: "clerk-1", HotelID: e.hotel.ID, Role: domain.RoleFrontDesk}

	draft, err := e.svc.DraftReservation(ctx, clerk, "conv-1", ReservationInput{
		Guest:    &GuestInput{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
		RoomID:   e.suite.ID,
		CheckIn:  domain.MustParseDate("2025-03-04"),
		CheckOut: domain.MustParseDate("2025-03-06"),
		Adults:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DraftPending, draft.Status)
	assert.Contains(t, draft.Summary, "Grace Hopper")
	assert.Contains(t, draft.Summary, "USD 500.00")

	pending, err := e.svc.ListReservations(ctx, clerk, storage.ReservationFilter{})
	require.NoError(t, err)
	assert.Empty(t, pending, "drafting must not book")

	colleague := tenant.Scope{StaffID: "clerk-2", HotelID: e.hotel.ID, Role: domain.RoleFrontDesk}
	_, err = e.svc.ConfirmDraft(ctx, colleague, draft.ID)
	assert.Equal(t, domain.ErrorTypeNotFound, apiErr(t, err).Type)

	res, err := e.svc.ConfirmDraft(ctx, clerk, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, res.Status)
	assert.Equal(t, domain.SourceAgent, res.Source)
	assert.Equal(t, int64(50000), res.TotalAmount)

	_, err = e.svc.ConfirmDraft(ctx, clerk, draft.ID)
	assert.Equal(t, domain.ErrorTypeConflict, apiErr(t, err).Type)

	stored, err := e.svc.GetDraft(ctx, clerk, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DraftConfirmed, stored.Status)
	assert.Equal(t, res.ID, stored.ResultID)
}

func TestDraftExpires(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	draft, err := e.svc.DraftReservation(ctx, e.admin, "", ReservationInput{
		Guest:    &GuestInput{FirstName: "Grace", LastName: "Hopper"},
		RoomID:   e.room.ID,
		CheckIn:  domain.MustParseDate("2025-03-04"),
		CheckOut: domain.MustParseDate("2025-03-05"),
		Adults:   1,
	})
	require.NoError(t, err)

	e.clock.advance(DefaultDraftTTL + time.Minute)
	_, err = e.svc.ConfirmDraft(ctx, e.admin, draft.ID)
	assert.Equal(t, domain.ErrorCodeDraftExpired, apiErr(t, err).Code)

	_, err = e.svc.DiscardDraft(ctx, e.admin, draft.ID)
	assert.Equal(t, domain.ErrorCodeDraftExpired, apiErr(t, err).Code)
}

func TestLoginAndAuthenticate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	st, err := e.svc.CreateStaff(ctx, e.admin, StaffInput{
		Email: "Desk@Example.com", Name: "Desk Clerk", Password: "correct horse", Role: domain.RoleFrontDesk,
	})
	require.NoError(t, err)
	assert.Equal(t, "desk@example.com", st.Email)
	assert.Equal(t, e.hotel.ID, st.HotelID)

	_, err = e.svc.Login(ctx, "desk@example.com", "wrong password", "test")
	assert.Equal(t, domain.ErrorCodeInvalidCredentials, apiErr(t, err).Code)

	login, err := e.svc.Login(ctx, "DESK@example.com", "correct horse", "test")
	require.NoError(t, err)

	who, err := e.svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, st.ID, who.ID)

	e.clock.advance(DefaultSessionTTL)
	_, err = e.svc.Authenticate(ctx, login.Token)
	assert.Equal(t, domain.ErrorTypeAuthentication, apiErr(t, err).Type)
}

func TestImpersonation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := &domain.Staff{ID: "root", Name: "Root", Role: domain.RoleSuperAdmin}

	cookie, imp, err := e.svc.Impersonate(ctx, admin, e.hotel.ID, domain.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, e.hotel.ID, imp.HotelID)

	sc := e.svc.ResolveScope(ctx, admin, cookie)
	assert.True(t, sc.Impersonating)
	assert.Equal(t, e.hotel.ID, sc.HotelID)
	assert.Equal(t, domain.RoleManager, sc.Role)
	assert.Equal(t, "root", sc.StaffID)

	otherAdmin := &domain.Staff{ID: "root2", Name: "Other", Role: domain.RoleSuperAdmin}
	sc = e.svc.ResolveScope(ctx, otherAdmin, cookie)
	assert.False(t, sc.Impersonating)
	assert.Equal(t, domain.RoleSuperAdmin, sc.Role)
	assert.Empty(t, sc.HotelID)

	clerk := &domain.Staff{ID: "clerk", HotelID: "elsewhere", Role: domain.RoleFrontDesk}
	assert.Equal(t, "elsewhere", e.svc.ResolveScope(ctx, clerk, cookie).HotelID)

	_, _, err = e.svc.Impersonate(ctx, clerk, e.hotel.ID, domain.RoleAdmin)
	assert.Equal(t, domain.ErrorTypePermission, apiErr(t, err).Type)

	e.clock.advance(DefaultImpersonationTTL + time.Second)
	assert.False(t, e.svc.ResolveScope(ctx, admin, cookie).Impersonating)

	events, err := e.svc.ListAudit(ctx, e.super, e.hotel.ID, 0)
	require.NoError(t, err)
	var actions []string
	for _, ev := range events {
		actions = append(actions, ev.Action)
	}
	assert.Contains(t, actions, "impersonation.start")
}

func TestDashboard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res := e.book(t, e.room.ID, "2025-03-01", "2025-03-03", true)
	e.book(t, e.suite.ID, "2025-03-01", "2025-03-02", true)
	_, err := e.svc.CheckIn(ctx, e.admin, res.ID)
	require.NoError(t, err)

	d, err := e.svc.Dashboard(ctx, e.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, d.TotalRooms)
	assert.Equal(t, 1, d.Arrivals)
	assert.Equal(t, 1, d.InHouse)
	assert.Equal(t, 0, d.Departures)
	assert.Equal(t, int64(22000+27500), d.OpenBalance)
}

func TestImportGuests(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.CreateGuest(ctx, e.admin, GuestInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"First Name", "Last Name", "E-mail", "VIP"},
		{"Grace", "Hopper", "grace@example.com", "yes"},
		{"Ada", "Lovelace", "ADA@example.com", ""},
		{"Nameless", "", "nobody@example.com", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := e.svc.ImportGuests(ctx, e.admin, "guests.xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)

	found, err := e.svc.SearchGuests(ctx, e.admin, "hopper", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.True(t, found[0].VIP)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
	}{
		{"Lovelace, Ada", "Ada", "Lovelace"},
		{"Grace Brewster Hopper", "Grace Brewster", "Hopper"},
		{"Cher", "", "Cher"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := splitName(tt.in)
		if first != tt.first || last != tt.last {
			t.Errorf("splitName(%q) = %q, %q, want %q, %q", tt.in, first, last, tt.first, tt.last)
		}
	}
}
