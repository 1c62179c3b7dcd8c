package sqldb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
)

var memdbSeq atomic.Int64

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:memdb%d?mode=memory&cache=shared", memdbSeq.Add(1))
	store, err := NewSQLite(dsn)
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

type fixture struct {
	hotel    *domain.Hotel
	roomType *domain.RoomType
	room     *domain.Room
	guest    *domain.Guest
}

func seed(t *testing.T, store *Store, hotelID string) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		hotel: &domain.Hotel{
			ID: hotelID, Name: "Hotel " + hotelID, Slug: hotelID, Currency: "USD",
			Timezone: "UTC", TaxRateBP: 1000, CheckInTime: "15:00", CheckOutTime: "11:00", Active: true,
		},
		roomType: &domain.RoomType{
			ID: hotelID + "-dbl", HotelID: hotelID, Name: "Double", BaseRate: 12000, MaxOccupancy: 2,
			Amenities: domain.StringList{"wifi"},
		},
		room: &domain.Room{
			ID: hotelID + "-101", HotelID: hotelID, RoomTypeID: hotelID + "-dbl", Number: "101", Floor: 1,
			Status: domain.RoomAvailable, Housekeeping: domain.HousekeepingClean,
		},
		guest: &domain.Guest{
			ID: hotelID + "-g1", HotelID: hotelID, FirstName: "Grace", LastName: "Hopper",
			Email: "grace@example.com",
		},
	}
	if err := store.CreateHotel(ctx, f.hotel); err != nil {
		t.Fatalf("CreateHotel() error = %v", err)
	}
	if err := store.CreateRoomType(ctx, f.roomType); err != nil {
		t.Fatalf("CreateRoomType() error = %v", err)
	}
	if err := store.CreateRoom(ctx, f.room); err != nil {
		t.Fatalf("CreateRoom() error = %v", err)
	}
	if err := store.CreateGuest(ctx, f.guest); err != nil {
		t.Fatalf("CreateGuest() error = %v", err)
	}
	return f
}

func newReservation(f fixture, id, in, out string) *domain.Reservation {
	return &domain.Reservation{
		ID: id, HotelID: f.hotel.ID, Code: "RSV-" + strings.ToUpper(id), GuestID: f.guest.ID, RoomID: f.room.ID,
		CheckIn: domain.MustParseDate(in), CheckOut: domain.MustParseDate(out), Adults: 2,
		Status: domain.StatusConfirmed, Source: domain.SourceDirect, RatePerNight: 12000,
	}
}

func TestNew_WithConfig(t *testing.T) {
	store, err := New(Config{Driver: "sqlite", DSN: "file:memdb_cfg?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	if store.Dialect().Name() != "sqlite" {
		t.Errorf("Dialect name = %v, want sqlite", store.Dialect().Name())
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	if _, err := New(Config{Driver: "unsupported", DSN: "test"}); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestMigrationsAddColumns(t *testing.T) {
	store := newTestStore(t)
	for _, col := range []struct{ table, column string }{
		{"reservations", "cancel_reason"},
		{"agent_drafts", "conversation_id"},
	} {
		ok, err := store.columnExists(col.table, col.column)
		if err != nil {
			t.Fatalf("columnExists() error = %v", err)
		}
		if !ok {
			t.Errorf("column %s.%s missing after migrations", col.table, col.column)
		}
	}
}

func TestHotelsAndInventory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	f := seed(t, store, "h1")
	seed(t, store, "h2")

	hotels, err := store.ListHotels(ctx)
	if err != nil {
		t.Fatalf("ListHotels() error = %v", err)
	}
	if len(hotels) != 2 {
		t.Fatalf("ListHotels() len = %d, want 2", len(hotels))
	}
	if hotels[0].RoomCount != 1 || hotels[0].StaffCount != 0 {
		t.Errorf("counts = %d/%d, want 1/0", hotels[0].RoomCount, hotels[0].StaffCount)
	}

	rt, err := store.GetRoomType(ctx, "h1", f.roomType.ID)
	if err != nil {
		t.Fatalf("GetRoomType() error = %v", err)
	}
	if len(rt.Amenities) != 1 || rt.Amenities[0] != "wifi" {
		t.Errorf("Amenities = %v, want [wifi]", rt.Amenities)
	}

	// Another hotel's ids are invisible.
	if _, err := store.GetRoom(ctx, "h2", f.room.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetRoom() across hotels error = %v, want ErrNotFound", err)
	}

	room, err := store.GetRoom(ctx, "h1", f.room.ID)
	if err != nil {
		t.Fatalf("GetRoom() error = %v", err)
	}
	if room.RoomTypeName != "Double" {
		t.Errorf("RoomTypeName = %q, want Double", room.RoomTypeName)
	}

	dup := *f.room
	dup.ID = "h1-dup"
	if err := store.CreateRoom(ctx, &dup); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("CreateRoom() duplicate number error = %v, want ErrConflict", err)
	}

	n, err := store.CountRooms(ctx, "h1", f.roomType.ID)
	if err != nil || n != 1 {
		t.Errorf("CountRooms() = %d, %v; want 1", n, err)
	}

	room.Status = domain.RoomMaintenance
	if err := store.UpdateRoom(ctx, room); err != nil {
		t.Fatalf("UpdateRoom() error = %v", err)
	}
	rooms, err := store.ListRooms(ctx, "h1")
	if err != nil {
		t.Fatalf("ListRooms() error = %v", err)
	}
	if len(rooms) != 1 || rooms[0].Status != domain.RoomMaintenance {
		t.Errorf("ListRooms() = %+v", rooms)
	}
}

func TestSearchGuests(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seed(t, store, "h1")

	extra := &domain.Guest{ID: "g2", HotelID: "h1", FirstName: "Alan", LastName: "Turing", Phone: "+44 100"}
	if err := store.CreateGuest(ctx, extra); err != nil {
		t.Fatalf("CreateGuest() error = %v", err)
	}

	tests := []struct {
		q    string
		want int
	}{
		{"", 2},
		{"hopper", 1},
		{"GRACE hop", 1},
		{"+44", 1},
		{"example.com", 1},
		{"100%", 0},
		{"nobody", 0},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			got, err := store.SearchGuests(ctx, "h1", tt.q, 10)
			if err != nil {
				t.Fatalf("SearchGuests() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("SearchGuests(%q) len = %d, want %d", tt.q, len(got), tt.want)
			}
		})
	}

	g, err := store.FindGuestByEmail(ctx, "h1", "  GRACE@example.com ")
	if err != nil {
		t.Fatalf("FindGuestByEmail() error = %v", err)
	}
	if g.ID != "h1-g1" {
		t.Errorf("FindGuestByEmail() = %s, want h1-g1", g.ID)
	}
}

func TestCreateReservation_Overlap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	f := seed(t, store, "h1")

	first := newReservation(f, "r1", "2025-07-01", "2025-07-04")
	folio := &domain.Folio{
		ID: "f1", HotelID: "h1", Number: "F-0001", Status: domain.FolioOpen, Currency: "USD", TaxRateBP: 1000,
		Items: []domain.FolioItem{{
			ID: "i1", Kind: domain.ItemRoom, Description: "Room 101", Quantity: 3, UnitAmount: 12000,
			Amount: 36000, ServiceDate: domain.MustParseDate("2025-07-01"),
		}},
	}
	if err := store.CreateReservation(ctx, first, folio); err != nil {
		t.Fatalf("CreateReservation() error = %v", err)
	}

	clash := newReservation(f, "r2", "2025-07-03", "2025-07-05")
	if err := store.CreateReservation(ctx, clash, nil); !errors.Is(err, storage.ErrOverlap) {
		t.Fatalf("CreateReservation() overlapping error = %v, want ErrOverlap", err)
	}

	backToBack := newReservation(f, "r3", "2025-07-04", "2025-07-06")
	if err := store.CreateReservation(ctx, backToBack, nil); err != nil {
		t.Fatalf("CreateReservation() back-to-back error = %v", err)
	}

	sameCode := newReservation(f, "r4", "2025-08-01", "2025-08-02")
	sameCode.Code = first.Code
	if err := store.CreateReservation(ctx, sameCode, nil); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("CreateReservation() duplicate code error = %v, want ErrConflict", err)
	}

	// Moving r3 onto r1's nights must fail; cancelling r1 frees them.
	backToBack.CheckIn = domain.MustParseDate("2025-07-02")
	if err := store.UpdateReservation(ctx, backToBack); !errors.Is(err, storage.ErrOverlap) {
		t.Fatalf("UpdateReservation() overlapping error = %v, want ErrOverlap", err)
	}
	first.Status = domain.StatusCancelled
	if err := store.UpdateReservation(ctx, first); err != nil {
		t.Fatalf("UpdateReservation() cancel error = %v", err)
	}
	if err := store.UpdateReservation(ctx, backToBack); err != nil {
		t.Fatalf("UpdateReservation() after cancel error = %v", err)
	}

	got, err := store.GetReservationByCode(ctx, "h1", "rsv-r3")
	if err != nil {
		t.Fatalf("GetReservationByCode() error = %v", err)
	}
	if got.CheckIn.String() != "2025-07-02" {
		t.Errorf("CheckIn = %s, want 2025-07-02", got.CheckIn)
	}
	if got.GuestName != "Grace Hopper" || got.RoomNumber != "101" {
		t.Errorf("joined fields = %q/%q", got.GuestName, got.RoomNumber)
	}

	byRes, err := store.GetFolioByReservation(ctx, "h1", "r1")
	if err != nil {
		t.Fatalf("GetFolioByReservation() error = %v", err)
	}
	if len(byRes.Items) != 1 || byRes.Items[0].Amount != 36000 {
		t.Errorf("folio items = %+v", byRes.Items)
	}
}

func TestListReservations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	f := seed(t, store, "h1")

	for _, r := range []*domain.Reservation{
		newReservation(f, "a", "2025-07-01", "2025-07-03"),
		newReservation(f, "b", "2025-07-03", "2025-07-05"),
		newReservation(f, "c", "2025-07-10", "2025-07-12"),
	} {
		if err := store.CreateReservation(ctx, r, nil); err != nil {
			t.Fatalf("CreateReservation(%s) error = %v", r.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter storage.ReservationFilter
		want   []string
	}{
		{"all", storage.ReservationFilter{}, []string{"a", "b", "c"}},
		{"window", storage.ReservationFilter{From: domain.MustParseDate("2025-07-02"), To: domain.MustParseDate("2025-07-04")}, []string{"a", "b"}},
		{"arrivals", storage.ReservationFilter{CheckInOn: domain.MustParseDate("2025-07-03")}, []string{"b"}},
		{"departures", storage.ReservationFilter{CheckOutOn: domain.MustParseDate("2025-07-03")}, []string{"a"}},
		{"status", storage.ReservationFilter{Statuses: []domain.ReservationStatus{domain.StatusCancelled}}, nil},
		{"paged", storage.ReservationFilter{Limit: 1, Offset: 1}, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListReservations(ctx, "h1", tt.filter)
			if err != nil {
				t.Fatalf("ListReservations() error = %v", err)
			}
			var ids []string
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			if fmt.Sprint(ids) != fmt.Sprint(tt.want) {
				t.Errorf("ListReservations() = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestFolioLines(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	f := seed(t, store, "h1")

	res := newReservation(f, "r1", "2025-07-01", "2025-07-03")
	folio := &domain.Folio{ID: "f1", HotelID: "h1", Number: "F-1", Status: domain.FolioOpen, Currency: "USD"}
	if err := store.CreateReservation(ctx, res, folio); err != nil {
		t.Fatalf("CreateReservation() error = %v", err)
	}

	day := domain.MustParseDate("2025-07-01")
	if err := store.AddFolioItem(ctx, "h1", &domain.FolioItem{ID: "minibar", FolioID: "f1", Kind: domain.ItemService,
		Description: "Minibar", Quantity: 1, UnitAmount: 800, Amount: 800, ServiceDate: day}); err != nil {
		t.Fatalf("AddFolioItem() error = %v", err)
	}
	room := []domain.FolioItem{
		{ID: "room", Kind: domain.ItemRoom, Description: "Room", Quantity: 2, UnitAmount: 12000, Amount: 24000, ServiceDate: day},
		{ID: "tax", Kind: domain.ItemTax, Description: "Tax", Quantity: 1, UnitAmount: 2400, Amount: 2400, ServiceDate: day},
	}
	if err := store.ReplaceFolioItems(ctx, "h1", "f1", []domain.ItemKind{domain.ItemRoom, domain.ItemTax}, room); err != nil {
		t.Fatalf("ReplaceFolioItems() error = %v", err)
	}
	received := time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC)
	if err := store.AddPayment(ctx, "h1", &domain.Payment{ID: "p1", FolioID: "f1", Method: domain.PaymentCard,
		Amount: 10000, ReceivedAt: received}); err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}

	got, err := store.GetFolio(ctx, "h1", "f1")
	if err != nil {
		t.Fatalf("GetFolio() error = %v", err)
	}
	totals := got.Totals()
	if totals.Total != 27200 || totals.Balance != 17200 {
		t.Errorf("Totals() = %+v, want total 27200 balance 17200", totals)
	}

	if err := store.DeleteFolioItem(ctx, "h1", "f1", "minibar"); err != nil {
		t.Fatalf("DeleteFolioItem() error = %v", err)
	}
	if err := store.DeleteFolioItem(ctx, "h1", "f1", "minibar"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteFolioItem() twice error = %v, want ErrNotFound", err)
	}

	folios, err := store.ListFolios(ctx, "h1", storage.FolioFilter{
		Status:      domain.FolioOpen,
		ServiceFrom: day,
		ServiceTo:   day.AddDays(1),
	})
	if err != nil {
		t.Fatalf("ListFolios() error = %v", err)
	}
	if len(folios) != 1 || len(folios[0].Items) != 2 || len(folios[0].Payments) != 1 {
		t.Fatalf("ListFolios() = %+v", folios)
	}

	payments, err := store.ListPayments(ctx, "h1", received.Add(-time.Hour), received.Add(time.Hour))
	if err != nil || len(payments) != 1 {
		t.Errorf("ListPayments() = %v, %v; want 1 payment", payments, err)
	}
	payments, err = store.ListPayments(ctx, "h1", received.Add(time.Hour), received.Add(2*time.Hour))
	if err != nil || len(payments) != 0 {
		t.Errorf("ListPayments() outside window = %v, %v; want none", payments, err)
	}

	got.Status = domain.FolioClosed
	closed := time.Now().UTC()
	got.ClosedAt = &closed
	if err := store.UpdateFolio(ctx, got); err != nil {
		t.Fatalf("UpdateFolio() error = %v", err)
	}
}

func TestStaffAndSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seed(t, store, "h1")

	st := &domain.Staff{ID: "s1", HotelID: "h1", Email: " Desk@Example.com", Name: "Desk", PasswordHash: "x",
		Role: domain.RoleFrontDesk, Active: true}
	if err := store.CreateStaff(ctx, st); err != nil {
		t.Fatalf("CreateStaff() error = %v", err)
	}
	dup := *st
	dup.ID = "s2"
	if err := store.CreateStaff(ctx, &dup); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("CreateStaff() duplicate email error = %v, want ErrConflict", err)
	}

	got, err := store.GetStaffByEmail(ctx, "desk@example.com")
	if err != nil {
		t.Fatalf("GetStaffByEmail() error = %v", err)
	}
	if got.Role != domain.RoleFrontDesk || !got.Active {
		t.Errorf("GetStaffByEmail() = %+v", got)
	}

	past := &domain.Session{TokenHash: "old", StaffID: "s1", ExpiresAt: time.Now().Add(-time.Hour)}
	live := &domain.Session{TokenHash: "live", StaffID: "s1", ExpiresAt: time.Now().Add(time.Hour)}
	for _, sess := range []*domain.Session{past, live} {
		if err := store.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
	}
	n, err := store.DeleteExpiredSessions(ctx, time.Now())
	if err != nil || n != 1 {
		t.Errorf("DeleteExpiredSessions() = %d, %v; want 1", n, err)
	}
	if _, err := store.GetSession(ctx, "live"); err != nil {
		t.Errorf("GetSession(live) error = %v", err)
	}
	if err := store.DeleteStaffSessions(ctx, "s1"); err != nil {
		t.Fatalf("DeleteStaffSessions() error = %v", err)
	}
	if _, err := store.GetSession(ctx, "live"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetSession() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDraftTransitions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	d := &domain.AgentDraft{ID: "d1", HotelID: "h1", StaffID: "s1", Kind: domain.DraftKindReservation,
		Payload: []byte(`{"room_id":"r1"}`), Summary: "Room 101", Status: domain.DraftPending,
		ExpiresAt: time.Now().Add(time.Minute)}
	if err := store.CreateDraft(ctx, d); err != nil {
		t.Fatalf("CreateDraft() error = %v", err)
	}

	if err := store.TransitionDraft(ctx, "h1", "d1", domain.DraftPending, domain.DraftConfirmed, "res-1"); err != nil {
		t.Fatalf("TransitionDraft() error = %v", err)
	}
	if err := store.TransitionDraft(ctx, "h1", "d1", domain.DraftPending, domain.DraftConfirmed, "res-2"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("TransitionDraft() replay error = %v, want ErrConflict", err)
	}
	if err := store.TransitionDraft(ctx, "h2", "d1", domain.DraftPending, domain.DraftConfirmed, ""); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("TransitionDraft() other hotel error = %v, want ErrNotFound", err)
	}

	got, err := store.GetDraft(ctx, "h1", "d1")
	if err != nil {
		t.Fatalf("GetDraft() error = %v", err)
	}
	if got.Status != domain.DraftConfirmed || got.ResultID != "res-1" {
		t.Errorf("GetDraft() = %+v", got)
	}
	if string(got.Payload) != `{"room_id":"r1"}` {
		t.Errorf("Payload = %s", got.Payload)
	}

	stale := &domain.AgentDraft{ID: "d2", HotelID: "h1", StaffID: "s1", Kind: domain.DraftKindReservation,
		Payload: []byte(`{}`), Status: domain.DraftPending, ExpiresAt: time.Now().Add(-time.Minute)}
	if err := store.CreateDraft(ctx, stale); err != nil {
		t.Fatalf("CreateDraft() error = %v", err)
	}
	n, err := store.ExpireDrafts(ctx, time.Now())
	if err != nil || n != 1 {
		t.Errorf("ExpireDrafts() = %d, %v; want 1", n, err)
	}
	pending, err := store.ListDrafts(ctx, "h1", "s1", domain.DraftPending)
	if err != nil || len(pending) != 0 {
		t.Errorf("ListDrafts(pending) = %v, %v; want none", pending, err)
	}
}

func TestConversations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conv := &domain.Conversation{ID: "c1", HotelID: "h1", StaffID: "s1", Title: "Walk-in"}
	if err := store.CreateConversation(ctx, conv); err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}

	err := store.AppendMessages(ctx, "h1", "c1",
		domain.ChatMessage{ID: "m1", Role: domain.ChatRoleUser, Content: "Any doubles tonight?"},
		domain.ChatMessage{ID: "m2", Role: domain.ChatRoleAssistant, ToolCalls: []domain.ToolCallRecord{
			{ID: "call_1", Name: "check_availability", Arguments: `{"check_in":"2025-07-01"}`},
		}},
	)
	if err != nil {
		t.Fatalf("AppendMessages() error = %v", err)
	}
	if err := store.AppendMessages(ctx, "h1", "c1",
		domain.ChatMessage{ID: "m3", Role: domain.ChatRoleTool, ToolCallID: "call_1", Content: `{"rooms":[]}`}); err != nil {
		t.Fatalf("AppendMessages() error = %v", err)
	}
	if err := store.AppendMessages(ctx, "h2", "c1",
		domain.ChatMessage{ID: "m4", Role: domain.ChatRoleUser}); err == nil {
		t.Error("AppendMessages() into another hotel's conversation should fail")
	}

	got, err := store.GetConversation(ctx, "h1", "c1")
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if len(got.Messages) != 3 {
		t.Fatalf("Messages count = %d, want 3", len(got.Messages))
	}
	if got.Messages[1].ToolCalls[0].Name != "check_availability" {
		t.Errorf("ToolCalls = %+v", got.Messages[1].ToolCalls)
	}
	if got.Messages[2].ToolCallID != "call_1" {
		t.Errorf("ToolCallID = %q, want call_1", got.Messages[2].ToolCallID)
	}

	list, err := store.ListConversations(ctx, "h1", "s1", 0)
	if err != nil || len(list) != 1 {
		t.Errorf("ListConversations() = %v, %v", list, err)
	}

	if err := store.DeleteConversation(ctx, "h1", "c1"); err != nil {
		t.Fatalf("DeleteConversation() error = %v", err)
	}
	if _, err := store.GetConversation(ctx, "h1", "c1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetConversation() after delete error = %v, want ErrNotFound", err)
	}
}

func TestAudit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	events := []*domain.AuditEvent{
		{ID: "e1", HotelID: "h1", ActorID: "admin", Action: "impersonation.start", CreatedAt: time.Now().Add(-time.Minute)},
		{ID: "e2", HotelID: "h2", ActorID: "admin", Action: "hotel.create"},
	}
	for _, e := range events {
		if err := store.RecordAudit(ctx, e); err != nil {
			t.Fatalf("RecordAudit() error = %v", err)
		}
	}

	all, err := store.ListAudit(ctx, storage.AuditFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("ListAudit() = %v, %v", all, err)
	}
	if all[0].ID != "e2" {
		t.Errorf("ListAudit() newest first = %s, want e2", all[0].ID)
	}
	scoped, err := store.ListAudit(ctx, storage.AuditFilter{HotelID: "h1"})
	if err != nil || len(scoped) != 1 {
		t.Errorf("ListAudit(h1) = %v, %v", scoped, err)
	}
}
