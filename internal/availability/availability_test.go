package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

func stay(in, out string) domain.Stay {
	return domain.Stay{CheckIn: domain.MustParseDate(in), CheckOut: domain.MustParseDate(out)}
}

func reservation(id, roomID, in, out string, status domain.ReservationStatus) domain.Reservation {
	s := stay(in, out)
	return domain.Reservation{
		ID:       id,
		Code:     "RSV-" + id,
		RoomID:   roomID,
		CheckIn:  s.CheckIn,
		CheckOut: s.CheckOut,
		Status:   status,
	}
}

func TestOverlaps(t *testing.T) {
	base := stay("2025-04-10", "2025-04-13")
	tests := []struct {
		name  string
		other domain.Stay
		want  bool
	}{
		{"identical", stay("2025-04-10", "2025-04-13"), true},
		{"inside", stay("2025-04-11", "2025-04-12"), true},
		{"covers", stay("2025-04-01", "2025-04-30"), true},
		{"starts on last night", stay("2025-04-12", "2025-04-15"), true},
		{"back to back after", stay("2025-04-13", "2025-04-15"), false},
		{"back to back before", stay("2025-04-08", "2025-04-10"), false},
		{"disjoint", stay("2025-05-01", "2025-05-03"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(base, tt.other))
			assert.Equal(t, tt.want, Overlaps(tt.other, base))
		})
	}
}

func TestConflicts(t *testing.T) {
	reservations := []domain.Reservation{
		reservation("a", "r1", "2025-04-10", "2025-04-12", domain.StatusConfirmed),
		reservation("b", "r1", "2025-04-12", "2025-04-14", domain.StatusCancelled),
		reservation("c", "r1", "2025-04-13", "2025-04-15", domain.StatusPending),
		reservation("d", "r2", "2025-04-10", "2025-04-15", domain.StatusCheckedIn),
	}

	got := Conflicts(reservations, "r1", stay("2025-04-11", "2025-04-14"), "")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	got = Conflicts(reservations, "r1", stay("2025-04-11", "2025-04-14"), "a")
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	assert.Empty(t, Conflicts(reservations, "r1", stay("2025-04-12", "2025-04-13"), ""))
}

func TestAvailableRooms(t *testing.T) {
	roomTypes := map[string]domain.RoomType{
		"single": {ID: "single", Name: "Single", MaxOccupancy: 1, BaseRate: 8000},
		"double": {ID: "double", Name: "Double", MaxOccupancy: 2, BaseRate: 12000},
	}
	rooms := []domain.Room{
		{ID: "r10", Number: "10", RoomTypeID: "double", Status: domain.RoomAvailable},
		{ID: "r2", Number: "2", RoomTypeID: "single", Status: domain.RoomAvailable},
		{ID: "r3", Number: "3", RoomTypeID: "double", Status: domain.RoomMaintenance},
		{ID: "r4", Number: "4", RoomTypeID: "double", Status: domain.RoomOccupied},
		{ID: "r5", Number: "5", RoomTypeID: "double", Status: domain.RoomAvailable},
	}
	reservations := []domain.Reservation{
		reservation("x", "r5", "2025-06-01", "2025-06-05", domain.StatusConfirmed),
		reservation("y", "r4", "2025-06-01", "2025-06-02", domain.StatusCheckedOut),
	}
	s := stay("2025-06-02", "2025-06-04")

	numbers := func(rooms []domain.Room) []string {
		var out []string
		for _, r := range rooms {
			out = append(out, r.Number)
		}
		return out
	}

	assert.Equal(t, []string{"2", "4", "10"}, numbers(AvailableRooms(rooms, reservations, s, Filter{})))
	assert.Equal(t, []string{"4", "10"}, numbers(AvailableRooms(rooms, reservations, s, Filter{RoomTypeID: "double"})))
	assert.Equal(t, []string{"4", "10"}, numbers(AvailableRooms(rooms, reservations, s, Filter{Guests: 2, RoomTypes: roomTypes})))
	assert.Empty(t, AvailableRooms(rooms, reservations, s, Filter{Guests: 3, RoomTypes: roomTypes}))
}

func TestSummarizeByType(t *testing.T) {
	roomTypes := []domain.RoomType{
		{ID: "suite", Name: "Suite", BaseRate: 30000, MaxOccupancy: 4},
		{ID: "double", Name: "Double", BaseRate: 12000, MaxOccupancy: 2},
	}
	available := []domain.Room{
		{ID: "r1", Number: "101", RoomTypeID: "double"},
		{ID: "r2", Number: "102", RoomTypeID: "double"},
	}

	got := SummarizeByType(roomTypes, available, stay("2025-06-01", "2025-06-04"))
	require.Len(t, got, 2)
	assert.Equal(t, "Double", got[0].Name)
	assert.Equal(t, 2, got[0].Available)
	assert.Equal(t, []string{"101", "102"}, got[0].RoomNumbers)
	assert.Equal(t, int64(36000), got[0].StayTotal)
	assert.Equal(t, "Suite", got[1].Name)
	assert.Equal(t, 0, got[1].Available)
	assert.Equal(t, 3, got[1].Nights)
}

func TestOccupancy(t *testing.T) {
	rooms := []domain.Room{{ID: "r1", Number: "1"}, {ID: "r2", Number: "2"}, {ID: "r3", Number: "3"}}
	reservations := []domain.Reservation{
		reservation("a", "r1", "2025-06-01", "2025-06-03", domain.StatusCheckedOut),
		reservation("b", "r2", "2025-06-02", "2025-06-03", domain.StatusCheckedIn),
		reservation("c", "r3", "2025-06-02", "2025-06-03", domain.StatusCancelled),
	}

	assert.Len(t, Occupancy(rooms, reservations, domain.MustParseDate("2025-06-02")), 2)
	assert.Len(t, Occupancy(rooms, reservations, domain.MustParseDate("2025-06-01")), 1)
	assert.Empty(t, Occupancy(rooms, reservations, domain.MustParseDate("2025-06-03")))
}

func TestSortRooms(t *testing.T) {
	rooms := []domain.Room{{Number: "B2"}, {Number: "12"}, {Number: "A1"}, {Number: "3"}}
	SortRooms(rooms)
	var got []string
	for _, r := range rooms {
		got = append(got, r.Number)
	}
	assert.Equal(t, []string{"3", "12", "A1", "B2"}, got)
}
