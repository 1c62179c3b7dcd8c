package availability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

func TestClampDays(t *testing.T) {
	assert.Equal(t, DefaultTimelineDays, ClampDays(0))
	assert.Equal(t, 1, ClampDays(-3))
	assert.Equal(t, 1, ClampDays(1))
	assert.Equal(t, 30, ClampDays(30))
	assert.Equal(t, MaxTimelineDays, ClampDays(365))
}

func timelineFixture() ([]domain.Room, []domain.Reservation, []domain.Guest) {
	rooms := []domain.Room{
		{ID: "r102", Number: "102", Status: domain.RoomAvailable},
		{ID: "r101", Number: "101", Status: domain.RoomAvailable},
	}
	reservations := []domain.Reservation{
		{
			ID: "res1", Code: "RSV-ABC123", RoomID: "r101", GuestID: "g1",
			CheckIn: domain.MustParseDate("2025-03-02"), CheckOut: domain.MustParseDate("2025-03-04"),
			Status: domain.StatusConfirmed,
		},
		{
			ID: "res2", Code: "RSV-XYZ987", RoomID: "r102", GuestName: "Ada Lovelace",
			CheckIn: domain.MustParseDate("2025-02-27"), CheckOut: domain.MustParseDate("2025-03-03"),
			Status: domain.StatusCheckedIn,
		},
		{
			ID: "res3", Code: "RSV-LONG01", RoomID: "r101",
			CheckIn: domain.MustParseDate("2025-03-05"), CheckOut: domain.MustParseDate("2025-03-20"),
			Status: domain.StatusPending,
		},
		{
			ID: "res4", Code: "RSV-GONE00", RoomID: "r101",
			CheckIn: domain.MustParseDate("2025-03-01"), CheckOut: domain.MustParseDate("2025-03-02"),
			Status: domain.StatusCancelled,
		},
	}
	guests := []domain.Guest{{ID: "g1", FirstName: "Grace", LastName: "Hopper"}}
	return rooms, reservations, guests
}

func TestBuildTimeline(t *testing.T) {
	rooms, reservations, guests := timelineFixture()
	tl := BuildTimeline(rooms, reservations, guests, domain.MustParseDate("2025-03-01"), 5)

	require.Len(t, tl.Days, 5)
	assert.Equal(t, "2025-03-06", tl.To.String())
	require.Len(t, tl.Rows, 2)
	assert.Equal(t, "101", tl.Rows[0].RoomNumber)
	assert.Equal(t, "102", tl.Rows[1].RoomNumber)

	row101 := tl.Rows[0].Bars
	require.Len(t, row101, 2)
	assert.Equal(t, Bar{
		ReservationID: "res1", Code: "RSV-ABC123", GuestName: "Grace Hopper",
		Status: domain.StatusConfirmed, Badge: "blue", StartCol: 1, Span: 2,
	}, row101[0])
	assert.Equal(t, 4, row101[1].StartCol)
	assert.Equal(t, 1, row101[1].Span)
	assert.True(t, row101[1].ClipEnd)
	assert.False(t, row101[1].ClipStart)

	row102 := tl.Rows[1].Bars
	require.Len(t, row102, 1)
	assert.Equal(t, "Ada Lovelace", row102[0].GuestName)
	assert.Equal(t, 0, row102[0].StartCol)
	assert.Equal(t, 2, row102[0].Span)
	assert.True(t, row102[0].ClipStart)

	assert.Equal(t, []int{1, 2, 1, 0, 1}, tl.Occupied)
	assert.InDelta(t, 100.0, tl.OccupancyRate(1), 0.001)
	assert.InDelta(t, 0.0, tl.OccupancyRate(3), 0.001)
	assert.InDelta(t, 0.0, tl.OccupancyRate(9), 0.001)
}

func TestRenderTimeline(t *testing.T) {
	rooms, reservations, guests := timelineFixture()
	tl := BuildTimeline(rooms, reservations, guests, domain.MustParseDate("2025-03-01"), 5)

	var buf bytes.Buffer
	require.NoError(t, RenderTimeline(&buf, tl))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Room  01 02 03 04 05 ", lines[0])
	assert.Equal(t, "      Sa Su Mo Tu We ", lines[1])
	assert.Equal(t, "101    . [ABC1] . [L>", lines[2])
	assert.Equal(t, "102   <XYZ9] .  .  .", lines[3])
	assert.Equal(t, "Occ    1  2  1  0  1 ", lines[4])
	assert.Equal(t, "Occupancy avg 50%, peak 100%", lines[5])
}

func TestRenderTimelineTruncatesRoomByRune(t *testing.T) {
	rooms := []domain.Room{{ID: "r1", Number: "Süd-Flügel", Status: domain.RoomAvailable}}
	tl := BuildTimeline(rooms, nil, nil, domain.MustParseDate("2025-03-01"), 2)

	var buf bytes.Buffer
	require.NoError(t, RenderTimeline(&buf, tl))

	lines := strings.Split(buf.String(), "\n")
	require.True(t, utf8.ValidString(lines[2]))
	assert.Equal(t, "Süd-F  .  .", lines[2])
	assert.Equal(t, "ab    ", pad("ab", roomColWidth))
	assert.Equal(t, "Zimmé ", pad("Zimmér", roomColWidth))
}
