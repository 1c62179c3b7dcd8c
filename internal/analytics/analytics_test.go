package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

func d(s string) domain.Date { return domain.MustParseDate(s) }

func fixture() Input {
	return Input{
		Rooms: []domain.Room{
			{ID: "r1", Number: "1", Status: domain.RoomAvailable},
			{ID: "r2", Number: "2", Status: domain.RoomOccupied, Housekeeping: domain.HousekeepingDirty},
			{ID: "r3", Number: "3", Status: domain.RoomOutOfOrder},
		},
		Reservations: []domain.Reservation{
			{ID: "a", RoomID: "r1", CheckIn: d("2025-08-01"), CheckOut: d("2025-08-03"), Status: domain.StatusCheckedOut, Source: domain.SourceDirect, RatePerNight: 10000},
			{ID: "b", RoomID: "r2", CheckIn: d("2025-08-02"), CheckOut: d("2025-08-05"), Status: domain.StatusCheckedIn, Source: domain.SourceAgent, RatePerNight: 15000},
			{ID: "c", RoomID: "r1", CheckIn: d("2025-08-03"), CheckOut: d("2025-08-04"), Status: domain.StatusCancelled, Source: domain.SourcePhone, RatePerNight: 10000},
			{ID: "e", RoomID: "r1", CheckIn: d("2025-08-04"), CheckOut: d("2025-08-06"), Status: domain.StatusPending, Source: domain.SourceDirect, RatePerNight: 10000},
		},
		Folios: []domain.Folio{
			{
				Status: domain.FolioOpen,
				Items: []domain.FolioItem{
					{Kind: domain.ItemRoom, Amount: 45000, ServiceDate: d("2025-08-02")},
					{Kind: domain.ItemService, Amount: 1500, ServiceDate: d("2025-08-09")},
				},
				Payments: []domain.Payment{{Amount: 20000}},
			},
			{
				Status: domain.FolioVoid,
				Items:  []domain.FolioItem{{Kind: domain.ItemRoom, Amount: 99999, ServiceDate: d("2025-08-02")}},
			},
		},
		Payments: []domain.Payment{
			{Amount: 20000, ReceivedAt: time.Date(2025, 8, 2, 10, 0, 0, 0, time.UTC)},
			{Amount: 5000, ReceivedAt: time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)},
		},
	}
}

func TestCompute(t *testing.T) {
	period := domain.Stay{CheckIn: d("2025-08-01"), CheckOut: d("2025-08-05")}
	rep, err := Compute(fixture(), period)
	require.NoError(t, err)

	assert.Equal(t, 8, rep.RoomNightsAvailable)
	assert.Equal(t, 5, rep.RoomNightsSold)
	assert.InDelta(t, 62.5, rep.OccupancyRate, 0.001)
	assert.Equal(t, int64(65000), rep.RoomRevenue)
	assert.Equal(t, int64(13000), rep.ADR)
	assert.Equal(t, int64(8125), rep.RevPAR)
	assert.Equal(t, int64(45000), rep.TotalCharges)
	assert.Equal(t, int64(20000), rep.PaymentsReceived)
	assert.Equal(t, 4, rep.Reservations)
	assert.Equal(t, 1, rep.Cancellations)
	assert.Equal(t, 0, rep.NoShows)
	assert.Equal(t, map[string]int{"direct": 2, "agent": 1, "phone": 1}, rep.BySource)

	require.Len(t, rep.Daily, 4)
	assert.Equal(t, 1, rep.Daily[0].RoomsSold)
	assert.Equal(t, 2, rep.Daily[1].RoomsSold)
	assert.Equal(t, int64(25000), rep.Daily[1].Revenue)
	assert.Equal(t, 1, rep.Daily[1].Arrivals)
	assert.Equal(t, 1, rep.Daily[2].Departures)
	assert.InDelta(t, 100.0, rep.Daily[1].Occupancy, 0.001)
}

func TestCompute_InvalidWindow(t *testing.T) {
	_, err := Compute(fixture(), domain.Stay{CheckIn: d("2025-08-05"), CheckOut: d("2025-08-01")})
	assert.Error(t, err)

	_, err = Compute(fixture(), domain.Stay{CheckIn: d("2024-01-01"), CheckOut: d("2025-06-01")})
	assert.Error(t, err)
}

func TestComputeDashboard(t *testing.T) {
	dash := ComputeDashboard(fixture(), d("2025-08-04"))

	assert.Equal(t, 3, dash.TotalRooms)
	assert.Equal(t, 1, dash.OutOfService)
	assert.Equal(t, 1, dash.DirtyRooms)
	assert.Equal(t, 1, dash.Arrivals)
	assert.Equal(t, 1, dash.InHouse)
	assert.Equal(t, 0, dash.Departures)
	assert.Equal(t, 2, dash.Occupied)
	assert.InDelta(t, 100.0, dash.Occupancy, 0.001)
	assert.Equal(t, int64(26500), dash.OpenBalance)

	dash = ComputeDashboard(fixture(), d("2025-08-05"))
	assert.Equal(t, 1, dash.Departures)
}
