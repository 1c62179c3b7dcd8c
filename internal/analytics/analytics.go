// Package analytics derives occupancy and revenue figures from reservations and folios.
package analytics

import (
	"time"

	"github.com/tjfontaine/innkeeper/internal/availability"
	"github.com/tjfontaine/innkeeper/internal/domain"
)

// MaxReportDays bounds the report window.
const MaxReportDays = 366

// Input is everything a report is computed from. Folios carry their items.
type Input struct {
	Rooms        []domain.Room
	Reservations []domain.Reservation
	Folios       []domain.Folio
	Payments     []domain.Payment
	Location     *time.Location
}

// DailyStat is one night of the report.
type DailyStat struct {
	Date       domain.Date `json:"date"`
	RoomsSold  int         `json:"rooms_sold"`
	Occupancy  float64     `json:"occupancy"`
	Revenue    int64       `json:"revenue"`
	Arrivals   int         `json:"arrivals"`
	Departures int         `json:"departures"`
}

// Report covers the nights in [From, To). Amounts are in minor units; rates are percent.
type Report struct {
	From                domain.Date    `json:"from"`
	To                  domain.Date    `json:"to"`
	RoomNightsAvailable int            `json:"room_nights_available"`
	RoomNightsSold      int            `json:"room_nights_sold"`
	OccupancyRate       float64        `json:"occupancy_rate"`
	ADR                 int64          `json:"adr"`
	RevPAR              int64          `json:"revpar"`
	RoomRevenue         int64          `json:"room_revenue"`
	TotalCharges        int64          `json:"total_charges"`
	PaymentsReceived    int64          `json:"payments_received"`
	Reservations        int            `json:"reservations"`
	Cancellations       int            `json:"cancellations"`
	NoShows             int            `json:"no_shows"`
	BySource            map[string]int `json:"by_source"`
	Daily               []DailyStat    `json:"daily"`
}

// sold reports whether a reservation's nights count as sold inventory.
func sold(s domain.ReservationStatus) bool {
	return s == domain.StatusConfirmed || s == domain.StatusCheckedIn || s == domain.StatusCheckedOut
}

// Compute builds the report for the nights in period.
func Compute(in Input, period domain.Stay) (*Report, error) {
	if period.CheckIn.IsZero() || period.CheckOut.IsZero() || !period.CheckOut.After(period.CheckIn) {
		return nil, domain.ErrInvalidRequest("to must be after from").WithParam("to")
	}
	if period.Nights() > MaxReportDays {
		return nil, domain.ErrInvalidRequest("report window is limited to 366 days").WithParam("to")
	}
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	days := period.Days()
	rep := &Report{
		From:     period.CheckIn,
		To:       period.CheckOut,
		BySource: make(map[string]int),
		Daily:    make([]DailyStat, len(days)),
	}
	for i, d := range days {
		rep.Daily[i].Date = d
	}

	inService := 0
	for _, room := range in.Rooms {
		if room.Status.InService() {
			inService++
		}
	}
	rep.RoomNightsAvailable = inService * len(days)

	for _, res := range in.Reservations {
		if period.Includes(res.CheckIn) {
			rep.Reservations++
			rep.BySource[string(res.Source)]++
			switch res.Status {
			case domain.StatusCancelled:
				rep.Cancellations++
			case domain.StatusNoShow:
				rep.NoShows++
			}
		}
		if !sold(res.Status) || !availability.Overlaps(res.Stay(), period) {
			continue
		}
		for i, d := range days {
			if res.CheckIn.Equal(d) {
				rep.Daily[i].Arrivals++
			}
			if res.CheckOut.Equal(d) {
				rep.Daily[i].Departures++
			}
			if res.Stay().Includes(d) {
				rep.Daily[i].RoomsSold++
				rep.Daily[i].Revenue += res.RatePerNight
				rep.RoomNightsSold++
				rep.RoomRevenue += res.RatePerNight
			}
		}
	}

	for i := range rep.Daily {
		if inService > 0 {
			rep.Daily[i].Occupancy = percent(rep.Daily[i].RoomsSold, inService)
		}
	}
	rep.OccupancyRate = percent(rep.RoomNightsSold, rep.RoomNightsAvailable)
	if rep.RoomNightsSold > 0 {
		rep.ADR = rep.RoomRevenue / int64(rep.RoomNightsSold)
	}
	if rep.RoomNightsAvailable > 0 {
		rep.RevPAR = rep.RoomRevenue / int64(rep.RoomNightsAvailable)
	}

	for _, f := range in.Folios {
		if f.Status == domain.FolioVoid {
			continue
		}
		for _, item := range f.Items {
			if period.Includes(item.ServiceDate) {
				rep.TotalCharges += item.Amount
			}
		}
	}
	for _, p := range in.Payments {
		if period.Includes(domain.DateOf(p.ReceivedAt.In(loc))) {
			rep.PaymentsReceived += p.Amount
		}
	}
	return rep, nil
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}

// Dashboard is the front desk's view of a single day.
type Dashboard struct {
	Date         domain.Date `json:"date"`
	Arrivals     int         `json:"arrivals"`
	Departures   int         `json:"departures"`
	InHouse      int         `json:"in_house"`
	Occupied     int         `json:"occupied"`
	TotalRooms   int         `json:"total_rooms"`
	OutOfService int         `json:"out_of_service"`
	DirtyRooms   int         `json:"dirty_rooms"`
	Occupancy    float64     `json:"occupancy"`
	OpenBalance  int64       `json:"open_balance"`
}

// ComputeDashboard summarises today. Arrivals are pending or confirmed reservations
// starting today; departures are in-house guests due out today.
func ComputeDashboard(in Input, today domain.Date) Dashboard {
	d := Dashboard{Date: today, TotalRooms: len(in.Rooms)}

	for _, room := range in.Rooms {
		if !room.Status.InService() {
			d.OutOfService++
		}
		if room.Housekeeping == domain.HousekeepingDirty {
			d.DirtyRooms++
		}
	}

	for _, res := range in.Reservations {
		switch res.Status {
		case domain.StatusPending, domain.StatusConfirmed:
			if res.CheckIn.Equal(today) {
				d.Arrivals++
			}
		case domain.StatusCheckedIn:
			d.InHouse++
			if !res.CheckOut.After(today) {
				d.Departures++
			}
		}
	}

	d.Occupied = len(availability.Occupancy(in.Rooms, in.Reservations, today))
	sellable := d.TotalRooms - d.OutOfService
	d.Occupancy = percent(d.Occupied, sellable)

	for _, f := range in.Folios {
		if f.Status != domain.FolioOpen {
			continue
		}
		if bal := f.Totals().Balance; bal > 0 {
			d.OpenBalance += bal
		}
	}
	return d
}
