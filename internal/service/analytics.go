package service

import (
	"context"
	"time"

	"github.com/tjfontaine/innkeeper/internal/analytics"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// midnight returns the start of day d in loc.
func midnight(d domain.Date, loc *time.Location) time.Time {
	t := d.Time()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Report computes occupancy and revenue for the nights in [from, to). A zero range
// means the last 30 nights.
func (s *Service) Report(ctx context.Context, sc tenant.Scope, from, to domain.Date) (*analytics.Report, error) {
	if err := authorize(sc, domain.PermAnalyticsRead); err != nil {
		return nil, err
	}
	hotel, err := s.hotel(ctx, sc)
	if err != nil {
		return nil, err
	}
	if from.IsZero() && to.IsZero() {
		to = s.today(hotel)
		from = to.AddDays(-30)
	}
	period := domain.Stay{CheckIn: from, CheckOut: to}
	if period.CheckIn.IsZero() || period.CheckOut.IsZero() || !period.CheckOut.After(period.CheckIn) {
		return nil, domain.ErrInvalidRequest("to must be after from").WithParam("to")
	}
	if period.Nights() > analytics.MaxReportDays {
		return nil, domain.ErrInvalidRequest("report window is limited to 366 days").WithParam("to")
	}

	loc := hotel.Location()
	in := analytics.Input{Location: loc}
	if in.Rooms, err = s.store.ListRooms(ctx, sc.HotelID); err != nil {
		return nil, err
	}
	if in.Reservations, err = s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{From: from, To: to}); err != nil {
		return nil, err
	}
	if in.Folios, err = s.store.ListFolios(ctx, sc.HotelID, storage.FolioFilter{ServiceFrom: from, ServiceTo: to}); err != nil {
		return nil, err
	}
	if in.Payments, err = s.store.ListPayments(ctx, sc.HotelID, midnight(from, loc), midnight(to, loc)); err != nil {
		return nil, err
	}
	return analytics.Compute(in, period)
}

// Dashboard summarises today at the scope's hotel.
func (s *Service) Dashboard(ctx context.Context, sc tenant.Scope) (*analytics.Dashboard, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	hotel, err := s.hotel(ctx, sc)
	if err != nil {
		return nil, err
	}
	today := s.today(hotel)

	in := analytics.Input{Location: hotel.Location()}
	if in.Rooms, err = s.store.ListRooms(ctx, sc.HotelID); err != nil {
		return nil, err
	}
	current, err := s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{From: today, To: today.AddDays(1)})
	if err != nil {
		return nil, err
	}
	inHouse, err := s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{
		Statuses: []domain.ReservationStatus{domain.StatusCheckedIn},
	})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(current))
	for _, r := range current {
		seen[r.ID] = true
		in.Reservations = append(in.Reservations, r)
	}
	for _, r := range inHouse {
		if !seen[r.ID] {
			in.Reservations = append(in.Reservations, r)
		}
	}
	if in.Folios, err = s.store.ListFolios(ctx, sc.HotelID, storage.FolioFilter{Status: domain.FolioOpen}); err != nil {
		return nil, err
	}

	d := analytics.ComputeDashboard(in, today)
	return &d, nil
}
