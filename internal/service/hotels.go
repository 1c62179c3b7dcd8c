package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// HotelInput is the editable part of a hotel.
type HotelInput struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Currency     string `json:"currency"`
	Timezone     string `json:"timezone"`
	TaxRateBP    int    `json:"tax_rate_bp"`
	CheckInTime  string `json:"check_in_time"`
	CheckOutTime string `json:"check_out_time"`
}

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9]+`)
	currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Slugify lowercases s and joins its words with dashes.
func Slugify(s string) string {
	return strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (in *HotelInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.ErrInvalidRequest("name is required").WithParam("name")
	}
	in.Slug = Slugify(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Name)
	}
	if in.Slug == "" {
		return domain.ErrInvalidRequest("slug must contain letters or digits").WithParam("slug")
	}

	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if !currencyCode.MatchString(in.Currency) {
		return domain.ErrInvalidRequest("currency must be a three-letter ISO code").WithParam("currency")
	}

	in.Timezone = strings.TrimSpace(in.Timezone)
	if in.Timezone == "" {
		in.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return domain.ErrInvalidRequest("unknown timezone " + in.Timezone).WithParam("timezone")
	}

	if in.TaxRateBP < 0 || in.TaxRateBP > 10000 {
		return domain.ErrInvalidRequest("tax_rate_bp must be between 0 and 10000").WithParam("tax_rate_bp")
	}

	var err error
	if in.CheckInTime, err = clockTime(in.CheckInTime, "15:00", "check_in_time"); err != nil {
		return err
	}
	if in.CheckOutTime, err = clockTime(in.CheckOutTime, "11:00", "check_out_time"); err != nil {
		return err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	return nil
}

func clockTime(v, def, param string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		return "", domain.ErrInvalidRequest(param + " must be HH:MM").WithParam(param)
	}
	return t.Format("15:04"), nil
}

func (in HotelInput) apply(h *domain.Hotel) {
	h.Name = in.Name
	h.Slug = in.Slug
	h.Address = strings.TrimSpace(in.Address)
	h.Phone = strings.TrimSpace(in.Phone)
	h.Email = in.Email
	h.Currency = in.Currency
	h.Timezone = in.Timezone
	h.TaxRateBP = in.TaxRateBP
	h.CheckInTime = in.CheckInTime
	h.CheckOutTime = in.CheckOutTime
}

// CreateHotel registers a new property. Super admins only.
func (s *Service) CreateHotel(ctx context.Context, sc tenant.Scope, in HotelInput) (*domain.Hotel, error) {
	if err := sc.Require(domain.PermHotelsManage); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	h := &domain.Hotel{ID: uuid.NewString(), Active: true}
	in.apply(h)
	if err := s.store.CreateHotel(ctx, h); err != nil {
		return nil, storeErr(err, "hotel with slug "+h.Slug)
	}
	s.audit(ctx, tenant.Scope{StaffID: sc.StaffID, HotelID: h.ID}, "hotel.create", h.ID, h.Name)
	return h, nil
}

// canManageHotel allows super admins everywhere and hotel admins on their own hotel.
func canManageHotel(sc tenant.Scope, hotelID string) error {
	if sc.Can(domain.PermHotelsManage) {
		return nil
	}
	if sc.HotelID == hotelID && sc.Can(domain.PermStaffManage) {
		return nil
	}
	return domain.ErrPermission("you cannot manage this hotel")
}

// UpdateHotel replaces a hotel's settings.
func (s *Service) UpdateHotel(ctx context.Context, sc tenant.Scope, id string, in HotelInput) (*domain.Hotel, error) {
	if err := canManageHotel(sc, id); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	h, err := s.store.GetHotel(ctx, id)
	if err != nil {
		return nil, storeErr(err, "hotel")
	}
	in.apply(h)
	if err := s.store.UpdateHotel(ctx, h); err != nil {
		return nil, storeErr(err, "hotel with slug "+h.Slug)
	}
	s.audit(ctx, tenant.Scope{StaffID: sc.StaffID, HotelID: h.ID}, "hotel.update", h.ID, "")
	return h, nil
}

// GetHotel returns a hotel the scope may see.
func (s *Service) GetHotel(ctx context.Context, sc tenant.Scope, id string) (*domain.Hotel, error) {
	if !sc.SuperAdmin() && sc.HotelID != id {
		return nil, domain.ErrNotFound("hotel not found")
	}
	h, err := s.store.GetHotel(ctx, id)
	if err != nil {
		return nil, storeErr(err, "hotel")
	}
	return h, nil
}

// ListHotels returns every hotel with room and staff counts. Super admins only.
func (s *Service) ListHotels(ctx context.Context, sc tenant.Scope) ([]domain.HotelSummary, error) {
	if err := sc.Require(domain.PermHotelsManage); err != nil {
		return nil, err
	}
	hotels, err := s.store.ListHotels(ctx)
	if err != nil {
		return nil, err
	}
	return hotels, nil
}

// SetHotelActive activates or deactivates a hotel. Staff of an inactive hotel cannot sign in.
func (s *Service) SetHotelActive(ctx context.Context, sc tenant.Scope, id string, active bool) (*domain.Hotel, error) {
	if err := sc.Require(domain.PermHotelsManage); err != nil {
		return nil, err
	}
	h, err := s.store.GetHotel(ctx, id)
	if err != nil {
		return nil, storeErr(err, "hotel")
	}
	h.Active = active
	if err := s.store.UpdateHotel(ctx, h); err != nil {
		return nil, storeErr(err, "hotel")
	}

	action := "hotel.activate"
	if !active {
		action = "hotel.deactivate"
		staff, err := s.store.ListStaff(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, st := range staff {
			if err := s.store.DeleteStaffSessions(ctx, st.ID); err != nil {
				return nil, err
			}
		}
	}
	s.audit(ctx, tenant.Scope{StaffID: sc.StaffID, HotelID: h.ID}, action, h.ID, "")
	return h, nil
}

// DeactivateHotel is SetHotelActive(false).
func (s *Service) DeactivateHotel(ctx context.Context, sc tenant.Scope, id string) (*domain.Hotel, error) {
	return s.SetHotelActive(ctx, sc, id, false)
}
