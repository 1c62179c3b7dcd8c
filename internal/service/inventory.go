package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/storage"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// MaxOccupancyLimit bounds a room type's capacity.
const MaxOccupancyLimit = 20

type RoomTypeInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	BaseRate     int64    `json:"base_rate"`
	MaxOccupancy int      `json:"max_occupancy"`
	Amenities    []string `json:"amenities"`
}

func (in *RoomTypeInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.ErrInvalidRequest("name is required").WithParam("name")
	}
	if in.BaseRate < 0 {
		return domain.ErrInvalidRequest("base_rate cannot be negative").WithParam("base_rate")
	}
	if in.MaxOccupancy == 0 {
		in.MaxOccupancy = 2
	}
	if in.MaxOccupancy < 1 || in.MaxOccupancy > MaxOccupancyLimit {
		return domain.ErrInvalidRequest("max_occupancy must be between 1 and 20").WithParam("max_occupancy")
	}
	amenities := make([]string, 0, len(in.Amenities))
	for _, a := range in.Amenities {
		if a = strings.TrimSpace(a); a != "" {
			amenities = append(amenities, a)
		}
	}
	in.Amenities = amenities
	return nil
}

func (in RoomTypeInput) apply(rt *domain.RoomType) {
	rt.Name = in.Name
	rt.Description = strings.TrimSpace(in.Description)
	rt.BaseRate = in.BaseRate
	rt.MaxOccupancy = in.MaxOccupancy
	rt.Amenities = domain.StringList(in.Amenities)
}

func (s *Service) CreateRoomType(ctx context.Context, sc tenant.Scope, in RoomTypeInput) (*domain.RoomType, error) {
	if err := authorize(sc, domain.PermInventoryWrite); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	rt := &domain.RoomType{ID: uuid.NewString(), HotelID: sc.HotelID}
	in.apply(rt)
	if err := s.store.CreateRoomType(ctx, rt); err != nil {
		return nil, storeErr(err, "room type "+rt.Name)
	}
	s.audit(ctx, sc, "room_type.create", rt.ID, rt.Name)
	return rt, nil
}

func (s *Service) UpdateRoomType(ctx context.Context, sc tenant.Scope, id string, in RoomTypeInput) (*domain.RoomType, error) {
	if err := authorize(sc, domain.PermInventoryWrite); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	rt, err := s.store.GetRoomType(ctx, sc.HotelID, id)
	if err != nil {
		return nil, storeErr(err, "room type")
	}
	in.apply(rt)
	if err := s.store.UpdateRoomType(ctx, rt); err != nil {
		return nil, storeErr(err, "room type "+rt.Name)
	}
	s.audit(ctx, sc, "room_type.update", rt.ID, rt.Name)
	return rt, nil
}

// DeleteRoomType removes a room type that no room uses.
func (s *Service) DeleteRoomType(ctx context.Context, sc tenant.Scope, id string) error {
	if err := authorize(sc, domain.PermInventoryWrite); err != nil {
		return err
	}
	n, err := s.store.CountRooms(ctx, sc.HotelID, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrConflict("room type is assigned to rooms").WithCode(domain.ErrorCodeInUse)
	}
	if err := s.store.DeleteRoomType(ctx, sc.HotelID, id); err != nil {
		return storeErr(err, "room type")
	}
	s.audit(ctx, sc, "room_type.delete", id, "")
	return nil
}

func (s *Service) GetRoomType(ctx context.Context, sc tenant.Scope, id string) (*domain.RoomType, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	rt, err := s.store.GetRoomType(ctx, sc.HotelID, id)
	return rt, storeErr(err, "room type")
}

func (s *Service) ListRoomTypes(ctx context.Context, sc tenant.Scope) ([]domain.RoomType, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	return s.store.ListRoomTypes(ctx, sc.HotelID)
}

type RoomInput struct {
	RoomTypeID string `json:"room_type_id"`
	Number     string `json:"number"`
	Floor      int    `json:"floor"`
	Notes      string `json:"notes"`
}

func (in *RoomInput) normalize() error {
	in.Number = strings.TrimSpace(in.Number)
	if in.Number == "" {
		return domain.ErrInvalidRequest("number is required").WithParam("number")
	}
	if in.RoomTypeID == "" {
		return domain.ErrInvalidRequest("room_type_id is required").WithParam("room_type_id")
	}
	return nil
}

func (s *Service) CreateRoom(ctx context.Context, sc tenant.Scope, in RoomInput) (*domain.Room, error) {
	if err := authorize(sc, domain.PermInventoryWrite); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetRoomType(ctx, sc.HotelID, in.RoomTypeID); err != nil {
		return nil, storeErr(err, "room type")
	}

	room := &domain.Room{
		ID:           uuid.NewString(),
		HotelID:      sc.HotelID,
		RoomTypeID:   in.RoomTypeID,
		Number:       in.Number,
		Floor:        in.Floor,
		Notes:        strings.TrimSpace(in.Notes),
		Status:       domain.RoomAvailable,
		Housekeeping: domain.HousekeepingClean,
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, storeErr(err, "room "+room.Number)
	}
	s.audit(ctx, sc, "room.create", room.ID, room.Number)
	return s.store.GetRoom(ctx, sc.HotelID, room.ID)
}

func (s *Service) UpdateRoom(ctx context.Context, sc tenant.Scope, id string, in RoomInput) (*domain.Room, error) {
	if err := authorize(sc, domain.PermInventoryWrite); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	room, err := s.store.GetRoom(ctx, sc.HotelID, id)
	if err != nil {
		return nil, storeErr(err, "room")
	}
	if in.RoomTypeID != room.RoomTypeID {
		if _, err := s.store.GetRoomType(ctx, sc.HotelID, in.RoomTypeID); err != nil {
			return nil, storeErr(err, "room type")
		}
	}
	room.RoomTypeID = in.RoomTypeID
	room.Number = in.Number
	room.Floor = in.Floor
	room.Notes = strings.TrimSpace(in.Notes)
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, storeErr(err, "room "+room.Number)
	}
	s.audit(ctx, sc, "room.update", room.ID, room.Number)
	return s.store.GetRoom(ctx, sc.HotelID, room.ID)
}

// SetRoomStatus changes a room's operational status. Occupied is set by check-in
// only, and a room with a guest in house cannot be taken out of service.
func (s *Service) SetRoomStatus(ctx context.Context, sc tenant.Scope, id string, status domain.RoomStatus) (*domain.Room, error) {
	if err := authorize(sc, domain.PermHousekeepingWrite); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidRequest("unknown room status " + string(status)).WithParam("status")
	}
	if status == domain.RoomOccupied {
		return nil, domain.ErrInvalidRequest("rooms become occupied by checking a guest in").WithParam("status")
	}
	room, err := s.store.GetRoom(ctx, sc.HotelID, id)
	if err != nil {
		return nil, storeErr(err, "room")
	}
	if room.Status == domain.RoomOccupied && !status.InService() {
		inHouse, err := s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{
			RoomID:   id,
			Statuses: []domain.ReservationStatus{domain.StatusCheckedIn},
			Limit:    1,
		})
		if err != nil {
			return nil, err
		}
		if len(inHouse) > 0 {
			return nil, domain.ErrConflict("room " + room.Number + " has a guest in house").WithCode(domain.ErrorCodeInUse)
		}
	}

	room.Status = status
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, storeErr(err, "room")
	}
	s.audit(ctx, sc, "room.status", room.ID, string(status))
	return room, nil
}

func (s *Service) SetHousekeeping(ctx context.Context, sc tenant.Scope, id string, state domain.Housekeeping) (*domain.Room, error) {
	if err := authorize(sc, domain.PermHousekeepingWrite); err != nil {
		return nil, err
	}
	if !state.Valid() {
		return nil, domain.ErrInvalidRequest("unknown housekeeping state " + string(state)).WithParam("housekeeping")
	}
	room, err := s.store.GetRoom(ctx, sc.HotelID, id)
	if err != nil {
		return nil, storeErr(err, "room")
	}
	room.Housekeeping = state
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, storeErr(err, "room")
	}
	return room, nil
}

// DeleteRoom removes a room that has never been booked.
func (s *Service) DeleteRoom(ctx context.Context, sc tenant.Scope, id string) error {
	if err := authorize(sc, domain.PermInventoryWrite); err != nil {
		return err
	}
	booked, err := s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{RoomID: id, Limit: 1})
	if err != nil {
		return err
	}
	if len(booked) > 0 {
		return domain.ErrConflict("room has reservations").WithCode(domain.ErrorCodeInUse)
	}
	if err := s.store.DeleteRoom(ctx, sc.HotelID, id); err != nil {
		return storeErr(err, "room")
	}
	s.audit(ctx, sc, "room.delete", id, "")
	return nil
}

func (s *Service) GetRoom(ctx context.Context, sc tenant.Scope, id string) (*domain.Room, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	room, err := s.store.GetRoom(ctx, sc.HotelID, id)
	return room, storeErr(err, "room")
}

func (s *Service) ListRooms(ctx context.Context, sc tenant.Scope) ([]domain.Room, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	return s.store.ListRooms(ctx, sc.HotelID)
}
