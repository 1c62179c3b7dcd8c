package sqldb

import (
	"context"
	"fmt"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

const roomTypeColumns = `id, hotel_id, name, description, base_rate, max_occupancy, amenities, created_at, updated_at`

func (s *Store) CreateRoomType(ctx context.Context, rt *domain.RoomType) error {
	stamp(&rt.CreatedAt, &rt.UpdatedAt)
	_, err := s.exec(ctx, s.db, `INSERT INTO room_types (`+roomTypeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.ID, rt.HotelID, rt.Name, rt.Description, rt.BaseRate, rt.MaxOccupancy, rt.Amenities,
		rt.CreatedAt, rt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create room type: %w", err)
	}
	return nil
}

func (s *Store) UpdateRoomType(ctx context.Context, rt *domain.RoomType) error {
	rt.UpdatedAt = now()
	err := s.execOne(ctx, s.db, `UPDATE room_types SET name = ?, description = ?, base_rate = ?,
		max_occupancy = ?, amenities = ?, updated_at = ? WHERE hotel_id = ? AND id = ?`,
		rt.Name, rt.Description, rt.BaseRate, rt.MaxOccupancy, rt.Amenities, rt.UpdatedAt, rt.HotelID, rt.ID)
	if err != nil {
		return fmt.Errorf("failed to update room type %s: %w", rt.ID, err)
	}
	return nil
}

func (s *Store) GetRoomType(ctx context.Context, hotelID, id string) (*domain.RoomType, error) {
	var rt domain.RoomType
	err := s.get(ctx, s.db, &rt, `SELECT `+roomTypeColumns+` FROM room_types WHERE hotel_id = ? AND id = ?`, hotelID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get room type %s: %w", id, err)
	}
	return &rt, nil
}

func (s *Store) ListRoomTypes(ctx context.Context, hotelID string) ([]domain.RoomType, error) {
	var out []domain.RoomType
	err := s.list(ctx, s.db, &out, `SELECT `+roomTypeColumns+` FROM room_types WHERE hotel_id = ?
		ORDER BY base_rate, name`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list room types: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteRoomType(ctx context.Context, hotelID, id string) error {
	if err := s.execOne(ctx, s.db, `DELETE FROM room_types WHERE hotel_id = ? AND id = ?`, hotelID, id); err != nil {
		return fmt.Errorf("failed to delete room type %s: %w", id, err)
	}
	return nil
}

const roomSelect = `SELECT r.id, r.hotel_id, r.room_type_id, r.number, r.floor, r.status, r.housekeeping,
		r.notes, r.created_at, r.updated_at, t.name AS room_type_name
	FROM rooms r JOIN room_types t ON t.id = r.room_type_id`

func (s *Store) CreateRoom(ctx context.Context, room *domain.Room) error {
	stamp(&room.CreatedAt, &room.UpdatedAt)
	_, err := s.exec(ctx, s.db, `INSERT INTO rooms (id, hotel_id, room_type_id, number, floor, status,
			housekeeping, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.HotelID, room.RoomTypeID, room.Number, room.Floor, room.Status,
		room.Housekeeping, room.Notes, room.CreatedAt, room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (s *Store) UpdateRoom(ctx context.Context, room *domain.Room) error {
	room.UpdatedAt = now()
	err := s.execOne(ctx, s.db, `UPDATE rooms SET room_type_id = ?, number = ?, floor = ?, status = ?,
		housekeeping = ?, notes = ?, updated_at = ? WHERE hotel_id = ? AND id = ?`,
		room.RoomTypeID, room.Number, room.Floor, room.Status, room.Housekeeping, room.Notes,
		room.UpdatedAt, room.HotelID, room.ID)
	if err != nil {
		return fmt.Errorf("failed to update room %s: %w", room.ID, err)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, hotelID, id string) (*domain.Room, error) {
	var room domain.Room
	if err := s.get(ctx, s.db, &room, roomSelect+` WHERE r.hotel_id = ? AND r.id = ?`, hotelID, id); err != nil {
		return nil, fmt.Errorf("failed to get room %s: %w", id, err)
	}
	return &room, nil
}

func (s *Store) ListRooms(ctx context.Context, hotelID string) ([]domain.Room, error) {
	var rooms []domain.Room
	if err := s.list(ctx, s.db, &rooms, roomSelect+` WHERE r.hotel_id = ? ORDER BY r.floor, r.number`, hotelID); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// CountRooms counts a hotel's rooms, optionally restricted to one room type.
func (s *Store) CountRooms(ctx context.Context, hotelID, roomTypeID string) (int, error) {
	query := `SELECT COUNT(*) FROM rooms WHERE hotel_id = ?`
	args := []any{hotelID}
	if roomTypeID != "" {
		query += ` AND room_type_id = ?`
		args = append(args, roomTypeID)
	}
	var n int
	if err := s.get(ctx, s.db, &n, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return n, nil
}

func (s *Store) DeleteRoom(ctx context.Context, hotelID, id string) error {
	if err := s.execOne(ctx, s.db, `DELETE FROM rooms WHERE hotel_id = ? AND id = ?`, hotelID, id); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", id, err)
	}
	return nil
}
