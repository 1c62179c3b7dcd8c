// Package availability computes room availability and the reservation timeline from
// plain slices of rooms and reservations. It does no I/O: callers load the rows for the
// hotel and window they care about and pass them in.
package availability

import (
	"sort"
	"strconv"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

// Overlaps reports whether two half-open stays share at least one night.
func Overlaps(a, b domain.Stay) bool {
	return a.CheckIn.Before(b.CheckOut) && a.CheckOut.After(b.CheckIn)
}

// Conflicts returns the blocking reservations on roomID that overlap stay.
// A non-empty excludeID skips that reservation so it can be moved onto itself.
func Conflicts(reservations []domain.Reservation, roomID string, stay domain.Stay, excludeID string) []domain.Reservation {
	var out []domain.Reservation
	for _, res := range reservations {
		if res.RoomID != roomID || res.ID == excludeID || !res.Status.Blocking() {
			continue
		}
		if Overlaps(res.Stay(), stay) {
			out = append(out, res)
		}
	}
	return out
}

// Filter narrows the rooms offered for a stay.
type Filter struct {
	RoomTypeID string `json:"room_type_id,omitempty"`
	Guests     int    `json:"guests,omitempty"`

	// RoomTypes maps room type id to its definition. It is required when Guests is set.
	RoomTypes map[string]domain.RoomType `json:"-"`
}

func (f Filter) matches(room domain.Room) bool {
	if f.RoomTypeID != "" && room.RoomTypeID != f.RoomTypeID {
		return false
	}
	if f.Guests > 0 {
		rt, ok := f.RoomTypes[room.RoomTypeID]
		if !ok || rt.MaxOccupancy < f.Guests {
			return false
		}
	}
	return true
}

// AvailableRooms returns the in-service rooms matching filter that have no blocking
// reservation overlapping stay, ordered by room number.
func AvailableRooms(rooms []domain.Room, reservations []domain.Reservation, stay domain.Stay, filter Filter) []domain.Room {
	busy := make(map[string]bool)
	for _, res := range reservations {
		if res.Status.Blocking() && Overlaps(res.Stay(), stay) {
			busy[res.RoomID] = true
		}
	}

	var out []domain.Room
	for _, room := range rooms {
		if !room.Status.InService() || busy[room.ID] || !filter.matches(room) {
			continue
		}
		out = append(out, room)
	}
	SortRooms(out)
	return out
}

// SortRooms orders rooms by number, numerically when both numbers are integers.
func SortRooms(rooms []domain.Room) {
	sort.SliceStable(rooms, func(i, j int) bool {
		return lessRoomNumber(rooms[i].Number, rooms[j].Number)
	})
}

func lessRoomNumber(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return ai < bi
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

// TypeSummary is the availability of one room type for a stay.
type TypeSummary struct {
	RoomTypeID   string   `json:"room_type_id"`
	Name         string   `json:"name"`
	MaxOccupancy int      `json:"max_occupancy"`
	Available    int      `json:"available"`
	RoomNumbers  []string `json:"room_numbers"`
	NightlyRate  int64    `json:"nightly_rate"`
	Nights       int      `json:"nights"`
	StayTotal    int64    `json:"stay_total"`
}

// SummarizeByType groups available rooms by type and prices the stay at each type's
// base rate. Types with no available room are included with a zero count.
func SummarizeByType(roomTypes []domain.RoomType, available []domain.Room, stay domain.Stay) []TypeSummary {
	nights := stay.Nights()
	byType := make(map[string][]string)
	for _, room := range available {
		byType[room.RoomTypeID] = append(byType[room.RoomTypeID], room.Number)
	}

	out := make([]TypeSummary, 0, len(roomTypes))
	for _, rt := range roomTypes {
		numbers := byType[rt.ID]
		out = append(out, TypeSummary{
			RoomTypeID:   rt.ID,
			Name:         rt.Name,
			MaxOccupancy: rt.MaxOccupancy,
			Available:    len(numbers),
			RoomNumbers:  numbers,
			NightlyRate:  rt.BaseRate,
			Nights:       nights,
			StayTotal:    rt.BaseRate * int64(nights),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NightlyRate != out[j].NightlyRate {
			return out[i].NightlyRate < out[j].NightlyRate
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Occupancy returns the rooms with a stay covering the night of day. Checked-out
// reservations still count so past nights report what was actually sold.
func Occupancy(rooms []domain.Room, reservations []domain.Reservation, day domain.Date) []domain.Room {
	taken := make(map[string]bool)
	for _, res := range reservations {
		if occupies(res.Status) && res.Stay().Includes(day) {
			taken[res.RoomID] = true
		}
	}
	var out []domain.Room
	for _, room := range rooms {
		if taken[room.ID] {
			out = append(out, room)
		}
	}
	return out
}

func occupies(s domain.ReservationStatus) bool {
	return s.Blocking() || s == domain.StatusCheckedOut
}
