package availability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

const (
	DefaultTimelineDays = 14
	MaxTimelineDays     = 62
)

// Timeline is the room-by-day grid shown on the front desk board.
type Timeline struct {
	From     domain.Date   `json:"from"`
	To       domain.Date   `json:"to"`
	Days     []domain.Date `json:"days"`
	Rows     []TimelineRow `json:"rows"`
	Occupied []int         `json:"occupied"`
	Rooms    int           `json:"rooms"`
}

// TimelineRow holds the bars drawn on one room's line.
type TimelineRow struct {
	RoomID     string `json:"room_id"`
	RoomNumber string `json:"room_number"`
	RoomType   string `json:"room_type,omitempty"`
	Status     string `json:"status"`
	Bars       []Bar  `json:"bars"`
}

// Bar is one reservation clipped to the visible window. StartCol is the zero-based day
// column and Span the number of visible nights. ClipStart and ClipEnd mark bars that
// continue past the window edges.
type Bar struct {
	ReservationID string                   `json:"reservation_id"`
	Code          string                   `json:"code"`
	GuestName     string                   `json:"guest_name"`
	Status        domain.ReservationStatus `json:"status"`
	Badge         string                   `json:"badge"`
	StartCol      int                      `json:"start_col"`
	Span          int                      `json:"span"`
	ClipStart     bool                     `json:"clip_start"`
	ClipEnd       bool                     `json:"clip_end"`
}

// ClampDays bounds a requested window length to 1..MaxTimelineDays. Zero means the
// caller left it unset and selects DefaultTimelineDays.
func ClampDays(days int) int {
	switch {
	case days == 0:
		return DefaultTimelineDays
	case days < 1:
		return 1
	case days > MaxTimelineDays:
		return MaxTimelineDays
	default:
		return days
	}
}

// BuildTimeline lays reservations out on a grid starting at from. Guests fill in names
// for reservations loaded without the joined guest name. Cancelled and no-show
// reservations are not drawn.
func BuildTimeline(rooms []domain.Room, reservations []domain.Reservation, guests []domain.Guest, from domain.Date, days int) Timeline {
	days = ClampDays(days)
	window := domain.Stay{CheckIn: from, CheckOut: from.AddDays(days)}

	names := make(map[string]string, len(guests))
	for _, g := range guests {
		names[g.ID] = g.FullName()
	}

	sorted := append([]domain.Room(nil), rooms...)
	SortRooms(sorted)

	tl := Timeline{
		From:     from,
		To:       window.CheckOut,
		Days:     window.Days(),
		Occupied: make([]int, days),
		Rooms:    len(sorted),
	}

	rowIndex := make(map[string]int, len(sorted))
	for i, room := range sorted {
		rowIndex[room.ID] = i
		tl.Rows = append(tl.Rows, TimelineRow{
			RoomID:     room.ID,
			RoomNumber: room.Number,
			RoomType:   room.RoomTypeName,
			Status:     string(room.Status),
		})
	}

	counted := make(map[[2]int]bool)
	for _, res := range reservations {
		if !occupies(res.Status) {
			continue
		}
		idx, ok := rowIndex[res.RoomID]
		if !ok || !Overlaps(res.Stay(), window) {
			continue
		}

		start := domain.DaysBetween(from, res.CheckIn)
		end := domain.DaysBetween(from, res.CheckOut)
		bar := Bar{
			ReservationID: res.ID,
			Code:          res.Code,
			GuestName:     res.GuestName,
			Status:        res.Status,
			Badge:         res.Status.Badge(),
			ClipStart:     start < 0,
			ClipEnd:       end > days,
		}
		if bar.GuestName == "" {
			bar.GuestName = names[res.GuestID]
		}
		start = max(start, 0)
		end = min(end, days)
		bar.StartCol = start
		bar.Span = end - start

		tl.Rows[idx].Bars = append(tl.Rows[idx].Bars, bar)
		for col := start; col < end; col++ {
			key := [2]int{idx, col}
			if !counted[key] {
				counted[key] = true
				tl.Occupied[col]++
			}
		}
	}

	for i := range tl.Rows {
		bars := tl.Rows[i].Bars
		sort.SliceStable(bars, func(a, b int) bool { return bars[a].StartCol < bars[b].StartCol })
	}
	return tl
}

// OccupancyRate returns the share of rooms occupied on column col, in percent.
func (t Timeline) OccupancyRate(col int) float64 {
	if t.Rooms == 0 || col < 0 || col >= len(t.Occupied) {
		return 0
	}
	return float64(t.Occupied[col]) * 100 / float64(t.Rooms)
}

const (
	roomColWidth = 6
	dayColWidth  = 3
)

// RenderTimeline writes a fixed-width text version of the grid. Each day is three
// characters wide; a bar prints its confirmation code suffix and fills the rest with
// '='. Bars continuing outside the window are marked with '<' and '>'. The chart ends
// with per-day occupied counts and the window's average and peak occupancy.
func RenderTimeline(w io.Writer, tl Timeline) error {
	var b strings.Builder

	b.WriteString(pad("Room", roomColWidth))
	for _, d := range tl.Days {
		b.WriteString(fmt.Sprintf("%02d ", d.Time().Day()))
	}
	b.WriteString("\n")
	b.WriteString(pad("", roomColWidth))
	for _, d := range tl.Days {
		b.WriteString(d.Weekday().String()[:2] + " ")
	}
	b.WriteString("\n")

	width := len(tl.Days) * dayColWidth
	for _, row := range tl.Rows {
		line := []rune(strings.Repeat(" . ", len(tl.Days)))
		for _, bar := range row.Bars {
			drawBar(line, bar)
		}
		b.WriteString(pad(row.RoomNumber, roomColWidth))
		b.WriteString(strings.TrimRight(string(line[:width]), " "))
		b.WriteString("\n")
	}

	b.WriteString(pad("Occ", roomColWidth))
	for _, n := range tl.Occupied {
		b.WriteString(fmt.Sprintf("%2d ", n))
	}
	b.WriteString("\n")

	if len(tl.Occupied) > 0 {
		var sum, peak float64
		for col := range tl.Occupied {
			rate := tl.OccupancyRate(col)
			sum += rate
			peak = max(peak, rate)
		}
		fmt.Fprintf(&b, "Occupancy avg %.0f%%, peak %.0f%%\n", sum/float64(len(tl.Occupied)), peak)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func drawBar(line []rune, bar Bar) {
	from := bar.StartCol * dayColWidth
	to := (bar.StartCol + bar.Span) * dayColWidth
	if to > len(line) {
		to = len(line)
	}
	for i := from; i < to; i++ {
		line[i] = '='
	}

	label := bar.Code
	if i := strings.LastIndex(label, "-"); i >= 0 {
		label = label[i+1:]
	}
	inner := to - from - 2
	if inner > 0 && label != "" {
		if utf8.RuneCountInString(label) > inner {
			label = string([]rune(label)[:inner])
		}
		copy(line[from+1:], []rune(label))
	}

	if to > from {
		line[from] = '['
		line[to-1] = ']'
		if bar.ClipStart {
			line[from] = '<'
		}
		if bar.ClipEnd {
			line[to-1] = '>'
		}
	}
}

// pad fits s into width columns, truncating by rune and always leaving a trailing
// space.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return string([]rune(s)[:width-1]) + " "
	}
	return s + strings.Repeat(" ", width-n)
}
