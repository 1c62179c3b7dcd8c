package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

// Workbook content types.
const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	HTMLContentType = "text/html; charset=utf-8"
)

// sheet is one worksheet of an export.
type sheet struct {
	name   string
	header []string
	rows   [][]any
	widths map[string]float64
}

func writeWorkbook(w io.Writer, sheets ...sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sh.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return err
		}

		header := make([]any, len(sh.header))
		for j, h := range sh.header {
			header[j] = h
		}
		if err := f.SetSheetRow(sh.name, "A1", &header); err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(sh.header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sh.name, "A1", last, bold); err != nil {
			return err
		}

		for j, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return err
			}
		}
		for col, width := range sh.widths {
			if err := f.SetColWidth(sh.name, col, col, width); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// amount renders minor units as a decimal number for spreadsheet cells.
func amount(v int64) float64 {
	return float64(v) / 100
}

// WriteReservations exports reservations as a single-sheet workbook.
func WriteReservations(w io.Writer, hotel *domain.Hotel, reservations []domain.Reservation) error {
	sh := sheet{
		name: "Reservations",
		header: []string{"Code", "Guest", "Room", "Check-in", "Check-out", "Nights", "Adults", "Children",
			"Status", "Source", "Rate", "Total", "Currency"},
		widths: map[string]float64{"A": 14, "B": 28, "D": 12, "E": 12},
	}
	for _, r := range reservations {
		sh.rows = append(sh.rows, []any{
			r.Code, r.GuestName, r.RoomNumber, r.CheckIn.String(), r.CheckOut.String(), r.Nights(),
			r.Adults, r.Children, string(r.Status), string(r.Source), amount(r.RatePerNight),
			amount(r.TotalAmount), hotel.Currency,
		})
	}
	return writeWorkbook(w, sh)
}

// WriteFolio exports a folio's lines and payments on two sheets.
func WriteFolio(w io.Writer, hotel *domain.Hotel, res *domain.Reservation, folio *domain.Folio) error {
	items := sheet{
		name:   "Charges",
		header: []string{"Date", "Kind", "Description", "Quantity", "Unit", "Amount"},
		widths: map[string]float64{"A": 12, "C": 36},
	}
	for _, it := range folio.Items {
		items.rows = append(items.rows, []any{
			it.ServiceDate.String(), string(it.Kind), it.Description, it.Quantity,
			amount(it.UnitAmount), amount(it.Amount),
		})
	}
	totals := folio.Totals()
	items.rows = append(items.rows,
		[]any{},
		[]any{"", "", "Charges", "", "", amount(totals.Charges)},
		[]any{"", "", "Discounts", "", "", amount(totals.Discounts)},
		[]any{"", "", "Tax", "", "", amount(totals.Tax)},
		[]any{"", "", "Total", "", "", amount(totals.Total)},
		[]any{"", "", "Paid", "", "", amount(totals.Paid)},
		[]any{"", "", "Balance " + hotel.Currency, "", "", amount(totals.Balance)},
	)

	payments := sheet{
		name:   "Payments",
		header: []string{"Received", "Method", "Reference", "Amount"},
		widths: map[string]float64{"A": 20, "C": 24},
	}
	for _, p := range folio.Payments {
		payments.rows = append(payments.rows, []any{
			p.ReceivedAt.In(hotel.Location()).Format("2006-01-02 15:04"), string(p.Method), p.Reference, amount(p.Amount),
		})
	}

	summary := sheet{
		name:   "Folio",
		header: []string{"Field", "Value"},
		rows: [][]any{
			{"Hotel", hotel.Name},
			{"Folio", folio.Number},
			{"Reservation", res.Code},
			{"Guest", res.GuestName},
			{"Room", res.RoomNumber},
			{"Stay", res.CheckIn.String() + " to " + res.CheckOut.String()},
			{"Status", string(folio.Status)},
		},
		widths: map[string]float64{"A": 14, "B": 32},
	}
	return writeWorkbook(w, summary, items, payments)
}
