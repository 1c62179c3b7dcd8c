package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

//go:embed templates/invoice.html
var templateFS embed.FS

// Invoice is the data behind the printable folio.
type Invoice struct {
	Hotel       *domain.Hotel
	Reservation *domain.Reservation
	Folio       *domain.Folio
	Totals      domain.FolioTotals
	Nights      int
	Issued      string
}

// NewInvoice assembles invoice data for folio as of now.
func NewInvoice(hotel *domain.Hotel, res *domain.Reservation, folio *domain.Folio, now time.Time) Invoice {
	return Invoice{
		Hotel:       hotel,
		Reservation: res,
		Folio:       folio,
		Totals:      folio.Totals(),
		Nights:      res.Nights(),
		Issued:      now.In(hotel.Location()).Format("2006-01-02"),
	}
}

// RenderInvoice writes the invoice as a standalone HTML page with a print stylesheet.
func RenderInvoice(w io.Writer, inv Invoice) error {
	loc := inv.Hotel.Location()
	tmpl, err := template.New("invoice.html").Funcs(template.FuncMap{
		"money": func(v int64) string { return domain.FormatMoney(v, inv.Hotel.Currency) },
		"localtime": func(t time.Time) string {
			return t.In(loc).Format("2006-01-02 15:04")
		},
	}).ParseFS(templateFS, "templates/invoice.html")
	if err != nil {
		return fmt.Errorf("parse invoice template: %w", err)
	}
	if err := tmpl.Execute(w, inv); err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}
	return nil
}
