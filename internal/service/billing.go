package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/tjfontaine/innkeeper/internal/archive"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/report"
	"github.com/tjfontaine/innkeeper/internal/storage"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// FolioView is a folio with its derived totals.
type FolioView struct {
	*domain.Folio
	Totals domain.FolioTotals `json:"totals"`
}

func view(f *domain.Folio) *FolioView {
	return &FolioView{Folio: f, Totals: f.Totals()}
}

func (s *Service) GetFolio(ctx context.Context, sc tenant.Scope, id string) (*FolioView, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	f, err := s.store.GetFolio(ctx, sc.HotelID, id)
	if err != nil {
		return nil, storeErr(err, "folio")
	}
	return view(f), nil
}

// GetReservationFolio returns the folio opened for a reservation.
func (s *Service) GetReservationFolio(ctx context.Context, sc tenant.Scope, reservationID string) (*FolioView, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	f, err := s.store.GetFolioByReservation(ctx, sc.HotelID, reservationID)
	if err != nil {
		return nil, storeErr(err, "folio")
	}
	return view(f), nil
}

// openFolio loads a folio that still accepts postings.
func (s *Service) openFolio(ctx context.Context, sc tenant.Scope, id string) (*domain.Folio, error) {
	if err := authorize(sc, domain.PermBillingWrite); err != nil {
		return nil, err
	}
	f, err := s.store.GetFolio(ctx, sc.HotelID, id)
	if err != nil {
		return nil, storeErr(err, "folio")
	}
	if f.Status != domain.FolioOpen {
		return nil, domain.ErrConflict("folio " + f.Number + " is " + string(f.Status)).WithCode(domain.ErrorCodeFolioClosed)
	}
	return f, nil
}

// ChargeInput posts a line to a folio. Discounts are stored as negative amounts
// whatever sign UnitAmount carries.
type ChargeInput struct {
	Kind        domain.ItemKind `json:"kind"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitAmount  int64           `json:"unit_amount"`
	ServiceDate domain.Date     `json:"service_date"`
}

func (s *Service) AddCharge(ctx context.Context, sc tenant.Scope, folioID string, in ChargeInput) (*FolioView, error) {
	f, err := s.openFolio(ctx, sc, folioID)
	if err != nil {
		return nil, err
	}

	if in.Kind == "" {
		in.Kind = domain.ItemService
	}
	if !in.Kind.Valid() || in.Kind == domain.ItemTax {
		return nil, domain.ErrInvalidRequest("kind must be room, service or discount").WithParam("kind")
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return nil, domain.ErrInvalidRequest("description is required").WithParam("description")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, domain.ErrInvalidRequest("quantity must be positive").WithParam("quantity")
	}
	if in.UnitAmount == 0 {
		return nil, domain.ErrInvalidRequest("unit_amount is required").WithParam("unit_amount")
	}
	unit := in.UnitAmount
	switch {
	case in.Kind == domain.ItemDiscount && unit > 0:
		unit = -unit
	case in.Kind != domain.ItemDiscount && unit < 0:
		return nil, domain.ErrInvalidRequest("charges must be positive; post a discount instead").WithParam("unit_amount")
	}
	if in.ServiceDate.IsZero() {
		hotel, err := s.hotel(ctx, sc)
		if err != nil {
			return nil, err
		}
		in.ServiceDate = s.today(hotel)
	}

	item := &domain.FolioItem{
		ID:          uuid.NewString(),
		FolioID:     f.ID,
		Kind:        in.Kind,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitAmount:  unit,
		Amount:      unit * int64(in.Quantity),
		ServiceDate: in.ServiceDate,
		PostedBy:    sc.StaffID,
	}
	if err := s.store.AddFolioItem(ctx, sc.HotelID, item); err != nil {
		return nil, storeErr(err, "folio item")
	}
	s.audit(ctx, sc, "folio.charge", f.ID, item.Description)
	return s.GetFolio(ctx, sc, f.ID)
}

// RemoveItem deletes a line from an open folio.
func (s *Service) RemoveItem(ctx context.Context, sc tenant.Scope, folioID, itemID string) (*FolioView, error) {
	f, err := s.openFolio(ctx, sc, folioID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteFolioItem(ctx, sc.HotelID, f.ID, itemID); err != nil {
		return nil, storeErr(err, "folio item")
	}
	s.audit(ctx, sc, "folio.remove_item", f.ID, itemID)
	return s.GetFolio(ctx, sc, f.ID)
}

// PaymentInput records money received. A negative amount records a refund.
type PaymentInput struct {
	Method    domain.PaymentMethod `json:"method"`
	Amount    int64                `json:"amount"`
	Reference string               `json:"reference"`
}

func (s *Service) AddPayment(ctx context.Context, sc tenant.Scope, folioID string, in PaymentInput) (*FolioView, error) {
	f, err := s.openFolio(ctx, sc, folioID)
	if err != nil {
		return nil, err
	}
	if !in.Method.Valid() {
		return nil, domain.ErrInvalidRequest("method must be cash, card, transfer or voucher").WithParam("method")
	}
	if in.Amount == 0 {
		return nil, domain.ErrInvalidRequest("amount is required").WithParam("amount")
	}
	p := &domain.Payment{
		ID:         uuid.NewString(),
		FolioID:    f.ID,
		Method:     in.Method,
		Amount:     in.Amount,
		Reference:  strings.TrimSpace(in.Reference),
		ReceivedBy: sc.StaffID,
		ReceivedAt: s.now().UTC(),
	}
	if err := s.store.AddPayment(ctx, sc.HotelID, p); err != nil {
		return nil, storeErr(err, "payment")
	}
	s.audit(ctx, sc, "folio.payment", f.ID, domain.FormatMoney(p.Amount, f.Currency))
	return s.GetFolio(ctx, sc, f.ID)
}

// CloseFolio settles a folio. It must have no balance left.
func (s *Service) CloseFolio(ctx context.Context, sc tenant.Scope, folioID string) (*FolioView, error) {
	f, err := s.openFolio(ctx, sc, folioID)
	if err != nil {
		return nil, err
	}
	if bal := f.Totals().Balance; bal != 0 {
		return nil, domain.ErrConflict("folio balance is " + domain.FormatMoney(bal, f.Currency)).
			WithCode(domain.ErrorCodeOutstandingBalance)
	}
	at := s.now().UTC()
	f.Status = domain.FolioClosed
	f.ClosedAt = &at
	if err := s.store.UpdateFolio(ctx, f); err != nil {
		return nil, storeErr(err, "folio")
	}
	s.audit(ctx, sc, "folio.close", f.ID, f.Number)
	return view(f), nil
}

// invoiceParts loads everything an invoice or folio export needs.
func (s *Service) invoiceParts(ctx context.Context, sc tenant.Scope, folioID string) (*domain.Hotel, *domain.Reservation, *domain.Folio, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, nil, nil, err
	}
	f, err := s.store.GetFolio(ctx, sc.HotelID, folioID)
	if err != nil {
		return nil, nil, nil, storeErr(err, "folio")
	}
	res, err := s.store.GetReservation(ctx, sc.HotelID, f.ReservationID)
	if err != nil {
		return nil, nil, nil, storeErr(err, "reservation")
	}
	hotel, err := s.hotel(ctx, sc)
	if err != nil {
		return nil, nil, nil, err
	}
	return hotel, res, f, nil
}

// RenderInvoice writes the printable HTML invoice of a folio.
func (s *Service) RenderInvoice(ctx context.Context, sc tenant.Scope, w io.Writer, folioID string) error {
	hotel, res, f, err := s.invoiceParts(ctx, sc, folioID)
	if err != nil {
		return err
	}
	return report.RenderInvoice(w, report.NewInvoice(hotel, res, f, s.now()))
}

// Export is a generated file. ArchiveKey is set when a copy was kept in object storage.
type Export struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
	ArchiveKey  string `json:"archive_key,omitempty"`
}

// keep uploads an export when an archive is configured. Upload failures are logged
// and the export is still returned.
func (s *Service) keep(ctx context.Context, sc tenant.Scope, kind string, exp *Export) {
	if s.archive == nil {
		return
	}
	key, err := s.archive.Put(ctx, archive.Key(sc.HotelID, kind, exp.Filename, s.now()), exp.ContentType, exp.Data)
	if err != nil {
		s.logger.Warn("failed to archive export",
			slog.String("hotel_id", sc.HotelID),
			slog.String("file", exp.Filename),
			slog.String("error", err.Error()))
		return
	}
	exp.ArchiveKey = key
}

// ExportFolio renders a folio as an .xlsx workbook.
func (s *Service) ExportFolio(ctx context.Context, sc tenant.Scope, folioID string) (*Export, error) {
	hotel, res, f, err := s.invoiceParts(ctx, sc, folioID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteFolio(&buf, hotel, res, f); err != nil {
		return nil, err
	}
	exp := &Export{Filename: f.Number + ".xlsx", ContentType: report.XLSXContentType, Data: buf.Bytes()}
	s.keep(ctx, sc, "folios", exp)
	return exp, nil
}

// ExportReservations renders every reservation overlapping [from, to) as an .xlsx workbook.
func (s *Service) ExportReservations(ctx context.Context, sc tenant.Scope, from, to domain.Date) (*Export, error) {
	if err := authorize(sc, domain.PermRead); err != nil {
		return nil, err
	}
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return nil, domain.ErrInvalidRequest("to must be after from").WithParam("to")
	}
	hotel, err := s.hotel(ctx, sc)
	if err != nil {
		return nil, err
	}
	reservations, err := s.store.ListReservations(ctx, sc.HotelID, storage.ReservationFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteReservations(&buf, hotel, reservations); err != nil {
		return nil, err
	}
	exp := &Export{
		Filename:    "reservations-" + from.String() + "-" + to.String() + ".xlsx",
		ContentType: report.XLSXContentType,
		Data:        buf.Bytes(),
	}
	s.keep(ctx, sc, "reservations", exp)
	return exp, nil
}
