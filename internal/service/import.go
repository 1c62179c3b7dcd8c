package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/report"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// guestColumns lists the header spellings accepted for each guest field.
var guestColumns = map[string][]string{
	"first_name":      {"first_name", "firstname", "first", "given_name"},
	"last_name":       {"last_name", "lastname", "last", "surname", "family_name"},
	"name":            {"name", "full_name", "guest", "guest_name"},
	"email":           {"email", "e_mail", "email_address", "mail"},
	"phone":           {"phone", "telephone", "mobile", "phone_number"},
	"nationality":     {"nationality", "country"},
	"document_number": {"document_number", "document", "passport", "id_number"},
	"vip":             {"vip"},
	"notes":           {"notes", "comments"},
}

// guestHeaders maps a normalized header cell to its guest field.
var guestHeaders = func() map[string]string {
	m := make(map[string]string)
	for field, names := range guestColumns {
		for _, n := range names {
			m[n] = field
		}
	}
	return m
}()

// RowError reports why one spreadsheet row was not imported. Row is 1-based as shown
// in spreadsheet software.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

// ImportGuests creates guests from the first sheet of an .xlsx or .xls upload. Rows
// whose email already belongs to a guest are skipped.
func (s *Service) ImportGuests(ctx context.Context, sc tenant.Scope, filename string, r io.Reader) (*ImportResult, error) {
	if err := authorize(sc, domain.PermGuestsWrite); err != nil {
		return nil, err
	}
	rows, err := report.ReadRows(r, filename)
	if err != nil {
		return nil, domain.ErrInvalidRequest(err.Error()).WithParam("file")
	}

	columns := make(map[string]int)
	for i, cell := range rows[0] {
		if field, ok := guestHeaders[report.NormalizeHeader(cell)]; ok {
			if _, dup := columns[field]; !dup {
				columns[field] = i
			}
		}
	}
	_, hasName := columns["name"]
	_, hasLast := columns["last_name"]
	if !hasName && !hasLast {
		return nil, domain.ErrInvalidRequest("the first row must name a last_name or name column").WithParam("file")
	}

	col := func(row []string, field string) string {
		idx, ok := columns[field]
		if !ok {
			return ""
		}
		return report.Cell(row, idx)
	}

	res := &ImportResult{Errors: []RowError{}}
	for i, row := range rows[1:] {
		line := i + 2
		if report.BlankRow(row) {
			continue
		}

		in := GuestInput{
			FirstName:      col(row, "first_name"),
			LastName:       col(row, "last_name"),
			Email:          col(row, "email"),
			Phone:          col(row, "phone"),
			Nationality:    col(row, "nationality"),
			DocumentNumber: col(row, "document_number"),
			Notes:          col(row, "notes"),
			VIP:            truthy(col(row, "vip")),
		}
		if in.FirstName == "" && in.LastName == "" {
			in.FirstName, in.LastName = splitName(col(row, "name"))
		}
		if err := in.normalize(); err != nil {
			res.Errors = append(res.Errors, RowError{Row: line, Message: domain.AsAPIError(err).Message})
			continue
		}

		taken, err := s.emailTaken(ctx, sc.HotelID, in.Email, "")
		if err != nil {
			return nil, err
		}
		if taken {
			res.Skipped++
			continue
		}
		if _, err := s.createGuest(ctx, sc, in); err != nil {
			res.Errors = append(res.Errors, RowError{Row: line, Message: domain.AsAPIError(err).Message})
			continue
		}
		res.Imported++
	}

	s.audit(ctx, sc, "guest.import", filename,
		fmt.Sprintf("imported=%d skipped=%d errors=%d", res.Imported, res.Skipped, len(res.Errors)))
	return res, nil
}

// splitName reads "Last, First" or "First Middle Last".
func splitName(name string) (first, last string) {
	if before, after, ok := strings.Cut(name, ","); ok {
		return strings.TrimSpace(after), strings.TrimSpace(before)
	}
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	default:
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true", "1", "x", "vip":
		return true
	}
	return false
}
