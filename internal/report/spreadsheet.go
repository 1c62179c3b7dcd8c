// Package report reads guest spreadsheets and renders exports and printable invoices.
package report

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// MaxImportRows caps how many rows are read from an uploaded sheet.
const MaxImportRows = 10000

// ReadRows returns the cells of the first worksheet. The format is chosen by
// extension: .xls goes through the legacy BIFF reader, everything else through excelize.
func ReadRows(r io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("open xls workbook: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows := workbook.ReadAllCells(MaxImportRows + 1)
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	case ".xlsx", ".xlsm":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open xlsx workbook: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheet := file.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		if len(rows) > MaxImportRows+1 {
			rows = rows[:MaxImportRows+1]
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported spreadsheet type %q: upload .xlsx or .xls", filepath.Ext(filename))
	}
}

// NormalizeHeader folds a header cell to a lookup key: "First Name" becomes "first_name".
func NormalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.NewReplacer("-", "_", " ", "_", ".", "").Replace(h)
	return h
}

// Cell returns the trimmed cell at idx, or "" when the row is short.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// BlankRow reports whether every cell is empty.
func BlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
