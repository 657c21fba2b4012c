// Package export renders tabular data as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/angelmondragon/dealerdesk-backend/pkg/errors"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// utf8BOM lets spreadsheet apps detect UTF-8 so Arabic text opens correctly.
const utf8BOM = "\uFEFF"

const dateLayout = "2006-01-02"

var ErrNoData = pkgerrors.New(pkgerrors.CodeValidation, "no data to export")

// ParseFormat defaults to CSV when raw is empty.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", pkgerrors.FieldErrors("invalid export format", map[string]string{"format": "must be csv or xlsx"})
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename builds "<base>_<YYYY-MM-DD>.<ext>".
func (f Format) Filename(base string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", base, at.Format(dateLayout), string(f))
}

// Table is one sheet of data. Cells may be strings, numbers, decimals,
// times or nil.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]any
}

// Write renders t in the requested format. An empty table is rejected.
func Write(w io.Writer, format Format, t Table) error {
	if len(t.Rows) == 0 {
		return ErrNoData
	}
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, t)
	default:
		return WriteCSV(w, t)
	}
}

func WriteCSV(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = text(cell)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		index, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		f.SetActiveSheet(index)
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("drop default sheet: %w", err)
		}
	}

	for i, header := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	for r, row := range t.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, xlsxValue(value)); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case decimal.Decimal:
		return v.StringFixed(2)
	case time.Time:
		return v.Format(dateLayout)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format(dateLayout)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func xlsxValue(value any) any {
	switch v := value.(type) {
	case decimal.Decimal:
		return v.InexactFloat64()
	case int, int64, float64:
		return v
	default:
		return text(v)
	}
}
