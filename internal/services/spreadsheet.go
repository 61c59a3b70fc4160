package services

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const maxSheetRows = 100000

// Layouts tried for spreadsheet dates. Month-first comes before day-first
// unless the caller asks otherwise.
var (
	monthFirstLayouts = []string{
		"1/2/2006", "1-2-2006", "1/2/06",
		"1/2/2006 15:04:05", "1/2/2006 15:04",
	}
	dayFirstLayouts = []string{
		"2/1/2006", "2-1-2006", "2/1/06",
		"2/1/2006 15:04:05", "2/1/2006 15:04",
	}
	isoLayouts = []string{
		"2006-1-2", "2006/1/2", "2006-01-02 15:04:05", "2006-01-02 15:04",
		time.RFC3339, "2006-01-02T15:04:05", "Jan 2, 2006", "January 2, 2006",
		"2 Jan 2006", "2 January 2006",
	}
)

// sheet is the first worksheet of an upload, with a normalized header index.
type sheet struct {
	header map[string]int
	rows   [][]string
}

// readSheet loads .xlsx files with excelize and legacy .xls files with xls.
func readSheet(r io.Reader, filename string) (*sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows = workbook.ReadAllCells(maxSheetRows)
	default:
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()

		name := f.GetSheetName(0)
		if name == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows, err = f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}

	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		key := normalizeHeader(h)
		if _, dup := header[key]; !dup && key != "" {
			header[key] = i
		}
	}
	return &sheet{header: header, rows: rows[1:]}, nil
}

// missing returns the required columns absent from the header.
func (s *sheet) missing(columns ...string) []string {
	var out []string
	for _, c := range columns {
		if _, ok := s.header[normalizeHeader(c)]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// cell returns the trimmed value of the first present column among names.
func (s *sheet) cell(row []string, names ...string) string {
	for _, name := range names {
		idx, ok := s.header[normalizeHeader(name)]
		if !ok || idx >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[idx]); v != "" && !strings.EqualFold(v, "nan") {
			return v
		}
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader makes "Civil Status" and "civil_status" the same column.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.FieldsFunc(h, func(r rune) bool { return r == ' ' || r == '_' }), "_")
}

// ParseSpreadsheetDate reads a date cell: a textual layout or an Excel
// serial number.
func ParseSpreadsheetDate(value string, dayFirst bool) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	layouts := make([]string, 0, len(isoLayouts)+len(monthFirstLayouts)+len(dayFirstLayouts))
	layouts = append(layouts, isoLayouts...)
	if dayFirst {
		layouts = append(append(layouts, dayFirstLayouts...), monthFirstLayouts...)
	} else {
		layouts = append(append(layouts, monthFirstLayouts...), dayFirstLayouts...)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return dateOnly(t), true
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 1 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// cleanNumber drops the ".0" Excel appends to numeric ids and phone numbers.
func cleanNumber(v string) string {
	if strings.HasSuffix(v, ".0") {
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return strings.TrimSuffix(v, ".0")
		}
	}
	return v
}
