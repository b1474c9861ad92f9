package utils

import (
	"fmt"
	"strings"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/pkg/ssim"
)

// Sheet is the raw cell grid of one worksheet or CSV file
type Sheet struct {
	Name string
	Rows [][]ssim.Value
}

// Table returns the rows below headerRow keyed by the header names found on it.
// Rows that are entirely empty are dropped.
func (s *Sheet) Table(headerRow int) (*Table, error) {
	if headerRow < 0 || headerRow >= len(s.Rows) {
		return nil, fmt.Errorf("header row %d out of range (%d rows)", headerRow+1, len(s.Rows))
	}
	headers := make([]string, len(s.Rows[headerRow]))
	for i, v := range s.Rows[headerRow] {
		headers[i] = strings.TrimSpace(v.String())
	}
	t := NewTable(s.Name, headers)
	t.HeaderRow = headerRow
	for i := headerRow + 1; i < len(s.Rows); i++ {
		if isBlankRow(s.Rows[i]) {
			continue
		}
		t.rows = append(t.rows, Row{Number: i + 1, cells: s.Rows[i], table: t})
	}
	return t, nil
}

func isBlankRow(cells []ssim.Value) bool {
	for _, c := range cells {
		if !c.IsMissing() {
			return false
		}
	}
	return true
}

// Table is a header-indexed view over spreadsheet rows
type Table struct {
	Name    string
	Headers []string
	// HeaderRow is the 0-based sheet row the headers were read from.
	HeaderRow int

	index map[string]int
	rows  []Row
}

// NewTable creates an empty table with the given header names
func NewTable(name string, headers []string) *Table {
	t := &Table{
		Name:    name,
		Headers: headers,
		index:   make(map[string]int, len(headers)),
	}
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, dup := t.index[key]; key != "" && !dup {
			t.index[key] = i
		}
	}
	return t
}

// AddRow appends a data row; number is the 1-based source row number
func (t *Table) AddRow(number int, cells ...ssim.Value) {
	t.rows = append(t.rows, Row{Number: number, cells: cells, table: t})
}

func (t *Table) Rows() []Row { return t.rows }

func (t *Table) Len() int { return len(t.rows) }

// Column returns the index of a header, matching case and spacing loosely
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[normalizeHeader(name)]
	return i, ok
}

// HasColumns reports whether every named column is present
func (t *Table) HasColumns(names ...string) bool {
	for _, n := range names {
		if _, ok := t.Column(n); !ok {
			return false
		}
	}
	return true
}

// FirstColumn returns the first of names present in the table
func (t *Table) FirstColumn(names ...string) (string, bool) {
	for _, n := range names {
		if _, ok := t.Column(n); ok {
			return n, true
		}
	}
	return "", false
}

// Row is one data row of a Table
type Row struct {
	Number int
	cells  []ssim.Value
	table  *Table
}

// Get returns the first non-missing value among the named columns
func (r Row) Get(names ...string) ssim.Value {
	for _, n := range names {
		i, ok := r.table.Column(n)
		if !ok || i >= len(r.cells) {
			continue
		}
		if v := r.cells[i]; !v.IsMissing() {
			return v
		}
	}
	return ssim.Missing()
}

// Text returns the named cell as trimmed upper-case text
func (r Row) Text(names ...string) string {
	return strings.ToUpper(strings.TrimSpace(r.Get(names...).String()))
}

// Reference holds the lookup tables consulted while building records
type Reference struct {
	// Offsets maps IATA airport codes to their UTC offset.
	Offsets map[string]entity.UTCOffset
	// Aircraft maps ICAO or vendor equipment codes to 3 character types.
	Aircraft map[string]string
}

// Offset returns the airport's UTC offset, or zero when unknown
func (r Reference) Offset(airport string) (entity.UTCOffset, bool) {
	o, ok := r.Offsets[airport]
	return o, ok
}

// RowError records why a source row was skipped
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// ParseResult is what a layout parser extracted from a table
type ParseResult struct {
	Layout   string
	Records  []entity.FlightRecord
	RowsRead int
	Skipped  []RowError
	Warnings []string
}

func (r *ParseResult) skip(row int, format string, args ...interface{}) {
	r.Skipped = append(r.Skipped, RowError{Row: row, Reason: fmt.Sprintf(format, args...)})
}

func (r *ParseResult) warn(row int, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("row %d: ", row)+fmt.Sprintf(format, args...))
}
