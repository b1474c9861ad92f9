package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ssim-converter-service/pkg/logger"
	"ssim-converter-service/pkg/ssim"
	"ssim-converter-service/pkg/utils"
)

// ErrUnsupportedFormat is returned for file types the reader cannot open
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Reader loads the first worksheet of an .xlsx/.xlsm workbook or a .csv file
type Reader struct {
	logger logger.Logger
}

// NewReader creates a spreadsheet reader
func NewReader(logger logger.Logger) *Reader {
	return &Reader{logger: logger}
}

// Supported reports whether the file name has an extension the reader handles
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

// ReadFile opens path and reads it
func (r *Reader) ReadFile(path string) (*utils.Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return r.Read(filepath.Base(path), f)
}

// Read parses data according to the extension of name
func (r *Reader) Read(name string, data io.Reader) (*utils.Sheet, error) {
	var (
		sheet *utils.Sheet
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		sheet, err = r.readWorkbook(name, data)
	case ".csv":
		sheet, err = r.readCSV(name, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	r.logger.Info("Read spreadsheet", "name", name, "sheet", sheet.Name, "rows", len(sheet.Rows))
	return sheet, nil
}

func (r *Reader) readWorkbook(name string, data io.Reader) (*utils.Sheet, error) {
	f, err := excelize.OpenReader(data)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			r.logger.Warn("Failed to close workbook", "name", name, "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	if len(sheets) > 1 {
		r.logger.Debug("Workbook has several sheets, reading the first", "name", name, "sheets", sheets)
	}

	// Raw values keep dates as serial numbers and times as day fractions.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	sheet := &utils.Sheet{Name: sheets[0], Rows: make([][]ssim.Value, len(rows))}
	for i, row := range rows {
		sheet.Rows[i] = cells(row)
	}
	return sheet, nil
}

func (r *Reader) readCSV(name string, data io.Reader) (*utils.Sheet, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.Comma = sniffDelimiter(raw)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	sheet := &utils.Sheet{
		Name: strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)),
		Rows: make([][]ssim.Value, len(records)),
	}
	for i, rec := range records {
		sheet.Rows[i] = cells(rec)
	}
	return sheet, nil
}

// sniffDelimiter picks ';' for exports from locales that use a decimal comma
func sniffDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// cells converts raw cell text into values; plain numerals become numbers
func cells(row []string) []ssim.Value {
	out := make([]ssim.Value, len(row))
	for i, c := range row {
		out[i] = cell(c)
	}
	return out
}

func cell(s string) ssim.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return ssim.Missing()
	}
	// Leading zeros ("0122") and signs carry meaning in text columns.
	if s[0] != '0' || s == "0" || strings.HasPrefix(s, "0.") {
		if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "+eEIiNn") {
			return ssim.Number(f)
		}
	}
	return ssim.Text(s)
}
