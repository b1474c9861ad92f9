package utils

import (
	"strings"
	"time"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/pkg/logger"
	"ssim-converter-service/pkg/ssim"
)

// LayoutTS09 is one row per flight occurrence with an "Onward Flight" column
const LayoutTS09 = "TS09"

// TS09 column names
const (
	colCarrier  = "Flight-Carrier"
	colFlightNo = "Flight-Number"
	colDate     = "Date-LT"
	colWeekDay  = "Week-Day-LT"
	colType     = "Type"
	colSTD      = "Std-LT"
	colSTA      = "Sta-LT"
	colRoute    = "Route"
	colAircraft = "Aircraft-Type"
	colOnward   = "Onward Flight"
)

// TS09Columns must all be present for a table to be read as TS09
var TS09Columns = []string{colFlightNo, colDate, colRoute, colSTD, colSTA}

// ScheduleParser turns TS09 rows into flight records. Every row is one
// dated occurrence, so the effective and discontinue dates are the row
// date and the operating days hold that single weekday.
type ScheduleParser struct {
	defaultCarrier string
	logger         logger.Logger
}

// NewScheduleParser creates a TS09 parser. defaultCarrier is used when the
// carrier column is absent or empty.
func NewScheduleParser(defaultCarrier string, logger logger.Logger) *ScheduleParser {
	return &ScheduleParser{
		defaultCarrier: strings.ToUpper(strings.TrimSpace(defaultCarrier)),
		logger:         logger,
	}
}

// Parse converts every usable row of t. Bad rows are skipped and recorded.
func (p *ScheduleParser) Parse(t *Table, ref Reference) ParseResult {
	res := ParseResult{Layout: LayoutTS09}
	for _, row := range t.Rows() {
		res.RowsRead++
		rec, ok := p.parseRow(row, ref, &res)
		if !ok {
			continue
		}
		res.Records = append(res.Records, rec)
	}

	p.logger.Info("Parsed TS09 table",
		"table", t.Name,
		"rows", res.RowsRead,
		"records", len(res.Records),
		"skipped", len(res.Skipped))
	return res
}

func (p *ScheduleParser) parseRow(row Row, ref Reference, res *ParseResult) (entity.FlightRecord, bool) {
	var rec entity.FlightRecord
	rec.SourceRow = row.Number

	rec.Carrier = row.Text(colCarrier)
	if rec.Carrier == "" {
		rec.Carrier = p.defaultCarrier
	}
	if !IsCarrierCode(rec.Carrier) {
		res.skip(row.Number, "invalid carrier %q", rec.Carrier)
		return rec, false
	}
	rec.Operator = rec.Carrier

	flight, ok := ParseFlightNumber(row.Get(colFlightNo), rec.Carrier)
	if !ok {
		res.skip(row.Number, "invalid flight number %q", row.Get(colFlightNo).String())
		return rec, false
	}
	rec.FlightNumber = flight

	orig, dest, ok := ParseRoute(row.Text(colRoute))
	if !ok {
		res.skip(row.Number, "missing or invalid route %q", row.Get(colRoute).String())
		return rec, false
	}
	rec.Origin, rec.Destination = orig, dest

	date, ok := ssim.ParseDate(row.Get(colDate))
	if !ok {
		res.skip(row.Number, "unparseable date %q", row.Get(colDate).String())
		return rec, false
	}
	rec.EffectiveDate = date
	rec.DiscontinueDate = date

	rec.OperatingDays = p.weekday(row, res, date)

	switch row.Text(colType) {
	case "", "J":
		rec.ServiceType = entity.ServicePassenger
	default:
		rec.ServiceType = entity.ServiceCargo
	}

	rec.DepartureTime = clock(row, colSTD, "departure", res)
	rec.ArrivalTime = clock(row, colSTA, "arrival", res)

	// Arrival on the next calendar day.
	if rec.ArrivalTime.Before(rec.DepartureTime) {
		rec.DiscontinueDate = date.AddDate(0, 0, 1)
	}

	rec.AircraftType = ssim.FormatAircraftType(row.Text(colAircraft), ref.Aircraft)
	rec.OriginUTCOffset = offset(ref, rec.Origin, row.Number, res)
	rec.DestinationUTCOffset = offset(ref, rec.Destination, row.Number, res)
	rec.OnwardRaw = strings.TrimSpace(row.Get(colOnward).String())
	return rec, true
}

// weekday reads Week-Day-LT (1 = Monday), deriving it from the date when absent
func (p *ScheduleParser) weekday(row Row, res *ParseResult, date time.Time) entity.DaySet {
	if n, ok := row.Get(colWeekDay).AsNumber(); ok {
		if d := entity.SingleDay(int(n)); d != 0 && float64(int(n)) == n {
			return d
		}
		res.warn(row.Number, "week day %v out of range, using date", n)
	}
	return entity.SingleDay(isoWeekday(date))
}

// isoWeekday numbers Monday 1 through Sunday 7
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// clock parses a time cell; unparseable values become 0000 with a warning
func clock(row Row, col, label string, res *ParseResult) entity.LocalTime {
	v := row.Get(col)
	t, ok := ssim.ParseTime(v)
	if !ok {
		res.warn(row.Number, "unparseable %s time %q, using 0000", label, v.String())
	}
	return t
}

// offset looks up an airport's UTC offset; unknown airports use +0000
func offset(ref Reference, airport string, rowNum int, res *ParseResult) entity.UTCOffset {
	o, ok := ref.Offset(airport)
	if !ok {
		res.warn(rowNum, "no UTC offset for %s, using +0000", airport)
	}
	return o
}
