package utils

import (
	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/pkg/logger"
	"ssim-converter-service/pkg/ssim"
)

// LayoutCirium carries explicit effective/discontinue dates and an operating-days column
const LayoutCirium = "CIRIUM"

// CiriumHeaderRow is the 0-based row holding the column names; the rows
// above it are report metadata.
const CiriumHeaderRow = 4

// Cirium column names
const (
	colOrig      = "Orig"
	colDest      = "Dest"
	colFlight    = "Flight"
	colDepTime   = "Dep Time"
	colArrTime   = "Arr Time"
	colEffDate   = "Eff Date"
	colDiscDate  = "Disc Date"
	colOpDays    = "Op Days"
	colEquip     = "Equip"
	colEquipment = "Equipment"
	colSeats     = "Seats"
)

// CiriumCarrierColumns are tried in order for the airline designator
var CiriumCarrierColumns = []string{"Mkt Al", "Op Al", "Airline", "Carrier"}

// CiriumColumns must all be present for a table to be read as Cirium
var CiriumColumns = []string{colOrig, colDest, colFlight, colEffDate, colDiscDate}

// ScheduleParserV2 turns Cirium schedule rows into flight records. Each row
// covers a period of operation rather than one dated occurrence.
type ScheduleParserV2 struct {
	logger logger.Logger
}

// NewScheduleParserV2 creates a Cirium parser
func NewScheduleParserV2(logger logger.Logger) *ScheduleParserV2 {
	return &ScheduleParserV2{logger: logger}
}

// Parse converts every usable row of t. Bad rows are skipped and recorded.
func (p *ScheduleParserV2) Parse(t *Table, ref Reference) ParseResult {
	res := ParseResult{Layout: LayoutCirium}
	carrierCol, ok := t.FirstColumn(CiriumCarrierColumns...)
	if !ok {
		p.logger.Warn("No carrier column in Cirium table", "table", t.Name, "tried", CiriumCarrierColumns)
	}

	for _, row := range t.Rows() {
		res.RowsRead++
		rec, ok := p.parseRow(row, carrierCol, ref, &res)
		if !ok {
			continue
		}
		res.Records = append(res.Records, rec)
	}

	p.logger.Info("Parsed Cirium table",
		"table", t.Name,
		"carrierColumn", carrierCol,
		"rows", res.RowsRead,
		"records", len(res.Records),
		"skipped", len(res.Skipped))
	return res
}

func (p *ScheduleParserV2) parseRow(row Row, carrierCol string, ref Reference, res *ParseResult) (entity.FlightRecord, bool) {
	var rec entity.FlightRecord
	rec.SourceRow = row.Number

	if carrierCol != "" {
		rec.Carrier = row.Text(carrierCol)
	}
	if !IsCarrierCode(rec.Carrier) {
		res.skip(row.Number, "invalid carrier %q", rec.Carrier)
		return rec, false
	}
	rec.Operator = rec.Carrier

	flight, ok := ParseFlightNumber(row.Get(colFlight), rec.Carrier)
	if !ok {
		res.skip(row.Number, "invalid flight number %q", row.Get(colFlight).String())
		return rec, false
	}
	rec.FlightNumber = flight

	rec.Origin, rec.Destination = row.Text(colOrig), row.Text(colDest)
	if !IsAirportCode(rec.Origin) || !IsAirportCode(rec.Destination) {
		res.skip(row.Number, "missing airport code (orig %q, dest %q)", rec.Origin, rec.Destination)
		return rec, false
	}

	eff, ok := ssim.ParseDate(row.Get(colEffDate))
	if !ok {
		res.skip(row.Number, "unparseable effective date %q", row.Get(colEffDate).String())
		return rec, false
	}
	disc, ok := ssim.ParseDate(row.Get(colDiscDate))
	if !ok {
		res.skip(row.Number, "unparseable discontinue date %q", row.Get(colDiscDate).String())
		return rec, false
	}
	if disc.Before(eff) {
		res.skip(row.Number, "discontinue date %s before effective date %s",
			disc.Format("2006-01-02"), eff.Format("2006-01-02"))
		return rec, false
	}
	rec.EffectiveDate, rec.DiscontinueDate = eff, disc

	rec.OperatingDays = operatingDays(row, res)

	rec.ServiceType = entity.ServicePassenger
	if seats, ok := ParseSeats(row.Get(colSeats)); ok && seats == 0 {
		rec.ServiceType = entity.ServiceCargo
	}

	rec.DepartureTime = clock(row, colDepTime, "departure", res)
	rec.ArrivalTime = clock(row, colArrTime, "arrival", res)

	rec.AircraftType = ssim.FormatAircraftType(row.Text(colEquip, colEquipment), ref.Aircraft)
	rec.OriginUTCOffset = offset(ref, rec.Origin, row.Number, res)
	rec.DestinationUTCOffset = offset(ref, rec.Destination, row.Number, res)
	rec.OnwardRaw = row.Get(colOnward).String()
	return rec, true
}

// operatingDays reads "1234567" or "12..56."; absent or empty masks mean every day
func operatingDays(row Row, res *ParseResult) entity.DaySet {
	v := row.Get(colOpDays)
	if v.IsMissing() {
		return entity.AllDays
	}
	days, ok := ssim.ParseDaysOfOperation(ssim.Text(ssim.NormalizeDaysOfOperation(v.String())))
	if !ok {
		res.warn(row.Number, "operating days %q have no weekday, using 1234567", v.String())
		return entity.AllDays
	}
	return days
}
