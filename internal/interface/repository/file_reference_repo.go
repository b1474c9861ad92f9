package repository

import (
	"context"
	"fmt"
	"strings"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/internal/domain/repository"
	"ssim-converter-service/internal/interface/spreadsheet"
	"ssim-converter-service/pkg/logger"
	"ssim-converter-service/pkg/utils"
)

// ReferenceFiles names the spreadsheet exports of the reference tables.
// Any of them may be empty.
type ReferenceFiles struct {
	// Airports has IATA and Timezone (hours from UTC) columns, ICAO optional.
	Airports string
	// Aircraft has ICAO and IATA equipment code columns.
	Aircraft string
	// Airlines has Code and Name columns.
	Airlines string
}

// Reference table columns, first match wins
var (
	airportCodeColumns = []string{"IATA", "Airport Code", "AirportCode", "Code"}
	airportNameColumns = []string{"Name", "Airport Name"}
	cityColumns        = []string{"City", "City Name"}
	gmtColumns         = []string{"Timezone", "GMT", "GmtTz", "UTC Offset"}
	tzNameColumns      = []string{"Tz Name", "TzName", "Tz Database Time Zone", "IANA"}
	icaoColumns        = []string{"ICAO", "ICAO Code"}
	iataTypeColumns    = []string{"IATA", "IATA Code", "SSIM"}
	airlineCodeColumns = []string{"Code", "IATA", "Airline Code"}
	airlineNameColumns = []string{"Name", "Airline", "Airline Name"}
)

// FileReferenceRepository serves airport, aircraft and airline lookups from
// local spreadsheet exports. It backs the command line converter, which runs
// without a database.
type FileReferenceRepository struct {
	timezones map[string]*entity.Timezone
	aircraft  map[string]string
	airlines  map[string]*entity.Airline
}

// NewFileReferenceRepository reads every configured file up front
func NewFileReferenceRepository(reader *spreadsheet.Reader, files ReferenceFiles, logger logger.Logger) (*FileReferenceRepository, error) {
	r := &FileReferenceRepository{
		timezones: make(map[string]*entity.Timezone),
		aircraft:  make(map[string]string),
		airlines:  make(map[string]*entity.Airline),
	}

	loaders := []struct {
		path string
		load func(*utils.Table)
	}{
		{files.Airports, r.loadAirports},
		{files.Aircraft, r.loadAircraft},
		{files.Airlines, r.loadAirlines},
	}
	for _, l := range loaders {
		if l.path == "" {
			continue
		}
		sheet, err := reader.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("reference file: %w", err)
		}
		table, err := sheet.Table(0)
		if err != nil {
			return nil, fmt.Errorf("reference file %s: %w", l.path, err)
		}
		l.load(table)
	}

	logger.Info("Loaded reference files",
		"airports", len(r.timezones),
		"aircraft", len(r.aircraft),
		"airlines", len(r.airlines))
	return r, nil
}

func (r *FileReferenceRepository) loadAirports(t *utils.Table) {
	for _, row := range t.Rows() {
		code := row.Text(airportCodeColumns...)
		if !utils.IsAirportCode(code) {
			continue
		}
		r.timezones[code] = &entity.Timezone{
			AirportCode: code,
			AirportName: strings.TrimSpace(row.Get(airportNameColumns...).String()),
			CityName:    strings.TrimSpace(row.Get(cityColumns...).String()),
			GmtTz:       row.Get(gmtColumns...).String(),
			TzName:      strings.TrimSpace(row.Get(tzNameColumns...).String()),
		}
	}
}

func (r *FileReferenceRepository) loadAircraft(t *utils.Table) {
	for _, row := range t.Rows() {
		icao, iata := row.Text(icaoColumns...), row.Text(iataTypeColumns...)
		if icao == "" || iata == "" {
			continue
		}
		r.aircraft[icao] = iata
	}
}

func (r *FileReferenceRepository) loadAirlines(t *utils.Table) {
	for _, row := range t.Rows() {
		code := row.Text(airlineCodeColumns...)
		if !utils.IsCarrierCode(code) {
			continue
		}
		r.airlines[code] = &entity.Airline{
			Code: code,
			Name: strings.TrimSpace(row.Get(airlineNameColumns...).String()),
		}
	}
}

// ListOffsets returns the offset of every airport with a usable timezone
func (r *FileReferenceRepository) ListOffsets(_ context.Context) (map[string]entity.UTCOffset, error) {
	offsets := make(map[string]entity.UTCOffset, len(r.timezones))
	for code, tz := range r.timezones {
		if hours, ok := tz.OffsetHours(); ok {
			offsets[code] = entity.OffsetFromHours(hours)
		}
	}
	return offsets, nil
}

// ListMappings returns a copy of the equipment code table
func (r *FileReferenceRepository) ListMappings(_ context.Context) (map[string]string, error) {
	out := make(map[string]string, len(r.aircraft))
	for k, v := range r.aircraft {
		out[k] = v
	}
	return out, nil
}

// GetByCode finds an airline by code
func (r *FileReferenceRepository) GetByCode(_ context.Context, code string) (*entity.Airline, error) {
	a, ok := r.airlines[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("airline %s: %w", code, repository.ErrNotFound)
	}
	return a, nil
}

var (
	_ repository.TimezoneRepository = (*FileReferenceRepository)(nil)
	_ repository.AircraftRepository = (*FileReferenceRepository)(nil)
	_ repository.AirlineRepository  = (*FileReferenceRepository)(nil)
)
