package usecase

import (
	"ssim-converter-service/pkg/utils"
)

// FlightHandlerV1Adapter adapts the TS09 ScheduleParser to SourceHandler
type FlightHandlerV1Adapter struct {
	parser *utils.ScheduleParser
}

// NewFlightHandlerV1Adapter creates a new TS09 adapter
func NewFlightHandlerV1Adapter(parser *utils.ScheduleParser) *FlightHandlerV1Adapter {
	return &FlightHandlerV1Adapter{
		parser: parser,
	}
}

func (a *FlightHandlerV1Adapter) Layout() string { return utils.LayoutTS09 }

// HeaderRow is the first row: TS09 exports have no preamble
func (a *FlightHandlerV1Adapter) HeaderRow() int { return 0 }

// CanHandle checks for the TS09 columns
func (a *FlightHandlerV1Adapter) CanHandle(t *utils.Table) bool {
	return t.HasColumns(utils.TS09Columns...)
}

// Parse converts TS09 rows
func (a *FlightHandlerV1Adapter) Parse(t *utils.Table, ref utils.Reference) utils.ParseResult {
	return a.parser.Parse(t, ref)
}
