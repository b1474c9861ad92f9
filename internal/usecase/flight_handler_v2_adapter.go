package usecase

import (
	"ssim-converter-service/pkg/utils"
)

// FlightHandlerV2Adapter adapts the Cirium ScheduleParserV2 to SourceHandler
type FlightHandlerV2Adapter struct {
	parser *utils.ScheduleParserV2
}

// NewFlightHandlerV2Adapter creates a new Cirium adapter
func NewFlightHandlerV2Adapter(parser *utils.ScheduleParserV2) *FlightHandlerV2Adapter {
	return &FlightHandlerV2Adapter{
		parser: parser,
	}
}

func (a *FlightHandlerV2Adapter) Layout() string { return utils.LayoutCirium }

func (a *FlightHandlerV2Adapter) HeaderRow() int { return utils.CiriumHeaderRow }

// CanHandle checks for the Cirium period columns and a carrier column
func (a *FlightHandlerV2Adapter) CanHandle(t *utils.Table) bool {
	if !t.HasColumns(utils.CiriumColumns...) {
		return false
	}
	_, ok := t.FirstColumn(utils.CiriumCarrierColumns...)
	return ok
}

// Parse converts Cirium rows
func (a *FlightHandlerV2Adapter) Parse(t *utils.Table, ref utils.Reference) utils.ParseResult {
	return a.parser.Parse(t, ref)
}
