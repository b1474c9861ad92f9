package usecase

import (
	"ssim-converter-service/pkg/utils"
)

// SourceHandler turns one vendor layout into flight records
type SourceHandler interface {
	// Layout names the source format, e.g. "TS09"
	Layout() string

	// HeaderRow is the 0-based sheet row holding the column names
	HeaderRow() int

	// CanHandle determines if this handler understands the table's columns
	CanHandle(t *utils.Table) bool

	// Parse extracts flight records, skipping rows it cannot use
	Parse(t *utils.Table, ref utils.Reference) utils.ParseResult
}

// SourceRouter routes spreadsheets to the appropriate handler based on their header
type SourceRouter interface {
	// Register registers a handler; earlier registrations win ties
	Register(handler SourceHandler)

	// GetHandler returns the handler for a sheet together with the table it
	// read, or nil when no layout matches
	GetHandler(sheet *utils.Sheet) (SourceHandler, *utils.Table)

	// Handler returns the handler registered for a layout name
	Handler(layout string) SourceHandler
}
