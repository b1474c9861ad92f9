package router

import (
	"strings"

	"ssim-converter-service/internal/usecase"
	"ssim-converter-service/pkg/logger"
	"ssim-converter-service/pkg/utils"
)

// SourceRouter routes spreadsheets to handlers based on their header row
type SourceRouter struct {
	handlers []usecase.SourceHandler
	logger   logger.Logger
}

// NewSourceRouter creates a new source router
func NewSourceRouter(logger logger.Logger) *SourceRouter {
	return &SourceRouter{
		handlers: make([]usecase.SourceHandler, 0),
		logger:   logger,
	}
}

// Register registers a handler
func (r *SourceRouter) Register(handler usecase.SourceHandler) {
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered handler", "layout", handler.Layout(), "headerRow", handler.HeaderRow())
}

// GetHandler reads the sheet at each handler's header row and returns the
// first handler that recognises the columns
func (r *SourceRouter) GetHandler(sheet *utils.Sheet) (usecase.SourceHandler, *utils.Table) {
	for _, handler := range r.handlers {
		table, err := sheet.Table(handler.HeaderRow())
		if err != nil {
			continue
		}
		if handler.CanHandle(table) {
			r.logger.Debug("Matched layout", "sheet", sheet.Name, "layout", handler.Layout())
			return handler, table
		}
	}
	return nil, nil
}

// Handler returns the handler for a layout name, ignoring case
func (r *SourceRouter) Handler(layout string) usecase.SourceHandler {
	for _, handler := range r.handlers {
		if strings.EqualFold(handler.Layout(), layout) {
			return handler
		}
	}
	return nil
}
