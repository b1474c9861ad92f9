package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/internal/domain/repository"
	"ssim-converter-service/internal/usecase"
	"ssim-converter-service/pkg/logger"
	"ssim-converter-service/pkg/ssim"
)

const (
	maxUploadSize   = 32 << 20
	defaultRunLimit = 20
	maxRunLimit     = 200
)

// Response headers carrying the run summary of POST /convert
const (
	HeaderFileName            = "X-Ssim-File-Name"
	HeaderLayout              = "X-Source-Layout"
	HeaderRowsProcessed       = "X-Rows-Processed"
	HeaderRowsSkipped         = "X-Rows-Skipped"
	HeaderConnectionsResolved = "X-Connections-Resolved"
	HeaderConformant          = "X-Ssim-Conformant"
	HeaderRunID               = "X-Run-Id"
)

// Handler serves the conversion endpoints
type Handler struct {
	converter usecase.Converter
	runRepo   repository.ConversionRunRepository
	logger    logger.Logger
}

// NewHandler creates a new handler
func NewHandler(converter usecase.Converter, runRepo repository.ConversionRunRepository, logger logger.Logger) *Handler {
	return &Handler{
		converter: converter,
		runRepo:   runRepo,
		logger:    logger,
	}
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Convert accepts a multipart upload in the "file" field and answers with
// the SSIM text. Optional form fields: layout, carriers (comma separated),
// period_start, period_end and store.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	req := usecase.ConvertRequest{
		Name:     header.Filename,
		Data:     file,
		Layout:   strings.TrimSpace(r.FormValue("layout")),
		Carriers: splitList(r.FormValue("carriers")),
		Source:   usecase.SourceUpload,
	}
	if req.PeriodStart, err = formDate(r, "period_start"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PeriodEnd, err = formDate(r, "period_end"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if v := r.FormValue("store"); v != "" {
		if req.Store, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "store must be a boolean")
			return
		}
	}

	result, err := h.converter.Convert(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	s := result.Summary
	hdr := w.Header()
	hdr.Set("Content-Type", "text/plain; charset=us-ascii")
	hdr.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.File.FileName()))
	hdr.Set(HeaderFileName, result.File.FileName())
	hdr.Set(HeaderLayout, s.Layout)
	hdr.Set(HeaderRowsProcessed, strconv.Itoa(s.RowsProcessed))
	hdr.Set(HeaderRowsSkipped, strconv.Itoa(s.RowsSkipped))
	hdr.Set(HeaderConnectionsResolved, strconv.Itoa(s.ConnectionsResolved))
	hdr.Set(HeaderConformant, strconv.FormatBool(result.Report.Conformant))
	if result.RunID != "" {
		hdr.Set(HeaderRunID, result.RunID)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := result.File.WriteTo(w); err != nil {
		h.logger.Warn("Failed to write response", "error", err)
	}
}

// ListRuns returns the most recent runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runRepo == nil {
		writeError(w, http.StatusNotFound, "run history disabled")
		return
	}
	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := h.runRepo.FindRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun returns one run report
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.findRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetRunFile returns the SSIM text generated by a run
func (h *Handler) GetRunFile(w http.ResponseWriter, r *http.Request) {
	run, ok := h.findRun(w, r)
	if !ok {
		return
	}
	if run.Content == "" {
		writeError(w, http.StatusNotFound, "run produced no file")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=us-ascii")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", run.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(run.Content))
}

func (h *Handler) findRun(w http.ResponseWriter, r *http.Request) (*entity.ConversionRun, bool) {
	if h.runRepo == nil {
		writeError(w, http.StatusNotFound, "run history disabled")
		return nil, false
	}
	id := chi.URLParam(r, "id")
	run, err := h.runRepo.FindByID(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load run", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return nil, false
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return nil, false
	}
	return run, true
}

// statusFor maps conversion errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrUnreadableInput), errors.Is(err, usecase.ErrUnknownLayout):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNoValidRows):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// formDate parses an optional date field in any of the accepted spreadsheet formats
func formDate(r *http.Request, field string) (time.Time, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return time.Time{}, nil
	}
	d, ok := ssim.ParseDate(ssim.Text(v))
	if !ok {
		return time.Time{}, fmt.Errorf("%s: unparseable date %q", field, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.ToUpper(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
