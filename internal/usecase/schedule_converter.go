package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"ssim-converter-service/internal/domain/entity"
	"ssim-converter-service/internal/domain/repository"
	"ssim-converter-service/pkg/logger"
	"ssim-converter-service/pkg/metrics"
	"ssim-converter-service/pkg/ssim"
	"ssim-converter-service/pkg/utils"
)

// Fatal conversion errors. Row level problems never surface as errors.
var (
	ErrUnreadableInput = errors.New("unreadable input")
	ErrNoValidRows     = errors.New("no valid rows")
	ErrUnknownLayout   = errors.New("unknown source layout")
)

// Conversion sources
const (
	SourceUpload = "upload"
	SourceEmail  = "email"
	SourceCLI    = "cli"
)

// SpreadsheetReader loads a spreadsheet export into raw cells
type SpreadsheetReader interface {
	Read(name string, data io.Reader) (*utils.Sheet, error)
}

// ConvertRequest describes one conversion
type ConvertRequest struct {
	// Name is the original file name; its extension selects the reader.
	Name string
	Data io.Reader
	// Layout forces a source layout; empty detects it from the header.
	Layout string
	// Carriers restricts the output to these operators; empty keeps all.
	Carriers    []string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Source      string
	EmailID     string
	// Store writes the file to the schedule store when one is configured.
	Store bool
}

// Summary reports what happened to the input rows
type Summary struct {
	Layout              string
	RowsRead            int
	RowsProcessed       int
	RowsSkipped         int
	Links               int
	ConnectionsResolved int
	SelfReferences      int
	UnparseableOnward   int
	Skipped             []utils.RowError
	Warnings            []string
}

// ConvertResult is a generated file with its reports
type ConvertResult struct {
	File        *ssim.ScheduleFile
	Report      ssim.Report
	Connections *ssim.ConnectionReport
	Summary     Summary
	// Path is where the store put the file, if it was stored.
	Path  string
	RunID string
}

// ConverterOptions tune a ScheduleConverter
type ConverterOptions struct {
	Producer            string
	SortByFlight        bool
	ValidateConnections bool
	// Now overrides the issue date clock, for tests.
	Now func() time.Time
}

// ScheduleConverter runs the read, adapt, resolve, encode and validate pipeline
type ScheduleConverter struct {
	reader       SpreadsheetReader
	router       SourceRouter
	timezoneRepo repository.TimezoneRepository
	aircraftRepo repository.AircraftRepository
	airlineRepo  repository.AirlineRepository
	runRepo      repository.ConversionRunRepository
	store        repository.ScheduleStore
	metrics      *metrics.Metrics
	encoder      *ssim.Encoder
	validate     bool
	logger       logger.Logger
}

// NewScheduleConverter creates a converter. airlineRepo, runRepo, store and
// metrics are optional and may be nil.
func NewScheduleConverter(
	reader SpreadsheetReader,
	router SourceRouter,
	timezoneRepo repository.TimezoneRepository,
	aircraftRepo repository.AircraftRepository,
	airlineRepo repository.AirlineRepository,
	runRepo repository.ConversionRunRepository,
	store repository.ScheduleStore,
	metrics *metrics.Metrics,
	opts ConverterOptions,
	logger logger.Logger,
) *ScheduleConverter {
	encoder := ssim.NewEncoder(opts.Producer, opts.SortByFlight)
	if opts.Now != nil {
		encoder.Now = opts.Now
	}
	return &ScheduleConverter{
		reader:       reader,
		router:       router,
		timezoneRepo: timezoneRepo,
		aircraftRepo: aircraftRepo,
		airlineRepo:  airlineRepo,
		runRepo:      runRepo,
		store:        store,
		metrics:      metrics,
		encoder:      encoder,
		validate:     opts.ValidateConnections,
		logger:       logger,
	}
}

// Convert turns one spreadsheet into an SSIM file. A structurally
// non-conformant file is still returned; its report says so.
func (c *ScheduleConverter) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	start := time.Now()
	log := c.logger.With("file", req.Name, "source", req.Source)

	result, err := c.convert(ctx, req, log)
	if c.metrics != nil {
		c.metrics.ConversionTime.Observe(time.Since(start).Seconds())
	}

	run := c.newRun(req, result, err)
	c.observe(run, result)
	if saveErr := c.saveRun(ctx, run, log); saveErr == nil && result != nil {
		result.RunID = run.ID
	}

	if err != nil {
		log.Error("Conversion failed", "error", err)
		return result, err
	}

	log.Info("Conversion finished",
		"layout", result.Summary.Layout,
		"flights", result.File.FlightCount,
		"skipped", result.Summary.RowsSkipped,
		"resolved", result.Summary.ConnectionsResolved,
		"conformant", result.Report.Conformant,
		"duration", time.Since(start))
	return result, nil
}

func (c *ScheduleConverter) convert(ctx context.Context, req ConvertRequest, log logger.Logger) (*ConvertResult, error) {
	sheet, err := c.reader.Read(req.Name, req.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}

	handler, table, err := c.selectHandler(sheet, req.Layout)
	if err != nil {
		return nil, err
	}

	ref, err := c.reference(ctx)
	if err != nil {
		return nil, err
	}

	parsed := handler.Parse(table, ref)
	result := &ConvertResult{Summary: Summary{
		Layout:        parsed.Layout,
		RowsRead:      parsed.RowsRead,
		RowsProcessed: len(parsed.Records),
		RowsSkipped:   len(parsed.Skipped),
		Skipped:       parsed.Skipped,
		Warnings:      parsed.Warnings,
	}}
	for _, s := range parsed.Skipped {
		log.Warn("Skipped row", "row", s.Row, "reason", s.Reason)
	}
	if len(parsed.Records) == 0 {
		return result, fmt.Errorf("%w: %d rows read, %d skipped", ErrNoValidRows, parsed.RowsRead, len(parsed.Skipped))
	}

	records := parsed.Records
	resolution := ssim.Resolver{Validate: c.validate}.Resolve(records)
	result.Summary.Links = resolution.Links
	result.Summary.ConnectionsResolved = resolution.Resolved
	result.Summary.SelfReferences = resolution.SelfReferences
	result.Summary.UnparseableOnward = resolution.Unparseable
	if resolution.Report != nil {
		result.Connections = resolution.Report
		result.Summary.Warnings = append(result.Summary.Warnings, resolution.Report.Warnings()...)
	}
	result.Summary.Warnings = append(result.Summary.Warnings, c.checkCarriers(ctx, records)...)

	file, err := c.encoder.Build(ssim.FileRequest{
		Carriers:    req.Carriers,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Records:     records,
	})
	if errors.Is(err, ssim.ErrNoFlights) {
		return result, fmt.Errorf("%w: nothing left after carrier and period selection", ErrNoValidRows)
	}
	if err != nil {
		return result, err
	}
	result.File = file

	result.Report = file.Validate()
	if !result.Report.Conformant {
		log.Warn("Generated file is not conformant", "issues", result.Report.Issues)
	}

	if req.Store && c.store != nil {
		path, err := c.store.Save(ctx, file.FileName(), file)
		if err != nil {
			return result, fmt.Errorf("store %s: %w", file.FileName(), err)
		}
		result.Path = path
	}
	return result, nil
}

// selectHandler finds the layout handler, honouring an explicit layout
func (c *ScheduleConverter) selectHandler(sheet *utils.Sheet, layout string) (SourceHandler, *utils.Table, error) {
	if layout == "" {
		handler, table := c.router.GetHandler(sheet)
		if handler == nil {
			return nil, nil, fmt.Errorf("%w: no layout matches sheet %q", ErrUnknownLayout, sheet.Name)
		}
		return handler, table, nil
	}

	handler := c.router.Handler(layout)
	if handler == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
	}
	table, err := sheet.Table(handler.HeaderRow())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrUnknownLayout, handler.Layout(), err)
	}
	if !handler.CanHandle(table) {
		return nil, nil, fmt.Errorf("%w: sheet %q lacks %s columns", ErrUnknownLayout, sheet.Name, handler.Layout())
	}
	return handler, table, nil
}

// reference loads the lookup tables. A failed lookup source is fatal since
// every offset would silently become +0000.
func (c *ScheduleConverter) reference(ctx context.Context) (utils.Reference, error) {
	offsets, err := c.timezoneRepo.ListOffsets(ctx)
	if err != nil {
		return utils.Reference{}, fmt.Errorf("load airport offsets: %w", err)
	}
	aircraft, err := c.aircraftRepo.ListMappings(ctx)
	if err != nil {
		return utils.Reference{}, fmt.Errorf("load aircraft types: %w", err)
	}
	return utils.Reference{Offsets: offsets, Aircraft: aircraft}, nil
}

// checkCarriers warns about operators missing from the airline table
func (c *ScheduleConverter) checkCarriers(ctx context.Context, records []entity.FlightRecord) []string {
	if c.airlineRepo == nil {
		return nil
	}
	seen := make(map[string]bool)
	var warnings []string
	for i := range records {
		op := records[i].OperatorCode()
		if seen[op] {
			continue
		}
		seen[op] = true
		airline, err := c.airlineRepo.GetByCode(ctx, op)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			warnings = append(warnings, fmt.Sprintf("carrier %s not in airline table", op))
		case err != nil:
			c.logger.Warn("Airline lookup failed", "code", op, "error", err)
		case airline.Retired:
			warnings = append(warnings, fmt.Sprintf("carrier %s is retired in airline table", op))
		}
	}
	sort.Strings(warnings)
	return warnings
}

func (c *ScheduleConverter) newRun(req ConvertRequest, result *ConvertResult, err error) *entity.ConversionRun {
	run := &entity.ConversionRun{
		Source:   req.Source,
		EmailID:  req.EmailID,
		Layout:   req.Layout,
		Carriers: req.Carriers,
		Status:   entity.RunSucceeded,
	}
	if err != nil {
		run.Status = entity.RunFailed
		run.ErrorDetail = err.Error()
	}
	if result == nil {
		return run
	}

	s := result.Summary
	run.Layout = s.Layout
	run.RowsRead = s.RowsRead
	run.RowsProcessed = s.RowsProcessed
	run.RowsSkipped = s.RowsSkipped
	run.ConnectionsResolved = s.ConnectionsResolved
	run.SelfReferences = s.SelfReferences
	run.Warnings = s.Warnings
	for _, sk := range s.Skipped {
		run.Warnings = append(run.Warnings, sk.Error())
	}

	if result.File != nil {
		run.PeriodStart = result.File.PeriodStart
		run.PeriodEnd = result.File.PeriodEnd
		run.FileName = result.File.FileName()
		run.Content = result.File.String()
		run.Conformant = result.Report.Conformant
		run.ValidationIssues = result.Report.Issues
		if err == nil && !result.Report.Conformant {
			run.Status = entity.RunNonConformant
		}
	}
	return run
}

func (c *ScheduleConverter) observe(run *entity.ConversionRun, result *ConvertResult) {
	if c.metrics == nil {
		return
	}
	c.metrics.Conversions.WithLabelValues(run.Status).Inc()
	if run.Status == entity.RunFailed {
		c.metrics.ErrorsCount.WithLabelValues("convert").Inc()
	}
	if result == nil {
		return
	}
	c.metrics.RowsProcessed.Add(float64(result.Summary.RowsProcessed))
	c.metrics.RowsSkipped.Add(float64(result.Summary.RowsSkipped))
	c.metrics.ConnectionsResolved.Add(float64(result.Summary.ConnectionsResolved))
}

func (c *ScheduleConverter) saveRun(ctx context.Context, run *entity.ConversionRun, log logger.Logger) error {
	if c.runRepo == nil {
		return errors.New("no run repository")
	}
	if err := c.runRepo.Save(ctx, run); err != nil {
		log.Error("Failed to save conversion run", "error", err)
		if c.metrics != nil {
			c.metrics.ErrorsCount.WithLabelValues("save_run").Inc()
		}
		return err
	}
	return nil
}
