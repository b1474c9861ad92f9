package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	domainrepo "ssim-converter-service/internal/domain/repository"
	"ssim-converter-service/internal/infrastructure/config"
	"ssim-converter-service/internal/infrastructure/router"
	"ssim-converter-service/internal/interface/repository"
	"ssim-converter-service/internal/interface/spreadsheet"
	"ssim-converter-service/internal/usecase"
	"ssim-converter-service/pkg/logger"
	"ssim-converter-service/pkg/ssim"
	"ssim-converter-service/pkg/utils"
)

// Exit codes
const (
	exitOK            = 0
	exitFailed        = 1
	exitUsage         = 2
	exitNonConformant = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return exitFailed
	}

	var (
		in       = flag.String("in", "", "schedule spreadsheet (.xlsx, .xlsm or .csv)")
		outDir   = flag.String("out", cfg.OutputDir, "output directory; \"-\" writes to stdout")
		layout   = flag.String("layout", "", "force the source layout (TS09 or Cirium)")
		carriers = flag.String("carriers", strings.Join(cfg.Carriers, ","), "comma separated operator codes to keep")
		from     = flag.String("from", "", "schedule period start (e.g. 01SEP25)")
		to       = flag.String("to", "", "schedule period end (e.g. 30SEP25)")
		airports = flag.String("airports", "", "airport reference table with IATA and Timezone columns")
		aircraft = flag.String("aircraft", "", "aircraft reference table with ICAO and IATA columns")
		airlines = flag.String("airlines", "", "airline reference table with Code and Name columns")
		carrier  = flag.String("default-carrier", cfg.DefaultCarrier, "carrier for TS09 rows without one")
		producer = flag.String("producer", cfg.ProducerName, "producer name written in the carrier record")
		sortFlag = flag.Bool("sort", cfg.SortByFlight, "order flights by flight number")
		validate = flag.Bool("validate", cfg.ValidateConnections, "analyze onward connections")
		level    = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "missing -in")
		flag.Usage()
		return exitUsage
	}
	start, err := flagDate("from", *from)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	end, err := flagDate("to", *to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	log := logger.NewLogger(*level)
	defer log.Sync()

	reader := spreadsheet.NewReader(log)
	refs, err := repository.NewFileReferenceRepository(reader, repository.ReferenceFiles{
		Airports: *airports,
		Aircraft: *aircraft,
		Airlines: *airlines,
	}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load reference tables: %v\n", err)
		return exitFailed
	}
	if *airports == "" {
		fmt.Fprintln(os.Stderr, "warning: no -airports table, every UTC offset will be +0000")
	}

	var store domainrepo.ScheduleStore
	if *outDir != "-" {
		if store, err = repository.NewFileScheduleStore(*outDir, log); err != nil {
			fmt.Fprintf(os.Stderr, "output directory: %v\n", err)
			return exitFailed
		}
	}

	sourceRouter := router.NewSourceRouter(log)
	sourceRouter.Register(usecase.NewFlightHandlerV1Adapter(utils.NewScheduleParser(*carrier, log)))
	sourceRouter.Register(usecase.NewFlightHandlerV2Adapter(utils.NewScheduleParserV2(log)))

	var airlineRepo domainrepo.AirlineRepository
	if *airlines != "" {
		airlineRepo = refs
	}

	converter := usecase.NewScheduleConverter(
		reader, sourceRouter, refs, refs, airlineRepo, nil, store, nil,
		usecase.ConverterOptions{
			Producer:            *producer,
			SortByFlight:        *sortFlag,
			ValidateConnections: *validate,
		},
		log,
	)

	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		return exitFailed
	}
	defer f.Close()

	result, err := converter.Convert(context.Background(), usecase.ConvertRequest{
		Name:        filepath.Base(*in),
		Data:        f,
		Layout:      *layout,
		Carriers:    splitList(*carriers),
		PeriodStart: start,
		PeriodEnd:   end,
		Source:      usecase.SourceCLI,
		Store:       store != nil,
	})
	if result != nil {
		printSummary(os.Stderr, result)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "conversion failed: %v\n", err)
		if errors.Is(err, usecase.ErrUnknownLayout) {
			return exitUsage
		}
		return exitFailed
	}

	if store == nil {
		if _, err := result.File.WriteTo(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "write output: %v\n", err)
			return exitFailed
		}
	} else {
		fmt.Fprintf(os.Stderr, "wrote %s\n", result.Path)
	}

	if !result.Report.Conformant {
		return exitNonConformant
	}
	return exitOK
}

func printSummary(w *os.File, result *usecase.ConvertResult) {
	s := result.Summary
	fmt.Fprintf(w, "layout:               %s\n", s.Layout)
	fmt.Fprintf(w, "rows read:            %d\n", s.RowsRead)
	fmt.Fprintf(w, "rows processed:       %d\n", s.RowsProcessed)
	fmt.Fprintf(w, "rows skipped:         %d\n", s.RowsSkipped)
	fmt.Fprintf(w, "onward links:         %d\n", s.Links)
	fmt.Fprintf(w, "connections resolved: %d\n", s.ConnectionsResolved)
	fmt.Fprintf(w, "self references:      %d\n", s.SelfReferences)
	for _, sk := range s.Skipped {
		fmt.Fprintf(w, "  skipped %s\n", sk.Error())
	}
	for _, warning := range s.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	if c := result.Connections; c != nil {
		fmt.Fprintf(w, "valid connections:    %d/%d (bidirectional pairs %d, %.1f%%)\n",
			c.Valid, c.Links, c.BidirectionalPairs, c.BidirectionalRate*100)
	}
	if result.File == nil {
		return
	}
	r := result.Report
	fmt.Fprintf(w, "file:                 %s (%d flights, %d lines)\n", result.File.FileName(), result.File.FlightCount, r.Lines)
	fmt.Fprintf(w, "conformant:           %t\n", r.Conformant)
	for _, issue := range r.Issues {
		fmt.Fprintf(w, "  issue: %s\n", issue)
	}
}

func flagDate(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	d, ok := ssim.ParseDate(ssim.Text(v))
	if !ok {
		return time.Time{}, fmt.Errorf("-%s: unparseable date %q", name, v)
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
