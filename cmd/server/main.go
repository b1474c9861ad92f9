package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ssim-converter-service/internal/infrastructure/config"
	"ssim-converter-service/internal/infrastructure/oauth"
	"ssim-converter-service/internal/infrastructure/persistence"
	"ssim-converter-service/internal/infrastructure/router"
	"ssim-converter-service/internal/interface/api"
	"ssim-converter-service/internal/interface/gmail"
	"ssim-converter-service/internal/interface/repository"
	"ssim-converter-service/internal/interface/spreadsheet"
	"ssim-converter-service/internal/usecase"
	"ssim-converter-service/pkg/logger"
	"ssim-converter-service/pkg/metrics"
	"ssim-converter-service/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting SSIM Converter Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgresDB(cfg.PostgresURI)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Reference data repositories
	airlineRepo := repository.NewGormAirlineRepository(gormDB)
	timezoneRepo := repository.NewGormTimezoneRepository(gormDB)
	aircraftRepo := repository.NewGormAircraftRepository(gormDB)

	// Set up repositories
	emailRepo := repository.NewMongoEmailRepository(db, log)
	runRepo := repository.NewMongoConversionRunRepository(db, log)
	store, err := repository.NewFileScheduleStore(cfg.OutputDir, log)
	if err != nil {
		log.Fatal("Failed to create output directory", "dir", cfg.OutputDir, "error", err)
	}

	m := metrics.NewMetrics("ssim_converter", prometheus.DefaultRegisterer)

	// Source layouts
	sourceRouter := router.NewSourceRouter(log)
	sourceRouter.Register(usecase.NewFlightHandlerV1Adapter(utils.NewScheduleParser(cfg.DefaultCarrier, log)))
	sourceRouter.Register(usecase.NewFlightHandlerV2Adapter(utils.NewScheduleParserV2(log)))

	converter := usecase.NewScheduleConverter(
		spreadsheet.NewReader(log),
		sourceRouter,
		timezoneRepo,
		aircraftRepo,
		airlineRepo,
		runRepo,
		store,
		m,
		usecase.ConverterOptions{
			Producer:            cfg.ProducerName,
			SortByFlight:        cfg.SortByFlight,
			ValidateConnections: cfg.ValidateConnections,
		},
		log,
	)
	orchestrator := usecase.NewEmailOrchestrator(emailRepo, converter, cfg.Carriers, cfg.StaleProcessing, m, log)

	if cfg.GmailEnabled {
		gmailOAuth := oauth.NewGmailOAuth(
			cfg.GmailClientID,
			cfg.GmailClientSecret,
			cfg.GmailRefreshToken,
			log,
		)
		if err := gmailOAuth.Validate(); err != nil {
			log.Fatal("Gmail polling enabled without credentials", "error", err)
		}
		tokenSource := gmailOAuth.GetTokenSource(ctx)

		gmailService, err := gmail.NewGmailService(ctx, tokenSource, emailRepo, orchestrator, cfg.GmailSubjectKeywords, log, cfg.GmailPollInterval)
		if err != nil {
			log.Fatal("Failed to create Gmail service", "error", err)
		}

		// Start Gmail polling in a goroutine
		go gmailService.StartPolling(ctx)
	} else {
		log.Info("Gmail polling disabled")
	}

	// Retry emails left pending or interrupted
	go func() {
		processTicker := time.NewTicker(cfg.ProcessInterval)
		defer processTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Email processor stopped")
				return
			case <-processTicker.C:
				log.Debug("Processing pending emails")
				if err := orchestrator.ProcessPendingEmails(ctx); err != nil {
					log.Error("Error processing emails", "error", err)
				}
			}
		}
	}()

	apiRouter := api.NewRouter(converter, runRepo, promhttp.Handler(), cfg.WriteTimeout, log)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      apiRouter.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("SSIM Converter Service stopped")
}
