package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-insights/internal/api/handlers"
	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/app"
	"github.com/dvloznov/finance-insights/internal/config"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/jobs/inmemory"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/service"
	"github.com/gorilla/mux"
)

func main() {
	// Parse command-line flags
	var (
		envFile = flag.String("env-file", ".env", "Optional env file loaded before the process environment")
		workers = flag.Int("workers", 4, "Number of insight job workers")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.NewWithLevel(cfg.LogLevel)

	log.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Dur("timeout", cfg.Timeout).
		Bool("coalesce", cfg.Coalesce).
		Msg("Insight pipeline configured")

	ctx := context.Background()

	// Warehouse features are optional.
	var repo infraBQ.InsightRepository
	if cfg.BigQueryEnabled() {
		bqRepo, err := infraBQ.NewRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		defer bqRepo.Close()
		repo = bqRepo
	} else {
		log.Warn().Msg("No BigQuery project configured - stored insights and insight jobs are disabled")
	}

	insights := service.NewInsightService(app.NewGenerator(cfg), repo)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, *workers, jobStore)

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()

	log.Info().Int("workers", *workers).Msg("Starting job workers")
	if err := jobQueue.Start(workerCtx, insights.HandleJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	// Create router
	router := mux.NewRouter()

	handlers.NewInsightsHandler(insights).RegisterRoutes(router)
	handlers.NewJobsHandler(jobQueue, jobStore, insights.WarehouseEnabled()).RegisterRoutes(router)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"time":      time.Now().Format(time.RFC3339),
			"provider":  cfg.Provider,
			"warehouse": insights.WarehouseEnabled(),
		})
	}).Methods(http.MethodGet)

	// Apply middleware
	handler := middleware.RequestID(
		middleware.Recovery(log)(
			middleware.Logger(log)(
				middleware.CORS(router),
			),
		),
	)

	// Create HTTP server. WriteTimeout leaves room for the remote call.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
