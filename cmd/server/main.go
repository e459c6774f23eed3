package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vip-manifest-service/internal/infrastructure/config"
	"vip-manifest-service/internal/infrastructure/oauth"
	"vip-manifest-service/internal/infrastructure/persistence"
	"vip-manifest-service/internal/infrastructure/router"
	gmailService "vip-manifest-service/internal/interface/gmail"
	registryRepo "vip-manifest-service/internal/interface/repository"
	"vip-manifest-service/internal/usecase"
	"vip-manifest-service/pkg/logger"
	"vip-manifest-service/pkg/manifest"
	"vip-manifest-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type reconcileRequest struct {
	Manifest    string `json:"manifest"`
	FlightDate  string `json:"flightDate"`
	AirportCode string `json:"airportCode"`
}

type previewRequest struct {
	Manifest string `json:"manifest"`
}

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting VIP Manifest Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

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

	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up repositories
	airportRepository := registryRepo.NewGormAirportRepository(gormDB)
	passengerRepository := registryRepo.NewMongoPassengerRepository(db)
	flightRepository := registryRepo.NewMongoFlightRepository(db)
	manifestRepository := registryRepo.NewMongoManifestRepository(db)
	notifier := registryRepo.NewWebhookNotifierRepository(cfg.OperatorWebhookURL, cfg.OperatorWebhookToken, log)

	// Set up the reconciliation pipeline
	m := metrics.NewMetrics("vipmanifest")
	parser := manifest.NewParser(log)
	reconciler := usecase.NewReconciler(passengerRepository, flightRepository, parser, m, log)
	subjectRouter := router.NewSubjectRouter(log)
	processor := usecase.NewManifestProcessor(
		reconciler,
		manifestRepository,
		airportRepository,
		notifier,
		subjectRouter,
		m,
		log,
		cfg.DefaultAirportCode,
		cfg.StaleProcessingAge,
	)

	// Set up mailbox polling when credentials are configured
	if cfg.GmailClientID != "" {
		gmailOAuth := oauth.NewGmailOAuth(
			cfg.GmailClientID,
			cfg.GmailClientSecret,
			cfg.GmailRefreshToken,
			log,
		)
		tokenSource := gmailOAuth.GetTokenSource(ctx)

		mailbox, err := gmailService.NewService(ctx, tokenSource, manifestRepository, log, cfg.GmailPollInterval)
		if err != nil {
			log.Fatal("Failed to create Gmail service", "error", err)
		}

		go mailbox.StartPolling(ctx)
	} else {
		log.Warn("Gmail credentials not configured, mailbox polling disabled")
	}

	// Drain staged manifests on a fixed cadence
	go func() {
		processTicker := time.NewTicker(cfg.ProcessInterval)
		defer processTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Manifest processor stopped")
				return
			case <-processTicker.C:
				if err := processor.ProcessPending(ctx); err != nil {
					log.Error("Error processing manifests", "error", err)
				}
			}
		}
	}()

	// Set up HTTP server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	mux.HandleFunc("/api/v1/manifests/preview", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req previewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(parser.Parse(req.Manifest))
	})

	mux.HandleFunc("/api/v1/manifests/reconcile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req reconcileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		airportCode := req.AirportCode
		if airportCode == "" {
			airportCode = cfg.DefaultAirportCode
		}
		if airport, err := airportRepository.GetByCode(r.Context(), airportCode); err != nil {
			log.Warn("Airport lookup failed, using code as-is", "code", airportCode, "error", err)
		} else {
			airportCode = airport.Code
		}

		flightDate := time.Now().UTC().Truncate(24 * time.Hour)
		if req.FlightDate != "" {
			parsed, err := time.Parse("2006-01-02", req.FlightDate)
			if err != nil {
				http.Error(w, "invalid flightDate, expected YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			flightDate = parsed
		}

		start := time.Now()
		result, parsedManifest := reconciler.ReconcileManifest(r.Context(), req.Manifest, flightDate, airportCode)

		m.ManifestsProcessed.Inc()
		m.PassengersCreated.Add(float64(result.Created))
		m.PassengersFound.Add(float64(result.Found))
		m.DuplicatesDetected.Add(float64(len(result.Duplicates)))
		m.ParseErrors.Add(float64(len(parsedManifest.Errors)))
		m.ReconcileTime.Observe(time.Since(start).Seconds())

		if err := notifier.SendSummary(r.Context(), airportCode, result); err != nil {
			log.Error("Failed to notify operators", "error", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result":      result,
			"parseErrors": parsedManifest.Errors,
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
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

	log.Info("Service stopped")
}
