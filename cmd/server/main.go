// ==============================================================================
// PORTFOLIO API MAIN - cmd/server/main.go
// ==============================================================================
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/munashechidyiwa/merchant-portfolios/internal/activity"
	"github.com/munashechidyiwa/merchant-portfolios/internal/fx"
	"github.com/munashechidyiwa/merchant-portfolios/internal/handler"
	"github.com/munashechidyiwa/merchant-portfolios/internal/ingest"
	"github.com/munashechidyiwa/merchant-portfolios/internal/middleware"
	"github.com/munashechidyiwa/merchant-portfolios/internal/report"
	"github.com/munashechidyiwa/merchant-portfolios/internal/repository/postgres"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/cache"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/config"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/logger"
	"github.com/munashechidyiwa/merchant-portfolios/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("portfolio-api")

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting Portfolio API", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	// Database connection
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Redis connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}
	redisCache := cache.Wrap(redisClient)

	// Repositories
	merchantRepo := postgres.NewMerchantRepository(db)
	terminalRepo := postgres.NewTerminalRepository(db)
	rateRepo := postgres.NewRateRepository(db)
	commRepo := postgres.NewCommunicationRepository(db)
	alertRepo := postgres.NewAlertRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)

	// Services
	defaultRate, err := decimal.NewFromString(cfg.Portfolio.DefaultZWGRate)
	if err != nil {
		log.Fatal("Invalid default exchange rate", map[string]interface{}{
			"value": cfg.Portfolio.DefaultZWGRate,
		})
	}

	fxService := fx.NewService(rateRepo, redisCache, defaultRate, log)
	reportService := report.NewService(merchantRepo, terminalRepo, fxService, alertRepo, redisCache, log, cfg.Portfolio.SnapshotTTL, cfg.Portfolio.ActivityThresholdDays)
	ingestor := ingest.NewIngestor(merchantRepo, terminalRepo, fxService, log, cfg.Upload.Timeout, cfg.Portfolio.ActivityThresholdDays)
	classifier := activity.NewClassifier(cfg.Portfolio.ActivityThresholdDays)

	// Handlers
	val := validator.New()
	merchantHandler := handler.NewMerchantHandler(merchantRepo, fxService, reportService, val, log)
	terminalHandler := handler.NewTerminalHandler(terminalRepo, reportService, classifier, val, log)
	uploadHandler := handler.NewUploadHandler(ingestor, reportService, log, cfg.Upload.MaxBytes)
	dashboardHandler := handler.NewDashboardHandler(reportService, log)
	rateHandler := handler.NewRateHandler(fxService, reportService, val, log)
	commHandler := handler.NewCommunicationHandler(commRepo, val, log)
	alertHandler := handler.NewAlertHandler(alertRepo, val, log)
	settingsHandler := handler.NewSettingsHandler(settingsRepo, val, log)
	sessionHandler := handler.NewSessionHandler(sessionRepo, val, log)

	// Setup router
	r := mux.NewRouter()

	corsOrigin := os.Getenv("CORS_ALLOWED_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "*"
	}

	// Middleware
	r.Use(middleware.CORS(corsOrigin))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.BodyLimit(cfg.Upload.MaxBytes + (1 << 20)))
	r.Use(middleware.NewRateLimiter(redisClient, 100, time.Minute).Limit)

	// Routes
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ready", readyCheck(db)).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Merchants
	api.HandleFunc("/merchants", merchantHandler.List).Methods("GET")
	api.HandleFunc("/merchants", merchantHandler.Create).Methods("POST")
	api.HandleFunc("/merchants/{id}", merchantHandler.Get).Methods("GET")
	api.HandleFunc("/merchants/{id}", merchantHandler.Update).Methods("PUT")
	api.HandleFunc("/merchants/{id}", merchantHandler.Delete).Methods("DELETE")

	// Terminals
	api.HandleFunc("/terminals", terminalHandler.List).Methods("GET")
	api.HandleFunc("/terminals", terminalHandler.Create).Methods("POST")
	api.HandleFunc("/terminals/{terminal_id}", terminalHandler.Get).Methods("GET")
	api.HandleFunc("/terminals/{id}", terminalHandler.Delete).Methods("DELETE")

	// Report uploads
	api.HandleFunc("/uploads/merchants", uploadHandler.UploadMerchants).Methods("POST")
	api.HandleFunc("/uploads/terminals", uploadHandler.UploadTerminals).Methods("POST")

	// Dashboard
	api.HandleFunc("/dashboard/summary", dashboardHandler.GetSummary).Methods("GET")
	api.HandleFunc("/dashboard/ws", dashboardHandler.WebSocketHandler)

	// Exchange rates
	api.HandleFunc("/rates/current", rateHandler.GetCurrent).Methods("GET")
	api.HandleFunc("/rates/history", rateHandler.GetHistory).Methods("GET")
	api.HandleFunc("/rates", rateHandler.SetRate).Methods("POST")

	// Communications
	api.HandleFunc("/communications", commHandler.List).Methods("GET")
	api.HandleFunc("/communications", commHandler.Create).Methods("POST")
	api.HandleFunc("/communications/{id}", commHandler.Update).Methods("PUT")
	api.HandleFunc("/communications/{id}", commHandler.Delete).Methods("DELETE")

	// Alerts
	api.HandleFunc("/alerts", alertHandler.List).Methods("GET")
	api.HandleFunc("/alerts", alertHandler.Create).Methods("POST")
	api.HandleFunc("/alerts/{id}/status", alertHandler.UpdateStatus).Methods("PATCH")
	api.HandleFunc("/alerts/{id}", alertHandler.Delete).Methods("DELETE")

	// Settings
	api.HandleFunc("/settings/alerts", settingsHandler.ListAlertSettings).Methods("GET")
	api.HandleFunc("/settings/alerts", settingsHandler.UpsertAlertSetting).Methods("PUT")
	api.HandleFunc("/settings/alerts/{id}", settingsHandler.ToggleAlertSetting).Methods("PATCH")
	api.HandleFunc("/settings/system", settingsHandler.ListSystemSettings).Methods("GET")
	api.HandleFunc("/settings/system", settingsHandler.UpsertSystemSetting).Methods("PUT")
	api.HandleFunc("/settings/system/{category}/{key}", settingsHandler.GetSystemSetting).Methods("GET")

	// Sessions
	api.HandleFunc("/sessions", sessionHandler.List).Methods("GET")
	api.HandleFunc("/sessions", sessionHandler.Create).Methods("POST")
	api.HandleFunc("/sessions/{id}/close", sessionHandler.Close).Methods("POST")

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Portfolio API started", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down portfolio API...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Portfolio API forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Portfolio API stopped gracefully", nil)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	_ = r
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"portfolio-api"}`))
}

func readyCheck(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready","reason":"database unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready","service":"portfolio-api"}`))
	}
}
