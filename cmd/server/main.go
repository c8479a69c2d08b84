package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sdko-org/lawchat-api/internal/audit"
	"github.com/sdko-org/lawchat-api/internal/config"
	"github.com/sdko-org/lawchat-api/internal/database"
	"github.com/sdko-org/lawchat-api/internal/dataset"
	"github.com/sdko-org/lawchat-api/internal/gemini"
	"github.com/sdko-org/lawchat-api/internal/handlers"
	"github.com/sdko-org/lawchat-api/internal/ratelimit"
	"github.com/sdko-org/lawchat-api/internal/resolver"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	// A half-loaded dataset means silently wrong answers, so any load
	// failure refuses to come up.
	questions, err := dataset.Load(logger, cfg.DatasetPath)
	if err != nil {
		logger.WithError(err).Fatal("Dataset load failed")
	}

	db, err := database.NewPostgresDB(logger, database.PostgresConfig{
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		DBName:   cfg.PostgresDatabase,
		SSLMode:  cfg.PostgresSSLMode,
	})
	if err != nil {
		logger.WithError(err).Fatal("Database setup failed")
	}

	aiClient := gemini.NewClient(logger, cfg)
	res := resolver.New(logger, aiClient, questions, cfg.AITimeout)
	auditLog := audit.NewLogger(logger, db)
	limiter := ratelimit.New(cfg.RateLimit, cfg.RateLimitWindow)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go limiter.Start(sweepCtx, logger)

	handler := handlers.NewHandler(logger, cfg, res, auditLog, db)

	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware(logger))
	handlers.RegisterRoutes(r, handler, limiter)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      corsMiddleware(cfg)(r),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint

		gracefulShutdown(logger, server, auditLog)
	}()

	logger.WithFields(logrus.Fields{
		"addr":        server.Addr,
		"environment": cfg.Environment,
		"dataset":     questions.Size(),
	}).Info("Starting server")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Fatal("Server failed")
	}

	// Shutdown closed the listener; wait for it to finish draining
	// in-flight requests and submitted audit writes before exiting.
	<-shutdownDone
}

// gracefulShutdown stops the server, then waits for audit writes that
// requests submitted before the listener closed.
func gracefulShutdown(logger *logrus.Logger, server *http.Server, auditLog *audit.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server shutdown error")
	}
	if err := auditLog.Drain(ctx); err != nil {
		logger.WithError(err).Warn("Audit log drain timed out")
	}
}

// corsMiddleware allows everything in development and the configured
// origin list elsewhere. No credentials: the API carries none, and a
// wildcard origin with credentials is rejected by browsers anyway.
func corsMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(allowedOrigins(cfg)),
		gorillahandlers.AllowedMethods([]string{"GET", "POST"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type"}),
	)
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.Environment == "development" {
		return []string{"*"}
	}
	return cfg.AllowedOrigins
}
