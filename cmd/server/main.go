// Package main initializes and starts the lead intake server, setting up
// configuration, logging, the database connection, repositories, services,
// sessions and HTTP handlers.
package main

import (
	"cmp"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/zuschusspiloten/leadserver/internal/config"
	"github.com/zuschusspiloten/leadserver/internal/db"
	"github.com/zuschusspiloten/leadserver/internal/logger"
	"github.com/zuschusspiloten/leadserver/internal/repository"
	"github.com/zuschusspiloten/leadserver/internal/server/handler/http"
	"github.com/zuschusspiloten/leadserver/internal/service"
	"github.com/zuschusspiloten/leadserver/internal/session"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	level := "Info"
	if options.Debug {
		level = "Debug"
	}
	if err := log.Init(level); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Initialize repositories for leads, operators and rate limiting.
	leadRepo := repository.NewPostgresLeadRepository(postgresDB)
	adminRepo := repository.NewPostgresAdminRepository(postgresDB)
	rateLimitRepo := repository.NewPostgresRateLimitRepository(postgresDB)

	// Initialize business-logic services.
	leadService := service.NewLeadService(leadRepo)
	abuseService := service.NewAbuseService(rateLimitRepo, options.RateLimitMax, options.RateLimitWindow, zapLogger)
	authService := service.NewAuthService(adminRepo, zapLogger)

	// Server-side admin sessions.
	sessionLifetime := time.Duration(options.SessionLifetime) * time.Second
	sessions := session.NewManager(sessionLifetime)

	// Create HTTP handlers for the public API and the admin area.
	submitHandler := &http.SubmitHandler{
		Leads: leadService,
		Abuse: abuseService,
		Debug: options.Debug,
	}
	adminHandler := &http.AdminHandler{
		Auth:           authService,
		Leads:          leadService,
		Sessions:       sessions,
		CookieName:     options.SessionName,
		CookieLifetime: sessionLifetime,
		Secure:         !options.Debug,
		Debug:          options.Debug,
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(submitHandler, adminHandler, sessions, options.SessionName, zapLogger)

	// Create and start the HTTP server. TLS is terminated upstream.
	server := &nethttp.Server{
		Addr:         options.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
