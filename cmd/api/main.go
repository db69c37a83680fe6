// Package main provides the entrypoint for the train reroute API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/trainreroute/trainreroute/internal/api"
	"github.com/trainreroute/trainreroute/internal/api/middleware"
	"github.com/trainreroute/trainreroute/internal/reroute"
	"github.com/trainreroute/trainreroute/internal/resilience"
	"github.com/trainreroute/trainreroute/internal/telemetry"
	"github.com/trainreroute/trainreroute/internal/train"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "trainreroute-api"

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting train reroute API")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	location := time.Local
	if tz := os.Getenv("APP_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatal().Err(err).Str("timezone", tz).Msg("invalid APP_TIMEZONE")
		}
		location = loc
	}

	ctx := context.Background()

	telemetryCfg := telemetry.ConfigFromEnv(serviceName, Version)
	tp, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	if telemetryCfg.Enabled {
		log.Info().
			Str("otlp_endpoint", telemetryCfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	store, closeStore, err := train.OpenStore(ctx, train.StoreConfigFromEnv(log))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open train store")
	}
	defer closeStore()

	registry := resilience.NewRegistry()
	trains := train.NewResilientRepository(store, train.ResilientRepositoryConfig{
		Registry: registry,
		Logger:   log,
	})

	rerouteService, err := reroute.NewService(reroute.ServiceConfig{
		Repository: trains,
		Location:   location,
		Logger:     log,
		Tracer:     tp.Tracer,
		Meter:      tp.Meter,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create reroute service")
	}

	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		RerouteService:  rerouteService,
		TrainRepository: trains,
		Registry:        registry,
		AllowedOrigins:  splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		RequireTLS:      os.Getenv("REQUIRE_TLS") == "true",
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("timezone", location.String()).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
