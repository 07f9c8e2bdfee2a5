package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ritujaab/workout-planner/internal/api"
	"github.com/ritujaab/workout-planner/internal/config"
	"github.com/ritujaab/workout-planner/internal/observability"
	"github.com/ritujaab/workout-planner/internal/repository/mongo"
	"github.com/ritujaab/workout-planner/internal/service"
	"github.com/ritujaab/workout-planner/internal/storage"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	logger := setupLogger(cfg.Log)
	logger.Info().Str("version", version).Msg("starting workout planner")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTel, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not set up tracing")
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(ctx, cfg.Database.URI, cfg.Database.ConnectTimeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not connect to MongoDB")
	}
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info().Str("database", cfg.Database.Name).Msg("database connection established")

	// Index creation runs in the background; the unique indexes back the
	// duplicate checks, so a failure is logged loudly.
	go func() {
		ixCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ixCtx, appDB); err != nil {
			logger.Error().Err(err).Msg("index creation failed")
			return
		}
		logger.Info().Msg("indexes ensured")
	}()

	// --- Storage ---
	var files storage.FileStorage
	if cfg.S3.Enabled() {
		files, err = storage.NewS3Storage(ctx, cfg.S3, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize S3 storage")
		}
	} else {
		logger.Warn().Msg("s3.bucket_name not set, week export disabled")
	}

	// --- Repositories & Services ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)

	mailer := service.LogMailer{From: cfg.App.MailFrom, Logger: logger.With().Str("component", "mailer").Logger()}
	authService := service.NewAuthService(userRepo, mailer, service.AuthConfig{
		JWTSecret:     cfg.JWT.Secret,
		JWTExpiration: cfg.JWT.Expiration,
		ResetTTL:      cfg.App.ResetTokenTTL,
		ResetBaseURL:  cfg.App.BaseURL,
	}, logger)
	workoutService := service.NewWorkoutService(workoutRepo, files, cfg.S3.PresignExpiry, logger)

	// --- HTTP ---
	gin.SetMode(cfg.Server.GinMode)
	router := api.NewRouter(&cfg, logger, authService, workoutService)

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Address).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down server")
	case err := <-serveErr:
		logger.Error().Err(err).Msg("server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("tracer shutdown failed")
	}
	if err := mongo.DisconnectDB(shutdownCtx, dbClient); err != nil {
		logger.Error().Err(err).Msg("failed to disconnect MongoDB")
	}
	logger.Info().Msg("server exited")
}

// setupLogger applies the configured level globally and returns the root
// logger. Config validation has already checked the level.
func setupLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	log.Logger = logger
	return logger
}
