// Command api runs the Seva Kendra portal HTTP API.
//
// @title                       Seva Kendra Portal API
// @version                     1.0
// @description                 Citizen applications for government services and their review by service providers.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/sevakendra/portal-api/internal/api"
	"github.com/sevakendra/portal-api/internal/api/handler"
	"github.com/sevakendra/portal-api/internal/core/domain"
	"github.com/sevakendra/portal-api/internal/core/ports"
	"github.com/sevakendra/portal-api/internal/core/service"
	mongodb "github.com/sevakendra/portal-api/internal/infrastructure/db/mongo"
	redisdb "github.com/sevakendra/portal-api/internal/infrastructure/db/redis"
	"github.com/sevakendra/portal-api/internal/infrastructure/notify"
	"github.com/sevakendra/portal-api/internal/infrastructure/queue"
	s3store "github.com/sevakendra/portal-api/internal/infrastructure/storage/s3"
	"github.com/sevakendra/portal-api/internal/pkg/config"
	"github.com/sevakendra/portal-api/internal/pkg/nepdate"
	"github.com/sevakendra/portal-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// notifier delivers both OTP codes and status notifications.
type notifier interface {
	ports.OTPSender
	ports.StatusNotifier
	Close() error
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.ForEnv(cfg.Env, cfg.LogLevel, "portal-api"))

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "portal-api",
	})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		ClientName: "portal-api",
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	s3Cfg := s3store.Config{
		Bucket:        cfg.S3.Bucket,
		Region:        cfg.S3.Region,
		Endpoint:      cfg.S3.Endpoint,
		PublicBaseURL: cfg.S3.PublicBaseURL,
		UsePathStyle:  cfg.S3.UsePathStyle,
	}
	s3Client, err := s3store.NewClient(ctx, s3Cfg)
	if err != nil {
		return err
	}
	documents := s3store.NewDocumentStore(s3Client, s3Cfg)

	users := mongodb.NewUserRepository(db)
	profiles := mongodb.NewProfileRepository(db)
	applications := mongodb.NewApplicationRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, applications); err != nil {
		return err
	}

	// --- Notifications ---
	var notifications notifier = notify.NewLogNotifier(log)
	if cfg.Notify.Driver == "kafka" {
		notifications = notify.NewKafkaNotifier(notify.NewKafkaWriter(notify.KafkaConfig{
			Brokers: cfg.Notify.KafkaBrokers,
			Topic:   cfg.Notify.KafkaTopic,
		}))
	}
	defer func() { _ = notifications.Close() }()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, notifications, log)
	dispatcher.Start(workerCtx)

	// --- Services ---
	authEvents := redisdb.NewAuthEventBus(rdb, log)
	identity := service.NewIdentityService(service.IdentityDeps{
		Users:       users,
		Profiles:    profiles,
		Roles:       service.NewRoleResolver(profiles, log),
		OTPs:        redisdb.NewOTPStore(rdb),
		Revocations: redisdb.NewTokenRevocations(rdb),
		Events:      authEvents,
		Sender:      notifications,
	}, service.IdentityConfig{
		JWTSecret:      cfg.Auth.JWTSecret,
		TokenTTL:       cfg.Auth.TokenTTL,
		OTPTTL:         cfg.Auth.OTPTTL,
		OTPMaxAttempts: cfg.Auth.OTPMaxAttempts,
		AppURL:         cfg.AppURL,
	}, log)

	workflow := service.NewApplicationService(
		applications,
		documents,
		redisdb.NewSubmissionLock(rdb),
		nepdate.Converter{},
		dispatcher,
		service.ApplicationOptions{
			MaxUploadBytes: cfg.Uploads.MaxUploadBytes,
			SubmitLockTTL:  cfg.Uploads.SubmitLockTTL,
		},
		log,
	)

	seedProvider(ctx, identity, cfg.Seed, log)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Identity:     identity,
		Applications: workflow,
		AuthEvents:   authEvents,
		Checks: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error {
				return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
			},
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			"s3":    documents.Ping,
		},
		MaxUploadBytes: cfg.Uploads.MaxUploadBytes,
		Log:            log,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			stopWorkers()
			dispatcher.Wait()
			return err
		}
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	stopWorkers()
	dispatcher.Wait()
	return nil
}

// seedProvider creates the configured service provider unless it exists.
func seedProvider(ctx context.Context, identity ports.IdentityService, seed config.SeedConfig, log zerolog.Logger) {
	if seed.Email == "" {
		return
	}
	_, err := identity.CreateServiceProvider(ctx, seed.Email, seed.Password, seed.Name)
	switch {
	case err == nil:
		log.Info().Str("email", seed.Email).Msg("seeded service provider")
	case errors.Is(err, domain.ErrUserExists):
		log.Debug().Str("email", seed.Email).Msg("service provider already seeded")
	default:
		log.Error().Err(err).Str("email", seed.Email).Msg("failed to seed service provider")
	}
}
