// server/cmd/api/main.go
package main

import (
	"context"
	"os"
	"time"

	"fsic-records-api-server/config"
	"fsic-records-api-server/internal/api/routes"
	"fsic-records-api-server/internal/auth"
	"fsic-records-api-server/internal/certificate"
	"fsic-records-api-server/internal/database"
	"fsic-records-api-server/internal/logger"
	"fsic-records-api-server/internal/repository"
	"fsic-records-api-server/internal/s3"
	"fsic-records-api-server/internal/service"
	"fsic-records-api-server/internal/socket"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Load .env (optional) and configuration
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	zl := logger.New(cfg.Server.Env, cfg.Log.Level)
	ctx := context.Background()

	// 2. MongoDB
	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}()
	db := client.Database(cfg.Mongo.DBName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		zl.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	// 3. Services
	clock := service.ClockIn(cfg.Location())
	codec, err := auth.NewSessionCodec(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to create session codec")
	}
	userRepo := repository.NewUserRepository(db)
	users := service.NewUserService(userRepo, clock, zl)
	authService := service.NewAuthService(userRepo, codec, zl)

	hub := socket.NewHub(zl)
	establishments := service.NewEstablishmentService(repository.NewEstablishmentRepository(db), clock, zl).
		WithNotifier(hub)

	var store service.CertificateStore
	if cfg.S3.Enabled() {
		uploader, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			zl.Fatal().Err(err).Msg("failed to create S3 uploader")
		}
		store = uploader
		zl.Info().Str("bucket", cfg.S3.Bucket).Msg("certificate uploads enabled")
	}
	establishments.WithCertificates(certificate.NewGenerator(cfg.App.OfficeName), store)

	// 4. First admin account
	if err := database.SeedAdmin(ctx, users, cfg.Seed, zl); err != nil {
		zl.Fatal().Err(err).Msg("failed to seed admin")
	}

	router := routes.SetupRouter(routes.Dependencies{
		Cfg:            &cfg,
		Auth:           authService,
		Establishments: establishments,
		Users:          users,
		Hub:            hub,
		Log:            zl,
	})

	// 5. Start server
	zl.Info().Str("port", cfg.Server.Port).Str("timezone", cfg.Location().String()).Msg("starting API server")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		zl.Fatal().Err(err).Msg("failed to run server")
	}
}
