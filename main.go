// main.go
package main

import (
	"context"
	"log"

	"marketplace-api/cmd"
	"marketplace-api/internal/data/migrations"
	"marketplace-api/internal/data/repository"
	"marketplace-api/internal/wire"
	"marketplace-api/pkg/database"
	"marketplace-api/pkg/mailer"
	"marketplace-api/pkg/storage"
	"marketplace-api/pkg/token"
	"marketplace-api/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.App.MigrateOnStart {
		sqlDB := db.StdDB()
		if err := migrations.Migrate(sqlDB); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		sqlDB.Close()
		logger.Info("Migrations applied")
	}

	store, err := storage.New(ctx, storage.Config{
		Type:      config.Storage.Type,
		BasePath:  config.Storage.UploadDir,
		BaseURL:   config.Storage.UploadBaseURL,
		Bucket:    config.Storage.S3Bucket,
		Region:    config.Storage.S3Region,
		Endpoint:  config.Storage.S3Endpoint,
		AccessKey: config.Storage.S3AccessKey,
		SecretKey: config.Storage.S3SecretKey,
		PublicURL: config.Storage.S3PublicURL,
	})
	if err != nil {
		logger.Fatal("Failed to init storage", zap.Error(err))
	}

	tokens, err := token.NewManager(config.JWT.Secret, config.JWT.Issuer, config.JWT.TokenPrefix, config.JWT.TTL())
	if err != nil {
		logger.Fatal("Failed to init token manager", zap.Error(err))
	}

	mail, err := mailer.New(mailer.Config{
		Host:             config.Email.Host,
		Port:             config.Email.Port,
		User:             config.Email.User,
		Password:         config.Email.Password,
		From:             config.Email.From,
		AllowLogFallback: config.App.Debug,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to init mailer", zap.Error(err))
	}

	// Wire all dependencies
	app := wire.Wiring(wire.Deps{
		Repo:   repository.NewRepository(db, logger),
		Tokens: tokens,
		Mailer: mail,
		Store:  store,
	}, config, logger)

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}
