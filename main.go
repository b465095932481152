package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"cims/ai"
	"cims/config"
	"cims/realtime"
	"cims/repository"
	"cims/routes"
	"cims/schema"
	"cims/service"
	"cims/storage"
	"cims/worker"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info().Msg(".env file not found, using environment variables")
	}

	cfg := config.LoadConfig()

	// Database connection (UTC for consistent timestamps)
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
	)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database connection")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	log.Info().Msg("database connection established")

	if err := schema.InitializeDatabase(db); err != nil {
		log.Fatal().Err(err).Msg("schema initialization failed")
	}

	ctx := context.Background()

	// Object storage for complaint and solution images
	var uploader storage.Uploader = storage.NoopUploader{}
	if cfg.Storage.Endpoint != "" {
		minioUploader, err := storage.NewMinioUploader(ctx, cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to object storage")
		}
		uploader = minioUploader
		log.Info().Str("bucket", cfg.Storage.Bucket).Msg("object storage connected")
	} else {
		log.Warn().Msg("MINIO_ENDPOINT not set, uploaded images are discarded")
	}

	// Realtime change feed
	var feed realtime.Feed = realtime.NoopFeed{}
	if cfg.Redis.Addr != "" {
		redisFeed, err := realtime.NewRedisFeed(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisFeed.Close()
		feed = redisFeed
		log.Info().Str("addr", cfg.Redis.Addr).Msg("change feed connected")
	}

	// AI classifier; without an API key every redirect decision uses the
	// keyword fallback and image analysis is disabled
	var classifier ai.Classifier
	if cfg.AI.APIKey != "" {
		classifier = ai.NewAnthropicClassifier(
			cfg.AI.APIKey,
			cfg.AI.Model,
			time.Duration(cfg.AI.TimeoutSeconds)*time.Second,
		)
		log.Info().Str("model", cfg.AI.Model).Msg("AI classifier enabled")
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set, using keyword categorizer only")
	}

	// Initialize repositories
	complaintRepo := repository.NewComplaintRepository(db)
	redirectRepo := repository.NewRedirectRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	// Initialize services
	issueService := service.NewIssueService(complaintRepo, notificationRepo, uploader, classifier, feed)
	complaintService := service.NewComplaintService(complaintRepo, redirectRepo, notificationRepo, feed)
	redirectService := service.NewRedirectService(complaintRepo, classifier, feed)
	reportService := service.NewReportService(complaintRepo)
	profileService := service.NewProfileService(profileRepo, cfg.Auth.JWTSecret, cfg.Auth.ExpiresInHours)

	// Change feed consumer
	feedWorker := worker.NewFeedWorker(feed)
	feedWorker.Start()
	defer feedWorker.Stop()

	// Setup routes
	router := routes.SetupRoutes(
		issueService,
		complaintService,
		redirectService,
		reportService,
		profileService,
		uploader,
		cfg.Auth.JWTSecret,
		cfg.Auth.ExpiresInHours,
	)

	// Add CORS middleware
	corsHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server starting")
	if err := http.ListenAndServe(addr, corsHandler(router)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
