package main

import (
	"alcyxob/sets-tracker/internal/api"
	"alcyxob/sets-tracker/internal/config"
	"alcyxob/sets-tracker/internal/repository"
	"alcyxob/sets-tracker/internal/repository/mongo"
	"alcyxob/sets-tracker/internal/repository/postgres"
	"alcyxob/sets-tracker/internal/service"
	"alcyxob/sets-tracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// openSetRepository connects the configured store. The returned close func is
// never nil.
func openSetRepository(cfg config.DatabaseConfig) (repository.SetRepository, func(), error) {
	noop := func() {}
	if cfg.URI == "" {
		return nil, noop, errors.New("database.uri is empty")
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.ConnectDB(cfg.URI)
		if err != nil {
			return nil, noop, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			// Drift handling copes with an older table; keep serving.
			log.Printf("WARN: Could not ensure sets schema: %v", err)
		}
		return postgres.NewPostgresSetRepository(db), func() {
			log.Println("Closing PostgreSQL pool...")
			if err := db.Close(); err != nil {
				log.Printf("ERROR: Failed to close PostgreSQL pool: %v", err)
			}
		}, nil

	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, noop, err
		}
		appDB := client.Database(cfg.Name)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			mongo.EnsureSetIndexes(ctx, appDB.Collection("sets"))
			log.Println("Index creation process completed.")
		}()
		return mongo.NewMongoSetRepository(appDB), func() {
			log.Println("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(client); err != nil {
				log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
			}
		}, nil
	}
	return nil, noop, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// @title Sets Tracker API
// @version 1.0
// @description Logs workout sets and keeps devices in sync.
// @host localhost:8080
// @BasePath /api
func main() {
	log.Println("Starting Sets Tracker Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Printf("Configuration loaded (driver=%s, tenant=%s).", cfg.Database.Driver, cfg.Server.Tenant)

	// --- Database Connection ---
	// Without a store the API still starts; /api/sets answers 500 with a hint.
	setRepo, closeRepo, err := openSetRepository(cfg.Database)
	if err != nil {
		log.Printf("ERROR: Set store unavailable, serving in degraded mode: %v", err)
		setRepo = nil
	} else {
		log.Println("Database connection established.")
	}
	defer closeRepo()

	// --- Initialize Storage ---
	var fileStorage storage.ExportStorage
	if cfg.S3.Enabled() {
		log.Println("Initializing export storage...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3)
		cancel()
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
	} else {
		log.Println("WARN: s3.bucket_name not set; export uploads are disabled.")
	}

	// --- Initialize Services ---
	log.Println("Initializing services...")
	setService := service.NewSetService(setRepo, cfg.Server.Tenant)
	exportService := service.NewExportService(setService, fileStorage, cfg.Server.Tenant, cfg.S3.PresignExpiry)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, setService, exportService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
