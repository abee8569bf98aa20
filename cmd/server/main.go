package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/coach-engine/internal/api"
	"alcyxob/coach-engine/internal/config"
	"alcyxob/coach-engine/internal/repository/mongo"
	"alcyxob/coach-engine/internal/service"
	"alcyxob/coach-engine/internal/storage"
	"alcyxob/coach-engine/internal/vdot"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Coach Engine Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureAthleteIndexes(ctx, appDB.Collection("athletes"))
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("plans"))
		mongo.EnsureMetricsIndexes(ctx, appDB.Collection("metrics"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing archive store...")
	archiveStore, err := storage.NewS3ArchiveStore(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 archive store: %v", err)
	}

	// --- Load VDOT Table ---
	vdotTable := loadVDOTTable(archiveStore, cfg.VDOT)

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	athleteRepo := mongo.NewMongoAthleteRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	metricsRepo := mongo.NewMongoMetricsRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(athleteRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	trainingService := service.NewTrainingService()
	evolutionService := service.NewEvolutionService()
	matcherService := service.NewMatcherService()
	vdotDetection := service.NewVDOTDetectionService(vdotTable)
	ftpDetection := service.NewFTPDetectionService()
	planService := service.NewPlanService(planRepo, metricsRepo, archiveStore, evolutionService, trainingService)
	feedbackService := service.NewFeedbackService(athleteRepo, planRepo, metricsRepo, trainingService, matcherService, vdotDetection, ftpDetection)
	metricsService := service.NewMetricsService(metricsRepo)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, planService, feedbackService, metricsService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
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
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// loadVDOTTable fetches the reference CSV from S3, falling back to the
// local file. A nil table is tolerated; lookups then use the analytic
// formula.
func loadVDOTTable(store storage.ArchiveStore, cfg config.VDOTConfig) *vdot.Table {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.ObjectKey != "" {
		body, err := store.FetchObject(ctx, cfg.ObjectKey)
		if err == nil {
			defer body.Close()
			table, err := vdot.Load(body)
			if err == nil {
				log.Printf("INFO: VDOT table loaded from S3 (%d rows)", table.Len())
				return table
			}
			log.Printf("WARN: Could not parse VDOT table from S3: %v", err)
		} else if !errors.Is(err, storage.ErrObjectNotFound) {
			log.Printf("WARN: Could not fetch VDOT table from S3: %v", err)
		}
	}

	if cfg.LocalPath != "" {
		f, err := os.Open(cfg.LocalPath)
		if err == nil {
			defer f.Close()
			table, err := vdot.Load(f)
			if err == nil {
				log.Printf("INFO: VDOT table loaded from %s (%d rows)", cfg.LocalPath, table.Len())
				return table
			}
			log.Printf("WARN: Could not parse VDOT table from %s: %v", cfg.LocalPath, err)
		}
	}

	log.Printf("WARN: No VDOT table available, using analytic formula only")
	return nil
}
