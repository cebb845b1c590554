// api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"activitymonitor/api/database"
	"activitymonitor/api/handlers"
	"activitymonitor/api/ingest"
	"activitymonitor/api/middleware"
	"activitymonitor/api/store"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize PostgreSQL Database (users, default event sink) ---
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- Select the event storage backend ---
	eventStore, cleanup, err := buildEventStore(dbClient)
	if err != nil {
		log.Fatalf("Failed to initialize event storage backend: %v", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	policy := ingest.PolicyFromString(os.Getenv("BATCH_POLICY"))
	log.Printf("Batch processing policy: %s", policy)

	processor := ingest.NewProcessor(eventStore, policy)

	// --- Initialize Stores and Handlers ---
	userStore := store.NewUserStore(dbClient.DB)
	authHandlers := handlers.NewAuthHandlers(userStore)
	trackHandlers := handlers.NewTrackHandlers(processor)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Authentication Endpoints (no authentication required)
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		// Protected Routes (require a valid JWT token or the tracker API key)
		protected := api.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			protected.POST("/track", trackHandlers.TrackEvents)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Activity monitor API starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// buildEventStore picks the sink named by STORAGE_BACKEND. PostgreSQL is the
// default; "console" is an illustrative stdout sink, "clickhouse" an
// append-only alternative.
func buildEventStore(dbClient *database.DBClient) (store.EventStore, func(), error) {
	switch os.Getenv("STORAGE_BACKEND") {
	case "console":
		log.Println("Using console event storage (diagnostic only, not for production).")
		return store.NewConsoleStore(), nil, nil
	case "clickhouse":
		chClient, err := database.NewClickHouseDB()
		if err != nil {
			return nil, nil, err
		}
		return store.NewClickHouseEventStore(chClient), chClient.Close, nil
	default:
		return store.NewPostgresEventStore(dbClient.DB), nil, nil
	}
}
