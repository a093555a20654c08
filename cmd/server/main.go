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

	"github.com/gridironlink/backend/internal/api"
	"github.com/gridironlink/backend/internal/config"
	"github.com/gridironlink/backend/internal/database"
	"github.com/gridironlink/backend/internal/game"
	"github.com/gridironlink/backend/internal/graph"
	"github.com/gridironlink/backend/internal/migrations"
	"github.com/gridironlink/backend/internal/redis"
	"github.com/gridironlink/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// Load the connection graph snapshot before accepting any client
	store, err := graph.LoadStore(context.Background(), db)
	if err != nil {
		log.Fatalf("Failed to load connection graph: %v", err)
	}

	finder := graph.NewPathfinder(store, cfg.MaxSearchDepth)
	picker := game.NewPicker(store, finder, cfg.EndpointPickAttempts, time.Now().UnixNano())
	stats := game.NewStatsWriter(db, rdb)

	hub := ws.NewHub()
	go hub.Run()

	engine := game.NewEngine(cfg, store, finder, picker, stats, hub)
	matchmaker := game.NewMatchmaker(engine, picker, hub)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, db, hub, engine, matchmaker, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting GridironLink server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// On shutdown every live session gets a terminal frame before the
	// listener stops.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	matchmaker.Shutdown()
	engine.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
