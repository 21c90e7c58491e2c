package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/playmatatu/arcade/internal/api"
	"github.com/playmatatu/arcade/internal/config"
	"github.com/playmatatu/arcade/internal/database"
	"github.com/playmatatu/arcade/internal/level"
	"github.com/playmatatu/arcade/internal/migrations"
	"github.com/playmatatu/arcade/internal/redis"
	"github.com/playmatatu/arcade/internal/session"
	"github.com/playmatatu/arcade/internal/ws"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database; an empty DATABASE_URL runs on built-in levels only
	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		conn, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer conn.Close()
		db = conn

		if cfg.MigrateOnStart {
			log.Println("↗ Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, migrations.DefaultDir); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
	} else {
		log.Println("[DB] DATABASE_URL not set; serving built-in levels only")
	}

	// Initialize Redis; without it frames are delivered in-process
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		rdb = client
	} else {
		log.Println("[REDIS] REDIS_URL not set; frames stay in-process")
	}

	store := level.NewStore(db, rdb, time.Duration(cfg.LevelCacheSeconds)*time.Second)
	sessions := session.NewManager(db, rdb, cfg, store)

	hub := ws.NewHub(sessions)
	go hub.Run(ctx)
	if rdb != nil {
		ws.StartFrameSubscriber(ctx, rdb, hub)
	} else {
		sessions.SetSink(hub.Dispatch)
	}

	go sessions.Run(ctx)
	session.StartReaper(ctx, sessions)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, cfg, sessions, hub)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting arcade simulation server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	sessions.CloseAll(shutdownCtx, "shutdown")
}
