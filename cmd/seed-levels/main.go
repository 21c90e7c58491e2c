package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/playmatatu/arcade/internal/config"
	"github.com/playmatatu/arcade/internal/database"
	"github.com/playmatatu/arcade/internal/editor"
	"github.com/playmatatu/arcade/internal/level"
	"github.com/playmatatu/arcade/internal/migrations"
	"github.com/playmatatu/arcade/internal/redis"
)

// seed-levels [layout.json ...]
//
// Stores the built-in levels plus any layout files given as arguments, and
// creates the editor account named by EDITOR_USERNAME / EDITOR_KEY.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	ctx := context.Background()

	// Initialize database
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migrations.RunMigrations(cfg.DatabaseURL, migrations.DefaultDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed editor account
	username := os.Getenv("EDITOR_USERNAME")
	if username == "" {
		username = "editor"
		log.Printf("Using default editor username: %s", username)
	}
	key := os.Getenv("EDITOR_KEY")
	if key == "" {
		key = "change-me-in-production"
		log.Printf("WARNING: Using default editor key. Set EDITOR_KEY env var in production!")
	}
	roles := []string{editor.RoleLevels}
	if err := editor.CreateEditor(db, username, "Level Editor", key, roles); err != nil {
		log.Fatalf("Failed to create editor account: %v", err)
	}
	log.Printf("✓ Editor account %s created/updated (roles=%v)", username, roles)

	// Seed levels; with Redis reachable, cached copies are invalidated too
	rdb, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("Redis unavailable (%v); cached levels expire on their own", err)
	} else {
		defer rdb.Close()
	}
	store := level.NewStore(db, rdb, 0)
	layouts := level.Builtins()
	for _, path := range os.Args[1:] {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}
		var l level.Layout
		if err := json.Unmarshal(raw, &l); err != nil {
			log.Fatalf("Failed to parse %s: %v", path, err)
		}
		layouts = append(layouts, l)
	}

	for _, l := range layouts {
		row, err := store.Save(ctx, l, username)
		if err != nil {
			log.Fatalf("Failed to save level %s: %v", l.Name, err)
		}
		log.Printf("✓ Level %s (%s) stored at version %d", row.Name, row.Mode, row.Version)
	}
}
