package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation loop
	TickMillis         int
	MaxStepSeconds     float64
	SessionIdleSeconds int
	ReaperPollSeconds  int
	MaxSessions        int
	LevelCacheSeconds  int

	// Arena (slingshot) tuning
	ArenaGravityY         float64
	ArenaWidth            float64
	ArenaHeight           float64
	ArenaDamageScale      float64
	ArenaFloorDamageScale float64
	ArenaDamageThreshold  float64
	ArenaRestingAllowance float64

	// Table (billiards) tuning
	TableWidth    float64
	TableHeight   float64
	TableFriction float64
	BallRadius    float64
	PocketRadius  float64

	// Security
	JWTSecret          string
	EditorTokenMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/arcade?sslmode=disable"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation loop
		TickMillis:         getEnvInt("TICK_MILLIS", 16),
		MaxStepSeconds:     getEnvFloat("MAX_STEP_SECONDS", 0.03),
		SessionIdleSeconds: getEnvInt("SESSION_IDLE_SECONDS", 300),
		ReaperPollSeconds:  getEnvInt("REAPER_POLL_SECONDS", 10),
		MaxSessions:        getEnvInt("MAX_SESSIONS", 200),
		LevelCacheSeconds:  getEnvInt("LEVEL_CACHE_SECONDS", 3600),

		// Arena
		ArenaGravityY:         getEnvFloat("ARENA_GRAVITY_Y", 900),
		ArenaWidth:            getEnvFloat("ARENA_WIDTH", 1100),
		ArenaHeight:           getEnvFloat("ARENA_HEIGHT", 620),
		ArenaDamageScale:      getEnvFloat("ARENA_DAMAGE_SCALE", 0.5),
		ArenaFloorDamageScale: getEnvFloat("ARENA_FLOOR_DAMAGE_SCALE", 2),
		ArenaDamageThreshold:  getEnvFloat("ARENA_DAMAGE_THRESHOLD", 20),
		ArenaRestingAllowance: getEnvFloat("ARENA_RESTING_ALLOWANCE", 5),

		// Table
		TableWidth:    getEnvFloat("TABLE_WIDTH", 800),
		TableHeight:   getEnvFloat("TABLE_HEIGHT", 400),
		TableFriction: getEnvFloat("TABLE_FRICTION", 60),
		BallRadius:    getEnvFloat("BALL_RADIUS", 10),
		PocketRadius:  getEnvFloat("POCKET_RADIUS", 16),

		// Security
		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		EditorTokenMinutes: getEnvInt("EDITOR_TOKEN_MINUTES", 720),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
