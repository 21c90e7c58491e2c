package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/arcade/internal/api/handlers"
	"github.com/playmatatu/arcade/internal/config"
	"github.com/playmatatu/arcade/internal/editor"
	"github.com/playmatatu/arcade/internal/middleware"
	"github.com/playmatatu/arcade/internal/session"
	"github.com/playmatatu/arcade/internal/ws"
)

// SetupRoutes configures all API routes. db may be nil, in which case only
// built-in levels are served and editor routes answer 503.
func SetupRoutes(router *gin.Engine, db *sqlx.DB, cfg *config.Config, sessions *session.Manager, hub *ws.Hub) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(middleware.NoCache())
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	store := sessions.Levels()

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(sessions))

		s := v1.Group("/sessions")
		{
			s.POST("", handlers.CreateSession(sessions))
			s.GET("/:token", handlers.GetSession(sessions))
			s.DELETE("/:token", handlers.CloseSession(sessions))
			s.POST("/:token/commands", handlers.SessionCommand(sessions))
			s.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSessionWebSocket(hub))
		}

		levels := v1.Group("/levels")
		{
			levels.GET("", handlers.ListLevels(store))
			levels.GET("/:name", handlers.GetLevel(store))
			levels.GET("/:name/scores", handlers.LevelScores(sessions))

			editorOnly := handlers.EditorAuthMiddleware(cfg, editor.RoleLevels)
			levels.PUT("/:name", editorOnly, handlers.SaveLevel(db, store))
			levels.DELETE("/:name", editorOnly, handlers.DeleteLevel(db, store))
		}

		v1.POST("/auth/editor", handlers.EditorLogin(db, cfg))
	}
}
