package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/arcade/internal/game"
	"github.com/playmatatu/arcade/internal/session"
)

func sessionView(s *session.Session, state game.State) gin.H {
	return gin.H{
		"token":  s.Token,
		"mode":   s.Mode,
		"level":  s.Level,
		"ws_url": "/api/v1/sessions/" + s.Token + "/ws",
		"state":  state,
	}
}

// CreateSession starts a simulation session on a level
// POST /api/v1/sessions {"level": "tower"}
func CreateSession(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Level string `json:"level"`
		}
		// an empty body means the default level
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		s, err := m.Create(context.Background(), req.Level)
		if err != nil {
			log.Printf("[SESSION] Create on level %q failed: %v", req.Level, err)
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, sessionView(s, s.Snapshot()))
	}
}

// GetSession returns a session's current state
func GetSession(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := m.Get(c.Param("token"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionView(s, s.Snapshot()))
	}
}

// SessionCommand applies a player command between steps
// POST /api/v1/sessions/:token/commands {"type": "launch", "pull": {"x": 120, "y": -40}}
func SessionCommand(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd game.Command
		if err := c.ShouldBindJSON(&cmd); err != nil || cmd.Type == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "command type required"})
			return
		}

		token := c.Param("token")
		if err := m.Apply(context.Background(), token, cmd); err != nil {
			abortWithError(c, err)
			return
		}
		s, err := m.Get(token)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionView(s, s.Snapshot()))
	}
}

// CloseSession stops a session and records its result
func CloseSession(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := m.Close(context.Background(), c.Param("token"), "client"); err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
