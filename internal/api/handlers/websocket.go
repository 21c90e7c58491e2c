package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/arcade/internal/ws"
)

// HandleSessionWebSocket streams a session's frames and accepts its commands
func HandleSessionWebSocket(hub *ws.Hub) gin.HandlerFunc {
	return hub.ServeSession
}
