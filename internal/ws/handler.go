package ws

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are enforced by the CORS layer
	},
}

func clientID() string {
	b := make([]byte, 6)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// ServeSession upgrades the request and attaches the connection to the session
// named by the :token path parameter.
func (h *Hub) ServeSession(c *gin.Context) {
	token := c.Param("token")
	if _, err := h.sessions.Get(token); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:   h,
		conn:  conn,
		id:    clientID(),
		token: token,
		send:  make(chan []byte, sendBuffer),
	}
	if !h.attach(client) {
		log.Printf("[WS] Hub stopped, dropping client %s", client.id)
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
