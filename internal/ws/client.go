package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/arcade/internal/game"
	"github.com/playmatatu/arcade/internal/physics"
	"github.com/playmatatu/arcade/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

// Client represents a connected WebSocket client watching one session
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	id    string
	token string
	send  chan []byte
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type LaunchData struct {
	Pull physics.Vec2 `json:"pull"`
}

type StrikeData struct {
	Angle float64 `json:"angle"`
	Power float64 `json:"power"`
}

type PlaceCueBallData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// readPump reads client commands until the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] unexpected close for client %s: %v", c.id, err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] write error for client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

// command translates a client message into a game command.
func command(msg WSMessage) (game.Command, error) {
	switch msg.Type {
	case "launch":
		var data LaunchData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return game.Command{}, errors.New("invalid launch data")
		}
		return game.Command{Type: game.CommandLaunch, Pull: data.Pull}, nil

	case "strike":
		var data StrikeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return game.Command{}, errors.New("invalid strike data")
		}
		return game.Command{Type: game.CommandStrike, Angle: data.Angle, Power: data.Power}, nil

	case "place_cue_ball":
		var data PlaceCueBallData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return game.Command{}, errors.New("invalid placement data")
		}
		return game.Command{Type: game.CommandPlaceCueBall, Position: physics.NewVec2(data.X, data.Y)}, nil

	case "skill":
		return game.Command{Type: game.CommandSkill}, nil
	}
	return game.Command{}, errors.New("unknown message type")
}

// handleMessage processes one incoming client message.
func (c *Client) handleMessage(msg WSMessage) {
	if msg.Type == "get_state" {
		c.sendState()
		return
	}

	cmd, err := command(msg)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if err := c.hub.sessions.Apply(context.Background(), c.token, cmd); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.sendError("session not found")
			return
		}
		c.sendError(err.Error())
	}
}

// sendState sends the session's current state to this client only.
func (c *Client) sendState() {
	s, err := c.hub.sessions.Get(c.token)
	if err != nil {
		c.sendError("session not found")
		return
	}
	state := s.Snapshot()
	c.trySend(session.Frame{Type: "state", Token: c.token, Step: state.Step, State: state})
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.trySend(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}

func (c *Client) trySend(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if room := c.hub.rooms[c.token]; room == nil || room[c.id] != c {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] dropped message for client %s (buffer full)", c.id)
	}
}
