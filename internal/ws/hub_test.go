package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/arcade/internal/config"
	"github.com/playmatatu/arcade/internal/game"
	"github.com/playmatatu/arcade/internal/level"
	"github.com/playmatatu/arcade/internal/physics"
	"github.com/playmatatu/arcade/internal/session"
)

func testClient(h *Hub, id, token string) *Client {
	c := &Client{hub: h, id: id, token: token, send: make(chan []byte, 8)}
	h.join(c)
	return c
}

func TestDispatchRoutesToRoom(t *testing.T) {
	h := NewHub(nil)
	a := testClient(h, "a", "t1")
	b := testClient(h, "b", "t1")
	other := testClient(h, "c", "t2")

	h.Dispatch(session.ChannelFrames, []byte(`{"type":"frame","token":"t1","step":3}`))
	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			if !strings.Contains(string(msg), `"step":3`) {
				t.Errorf("client %s got %s", c.id, msg)
			}
		default:
			t.Errorf("client %s received nothing", c.id)
		}
	}
	if len(other.send) != 0 {
		t.Error("frame leaked into another session's room")
	}

	h.Dispatch(session.ChannelFrames, []byte(`not json`))
	h.Dispatch("elsewhere", []byte(`{"token":"t1"}`))
	if len(a.send) != 0 {
		t.Error("invalid payloads were delivered")
	}

	h.Dispatch(session.ChannelClosed, []byte(`{"type":"session_closed","token":"t1","reason":"idle"}`))
	if msg, ok := <-a.send; !ok || !strings.Contains(string(msg), "session_closed") {
		t.Errorf("close notice = %q, %v", msg, ok)
	}
	if _, ok := <-a.send; ok {
		t.Error("send channel left open after session closed")
	}
	if h.RoomSize("t1") != 0 || h.RoomSize("t2") != 1 {
		t.Errorf("room sizes t1=%d t2=%d", h.RoomSize("t1"), h.RoomSize("t2"))
	}
	if h.leave(a) {
		t.Error("leave reported a client that was already removed")
	}
}

func TestDisconnectAfterHubStops(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	c := testClient(h, "late", "t1")
	cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.detach(c)
		if h.attach(c) {
			t.Error("stopped hub accepted a client")
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("disconnect blocked after the hub stopped")
	}
}

func TestCommandTranslation(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		want    game.Command
		wantErr bool
	}{
		{"launch", `{"type":"launch","data":{"pull":{"x":120,"y":-30}}}`, game.Command{Type: game.CommandLaunch, Pull: physics.NewVec2(120, -30)}, false},
		{"strike", `{"type":"strike","data":{"angle":1.5,"power":600}}`, game.Command{Type: game.CommandStrike, Angle: 1.5, Power: 600}, false},
		{"place", `{"type":"place_cue_ball","data":{"x":200,"y":150}}`, game.Command{Type: game.CommandPlaceCueBall, Position: physics.NewVec2(200, 150)}, false},
		{"skill", `{"type":"skill"}`, game.Command{Type: game.CommandSkill}, false},
		{"retired blast", `{"type":"blast","data":{"x":10,"y":20,"radius":50}}`, game.Command{}, true},
		{"bad strike", `{"type":"strike","data":"hard"}`, game.Command{}, true},
		{"unknown", `{"type":"jump"}`, game.Command{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg WSMessage
			if err := json.Unmarshal([]byte(tt.msg), &msg); err != nil {
				t.Fatal(err)
			}
			got, err := command(msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("command = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) map[string]json.RawMessage {
	t.Helper()
	for {
		var msg map[string]json.RawMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if string(msg["type"]) == `"`+typ+`"` {
			return msg
		}
	}
}

func TestSessionOverWebSocket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	cfg.MaxSessions = 10
	m := session.NewManager(nil, nil, cfg, level.NewStore(nil, nil, 0))
	hub := NewHub(m)
	m.SetSink(hub.Dispatch)
	go hub.Run(ctx)

	s, err := m.Create(ctx, "default")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	r := gin.New()
	r.GET("/sessions/:token/ws", hub.ServeSession)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/sessions/missing/ws")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown session status = %d", resp.StatusCode)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + s.Token + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	first := readUntil(t, conn, "state")
	if string(first["token"]) != `"`+s.Token+`"` {
		t.Errorf("state for token %s", first["token"])
	}

	if err := conn.WriteJSON(map[string]interface{}{"type": "launch", "data": map[string]interface{}{"pull": map[string]float64{"x": 100, "y": 20}}}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for !s.Snapshot().Launched {
		if time.Now().After(deadline) {
			t.Fatal("launch command never reached the session")
		}
		time.Sleep(10 * time.Millisecond)
	}

	m.Tick(ctx, 1.0/60)
	var frame session.Frame
	raw := readUntil(t, conn, "frame")
	b, _ := json.Marshal(raw)
	if err := json.Unmarshal(b, &frame); err != nil {
		t.Fatal(err)
	}
	if frame.Step != 1 || !frame.State.Launched {
		t.Errorf("frame step=%d launched=%v", frame.Step, frame.State.Launched)
	}

	if err := conn.WriteJSON(map[string]interface{}{"type": "strike", "data": map[string]float64{"angle": 0, "power": 100}}); err != nil {
		t.Fatal(err)
	}
	msg := readUntil(t, conn, "error")
	if !strings.Contains(string(msg["message"]), game.ErrUnsupportedCommand.Error()) {
		t.Errorf("error message = %s", msg["message"])
	}
}
