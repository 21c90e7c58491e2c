package session

import (
	"errors"
	"sync"
	"time"

	"github.com/playmatatu/arcade/internal/game"
	"github.com/playmatatu/arcade/internal/physics"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
)

// Redis channels frames and close notices are published on.
const (
	ChannelFrames = "sim_frames"
	ChannelClosed = "session_closed"
)

// Frame is one stepped session as sent to clients.
type Frame struct {
	Type   string          `json:"type"`
	Token  string          `json:"token"`
	Step   uint64          `json:"step"`
	State  game.State      `json:"state"`
	Events []physics.Event `json:"events,omitempty"`
}

// Closed announces that a session has been shut down.
type Closed struct {
	Type   string      `json:"type"`
	Token  string      `json:"token"`
	Reason string      `json:"reason"`
	Status game.Status `json:"status"`
	Score  int         `json:"score"`
}

// Session is one running game. Every access to the game goes through mu so
// commands are applied strictly between steps.
type Session struct {
	Token     string
	Level     string
	Mode      game.Mode
	CreatedAt time.Time

	mu         sync.Mutex
	game       game.Game
	lastActive time.Time
	closed     bool
}

// Apply runs a player command against the game.
func (s *Session) Apply(cmd game.Command, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotFound
	}
	if err := s.game.Apply(cmd); err != nil {
		return err
	}
	s.lastActive = now
	return nil
}

// Snapshot returns the current game state.
func (s *Session) Snapshot() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// LastActive is the time of the last accepted command, or creation.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// step advances the game and returns the resulting frame. ok is false once closed.
func (s *Session) step(dt float64) (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Frame{}, false
	}
	s.game.Step(dt)
	state := s.game.Snapshot()
	return Frame{
		Type:   "frame",
		Token:  s.Token,
		Step:   state.Step,
		State:  state,
		Events: s.game.Drain(),
	}, true
}

// close marks the session finished and returns its final state.
func (s *Session) close() (game.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return game.State{}, false
	}
	s.closed = true
	return s.game.Snapshot(), true
}
