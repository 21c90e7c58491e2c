package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/arcade/internal/config"
	"github.com/playmatatu/arcade/internal/game"
	"github.com/playmatatu/arcade/internal/level"
	"github.com/playmatatu/arcade/internal/physics"
	"github.com/redis/go-redis/v9"
)

const idleKey = "session_idle"

// Sink receives published payloads when no Redis client is configured.
type Sink func(channel string, payload []byte)

// Manager owns all running sessions and steps them on a shared clock.
type Manager struct {
	sessions map[string]*Session
	levels   *level.Store
	rdb      *redis.Client
	db       *sqlx.DB
	config   *config.Config
	arena    game.ArenaConfig
	table    game.TableConfig
	sink     Sink
	now      func() time.Time
	mu       sync.RWMutex
}

// NewManager creates a session manager. db and rdb may be nil.
func NewManager(db *sqlx.DB, rdb *redis.Client, cfg *config.Config, levels *level.Store) *Manager {
	if cfg == nil {
		cfg = config.Load()
	}
	if levels == nil {
		levels = level.NewStore(db, rdb, time.Duration(cfg.LevelCacheSeconds)*time.Second)
	}
	return &Manager{
		sessions: make(map[string]*Session),
		levels:   levels,
		rdb:      rdb,
		db:       db,
		config:   cfg,
		arena:    ArenaConfig(cfg),
		table:    TableConfig(cfg),
		now:      time.Now,
	}
}

// ArenaConfig builds the slingshot world constants from the service config.
func ArenaConfig(cfg *config.Config) game.ArenaConfig {
	a := game.DefaultArenaConfig()
	a.Width = cfg.ArenaWidth
	a.Height = cfg.ArenaHeight
	a.Gravity = physics.Vec2{X: 0, Y: cfg.ArenaGravityY}
	a.Damage = physics.DamagePolicy{
		Scale:      cfg.ArenaDamageScale,
		FloorScale: cfg.ArenaFloorDamageScale,
		Threshold:  cfg.ArenaDamageThreshold,
	}
	a.RestingAllowance = cfg.ArenaRestingAllowance
	return a
}

// TableConfig builds the billiards world constants from the service config.
func TableConfig(cfg *config.Config) game.TableConfig {
	t := game.DefaultTableConfig()
	t.Width = cfg.TableWidth
	t.Height = cfg.TableHeight
	t.Friction = cfg.TableFriction
	t.BallRadius = cfg.BallRadius
	t.PocketRadius = cfg.PocketRadius
	return t
}

// SetSink routes frames and close notices to fn instead of Redis pub/sub.
// It is only used when the manager has no Redis client.
func (m *Manager) SetSink(fn Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sink = fn
}

// Levels returns the store sessions are built from.
func (m *Manager) Levels() *level.Store {
	return m.levels
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// Create starts a session on the named level ("" means the default level).
func (m *Manager) Create(ctx context.Context, levelName string) (*Session, error) {
	if levelName == "" {
		levelName = level.Default().Name
	}
	layout, err := m.levels.Get(ctx, levelName)
	if err != nil {
		return nil, err
	}
	g, err := layout.Build(m.arena, m.table)
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		Token:      generateToken(16),
		Level:      layout.Name,
		Mode:       g.Mode(),
		CreatedAt:  now,
		game:       g,
		lastActive: now,
	}

	m.mu.Lock()
	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	m.sessions[s.Token] = s
	m.mu.Unlock()

	m.touch(ctx, s.Token, now)
	log.Printf("[SESSION] Created %s session %s on level %s", s.Mode, s.Token, s.Level)
	return s, nil
}

// Get returns a running session.
func (m *Manager) Get(token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Len returns the number of running sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Apply runs a command on a session and refreshes its idle deadline.
func (m *Manager) Apply(ctx context.Context, token string, cmd game.Command) error {
	s, err := m.Get(token)
	if err != nil {
		return err
	}
	now := m.now()
	if err := s.Apply(cmd, now); err != nil {
		return err
	}
	m.touch(ctx, token, now)
	return nil
}

// Close stops a session, records its result and announces the close.
func (m *Manager) Close(ctx context.Context, token, reason string) error {
	m.mu.Lock()
	s, ok := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	state, ok := s.close()
	if !ok {
		return ErrNotFound
	}
	if m.rdb != nil {
		if err := m.rdb.ZRem(ctx, idleKey, token).Err(); err != nil {
			log.Printf("[SESSION] Failed to clear idle entry for %s: %v", token, err)
		}
	}
	m.recordResult(ctx, s, state, reason)
	m.publish(ctx, ChannelClosed, Closed{
		Type:   "session_closed",
		Token:  token,
		Reason: reason,
		Status: state.Status,
		Score:  state.Score,
	})
	log.Printf("[SESSION] Closed %s (reason=%s status=%s score=%d steps=%d)", token, reason, state.Status, state.Score, state.Step)
	return nil
}

// CloseAll stops every running session.
func (m *Manager) CloseAll(ctx context.Context, reason string) {
	m.mu.RLock()
	tokens := make([]string, 0, len(m.sessions))
	for t := range m.sessions {
		tokens = append(tokens, t)
	}
	m.mu.RUnlock()
	for _, t := range tokens {
		m.Close(ctx, t, reason)
	}
}

// Tick steps every session once. dt is clamped to the configured maximum step.
func (m *Manager) Tick(ctx context.Context, dt float64) {
	if limit := m.config.MaxStepSeconds; limit > 0 && dt > limit {
		dt = limit
	}
	if !(dt > 0) {
		return
	}

	m.mu.RLock()
	running := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		running = append(running, s)
	}
	m.mu.RUnlock()

	for _, s := range running {
		frame, ok := s.step(dt)
		if !ok {
			continue
		}
		m.publish(ctx, ChannelFrames, frame)
	}
}

// Run steps all sessions on a ticker until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	interval := time.Duration(m.config.TickMillis) * time.Millisecond
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[SESSION] Simulation loop started (tick=%s max_step=%.3fs)", interval, m.config.MaxStepSeconds)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Println("[SESSION] Simulation loop stopping")
			return
		case now := <-ticker.C:
			m.Tick(ctx, now.Sub(last).Seconds())
			last = now
		}
	}
}

func (m *Manager) publish(ctx context.Context, channel string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[SESSION] Failed to encode %s payload: %v", channel, err)
		return
	}
	if m.rdb != nil {
		if err := m.rdb.Publish(ctx, channel, b).Err(); err != nil {
			log.Printf("[SESSION] Publish to %s failed: %v", channel, err)
		}
		return
	}

	m.mu.RLock()
	sink := m.sink
	m.mu.RUnlock()
	if sink != nil {
		sink(channel, b)
	}
}

// touch pushes the session's idle deadline forward.
func (m *Manager) touch(ctx context.Context, token string, at time.Time) {
	if m.rdb == nil {
		return
	}
	deadline := at.Add(time.Duration(m.config.SessionIdleSeconds) * time.Second).Unix()
	if err := m.rdb.ZAdd(ctx, idleKey, redis.Z{Score: float64(deadline), Member: token}).Err(); err != nil {
		log.Printf("[SESSION] Failed to schedule idle check for %s: %v", token, err)
	}
}
