package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// StartReaper starts a background worker that closes sessions nobody has commanded
// for SESSION_IDLE_SECONDS. With Redis the deadlines live in the session_idle sorted
// set; without it the running sessions are scanned directly.
func StartReaper(ctx context.Context, m *Manager) {
	if m == nil {
		log.Println("[REAPER] Manager missing; reaper not started")
		return
	}

	poll := time.Duration(m.config.ReaperPollSeconds) * time.Second
	if poll <= 0 {
		poll = 10 * time.Second
	}

	log.Println("[REAPER] Idle reaper started")
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[REAPER] Idle reaper stopping")
				return
			case <-ticker.C:
				if m.rdb != nil {
					m.reapExpired(ctx, m.now())
				} else {
					m.sweepIdle(ctx, m.now())
				}
			}
		}
	}()
}

// reapExpired closes sessions whose deadline in the idle set has passed.
func (m *Manager) reapExpired(ctx context.Context, now time.Time) int {
	members, err := m.rdb.ZRangeByScore(ctx, idleKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		log.Printf("[REAPER] Failed to fetch idle sessions: %v", err)
		return 0
	}

	closed := 0
	for _, token := range members {
		// another instance may have claimed it
		if removed, _ := m.rdb.ZRem(ctx, idleKey, token).Result(); removed == 0 {
			continue
		}
		s, err := m.Get(token)
		if err != nil {
			continue
		}
		if !m.idle(s, now) {
			// a command landed after the deadline was read
			m.touch(ctx, token, s.LastActive())
			continue
		}
		if err := m.Close(ctx, token, "idle"); err == nil {
			closed++
		}
	}
	if closed > 0 {
		log.Printf("[REAPER] Closed %d idle session(s)", closed)
	}
	return closed
}

// sweepIdle closes idle sessions without consulting Redis.
func (m *Manager) sweepIdle(ctx context.Context, now time.Time) int {
	m.mu.RLock()
	var expired []string
	for token, s := range m.sessions {
		if m.idle(s, now) {
			expired = append(expired, token)
		}
	}
	m.mu.RUnlock()

	closed := 0
	for _, token := range expired {
		if err := m.Close(ctx, token, "idle"); err == nil {
			closed++
		}
	}
	if closed > 0 {
		log.Printf("[REAPER] Closed %d idle session(s)", closed)
	}
	return closed
}

func (m *Manager) idle(s *Session, now time.Time) bool {
	limit := time.Duration(m.config.SessionIdleSeconds) * time.Second
	return now.Sub(s.LastActive()) >= limit
}
