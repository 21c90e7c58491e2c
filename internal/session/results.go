package session

import (
	"context"
	"errors"
	"log"

	"github.com/playmatatu/arcade/internal/game"
	"github.com/playmatatu/arcade/internal/models"
)

var ErrNoDatabase = errors.New("session results unavailable")

// recordResult persists the final state of a closed session.
func (m *Manager) recordResult(ctx context.Context, s *Session, state game.State, reason string) {
	if m.db == nil {
		return
	}
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO session_results (token, mode, level_name, status, score, steps, shots, reason, created_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (token) DO NOTHING
	`, s.Token, string(s.Mode), s.Level, string(state.Status), state.Score, int64(state.Step), state.Shots, reason, s.CreatedAt)
	if err != nil {
		log.Printf("[SESSION] Failed to record result for %s: %v", s.Token, err)
	}
}

// TopResults returns the best finished sessions on a level.
func (m *Manager) TopResults(ctx context.Context, levelName string, limit int) ([]models.SessionResult, error) {
	if m.db == nil {
		return nil, ErrNoDatabase
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var rows []models.SessionResult
	err := m.db.SelectContext(ctx, &rows, `
		SELECT id, token, mode, level_name, status, score, steps, shots, reason, created_at, closed_at
		FROM session_results
		WHERE level_name = $1
		ORDER BY score DESC, closed_at ASC
		LIMIT $2
	`, levelName, limit)
	return rows, err
}
