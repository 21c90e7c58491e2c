package level

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/arcade/internal/game"
	"github.com/playmatatu/arcade/internal/models"
	"github.com/redis/go-redis/v9"
)

// ErrNoDatabase is returned by writes when the store runs on built-ins only.
var ErrNoDatabase = errors.New("level storage unavailable")

// Summary is a level listing entry.
type Summary struct {
	Name      string     `json:"name"`
	Mode      game.Mode  `json:"mode"`
	Version   int        `json:"version"`
	Builtin   bool       `json:"builtin"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Store reads levels from Postgres with a Redis read-through cache. Built-in levels
// answer for names the database does not have. Either backend may be nil.
type Store struct {
	db  *sqlx.DB
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(db *sqlx.DB, rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{db: db, rdb: rdb, ttl: ttl}
}

func cacheKey(name string) string {
	return "level:" + name
}

// Get returns the named level.
func (s *Store) Get(ctx context.Context, name string) (Layout, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, cacheKey(name)).Bytes()
		if err == nil {
			var l Layout
			if err := json.Unmarshal(raw, &l); err == nil {
				return l, nil
			}
			log.Printf("[LEVEL] Dropping unreadable cache entry for %s", name)
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("[LEVEL] Cache read failed for %s: %v", name, err)
		}
	}

	l, err := s.load(ctx, name)
	if err != nil {
		return Layout{}, err
	}
	s.cache(ctx, l)
	return l, nil
}

func (s *Store) load(ctx context.Context, name string) (Layout, error) {
	if s.db != nil {
		var row models.Level
		err := s.db.GetContext(ctx, &row, `SELECT id, name, mode, layout, version, updated_by, created_at, updated_at FROM levels WHERE name=$1`, name)
		if err == nil {
			return decode(row)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Layout{}, fmt.Errorf("load level %s: %w", name, err)
		}
	}
	if l, ok := builtin(name); ok {
		return l, nil
	}
	return Layout{}, ErrNotFound
}

func decode(row models.Level) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(row.Layout, &l); err != nil {
		return Layout{}, fmt.Errorf("decode level %s: %w", row.Name, err)
	}
	// the row is authoritative for identity
	l.Name = row.Name
	l.Mode = game.Mode(row.Mode)
	return l, nil
}

func (s *Store) cache(ctx context.Context, l Layout) {
	if s.rdb == nil {
		return
	}
	b, err := json.Marshal(l)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKey(l.Name), b, s.ttl).Err(); err != nil {
		log.Printf("[LEVEL] Cache write failed for %s: %v", l.Name, err)
	}
}

func (s *Store) invalidate(ctx context.Context, name string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheKey(name)).Err(); err != nil {
		log.Printf("[LEVEL] Cache invalidate failed for %s: %v", name, err)
	}
}

// List returns stored levels plus the built-ins they do not shadow, sorted by name.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	var out []Summary
	stored := make(map[string]bool)

	if s.db != nil {
		var rows []models.Level
		if err := s.db.SelectContext(ctx, &rows, `SELECT id, name, mode, version, created_at, updated_at FROM levels ORDER BY name`); err != nil {
			return nil, fmt.Errorf("list levels: %w", err)
		}
		for _, r := range rows {
			updated := r.UpdatedAt
			out = append(out, Summary{Name: r.Name, Mode: game.Mode(r.Mode), Version: r.Version, UpdatedAt: &updated})
			stored[r.Name] = true
		}
	}
	for _, b := range Builtins() {
		if !stored[b.Name] {
			out = append(out, Summary{Name: b.Name, Mode: b.Mode, Builtin: true})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Save validates and upserts a level, bumping its version.
func (s *Store) Save(ctx context.Context, l Layout, editor string) (*models.Level, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	doc, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode level: %w", err)
	}

	var row models.Level
	err = s.db.GetContext(ctx, &row, `
		INSERT INTO levels (name, mode, layout, version, updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, 1, $4, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET
			mode = EXCLUDED.mode,
			layout = EXCLUDED.layout,
			version = levels.version + 1,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING id, name, mode, layout, version, updated_by, created_at, updated_at
	`, l.Name, string(l.Mode), string(doc), editor)
	if err != nil {
		return nil, fmt.Errorf("save level %s: %w", l.Name, err)
	}

	s.invalidate(ctx, l.Name)
	log.Printf("[LEVEL] Saved %s v%d (%s) by %s", row.Name, row.Version, row.Mode, editor)
	return &row, nil
}

// Delete removes a stored level. Built-ins cannot be deleted, only shadowed.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, isBuiltin := builtin(name)
	if s.db == nil {
		if isBuiltin {
			return ErrBuiltin
		}
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM levels WHERE name=$1`, name)
	if err != nil {
		return fmt.Errorf("delete level %s: %w", name, err)
	}
	s.invalidate(ctx, name)

	if n, _ := res.RowsAffected(); n == 0 {
		if isBuiltin {
			return ErrBuiltin
		}
		return ErrNotFound
	}
	log.Printf("[LEVEL] Deleted %s", name)
	return nil
}
