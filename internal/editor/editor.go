package editor

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/arcade/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// RoleLevels allows publishing and deleting levels.
const RoleLevels = "levels"

var (
	ErrNoDatabase         = errors.New("editor accounts unavailable")
	ErrInvalidCredentials = errors.New("invalid editor credentials")
)

// GetEditor retrieves an editor account by username
func GetEditor(db *sqlx.DB, username string) (*models.EditorAccount, error) {
	var acc models.EditorAccount
	err := db.Get(&acc, `SELECT username, display_name, key_hash, roles, created_at, updated_at FROM editor_accounts WHERE username=$1`, username)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// HashEditorKey hashes a plain editor key for storage.
func HashEditorKey(plainKey string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainKey), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(hashed), nil
}

// VerifyEditorKey checks if the provided key matches the stored hash
func VerifyEditorKey(hashedKey, plainKey string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(plainKey)) == nil
}

// HasRole reports whether the account carries role.
func HasRole(acc *models.EditorAccount, role string) bool {
	if acc == nil {
		return false
	}
	for _, r := range acc.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CreateEditor creates or replaces an editor account (used for seeding)
func CreateEditor(db *sqlx.DB, username, displayName, plainKey string, roles []string) error {
	if db == nil {
		return ErrNoDatabase
	}
	hashed, err := HashEditorKey(plainKey)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO editor_accounts (username, display_name, key_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			key_hash = EXCLUDED.key_hash,
			roles = EXCLUDED.roles,
			updated_at = NOW()
	`, username, displayName, hashed, pq.Array(roles))

	return err
}

// ValidateEditorCredentials validates a username + key combination
func ValidateEditorCredentials(db *sqlx.DB, username, key string) (*models.EditorAccount, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}

	acc, err := GetEditor(db, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[EDITOR] No editor account found for %s", username)
			return nil, ErrInvalidCredentials
		}
		log.Printf("[EDITOR] Database error: %v", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !VerifyEditorKey(acc.KeyHash, key) {
		log.Printf("[EDITOR] Key verification failed for %s", username)
		return nil, ErrInvalidCredentials
	}
	return acc, nil
}

// LogEditorAction records an editor action in the audit log
func LogEditorAction(db *sqlx.DB, editor, ip, route, action string, details map[string]interface{}, success bool) error {
	if db == nil {
		return ErrNoDatabase
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Printf("Failed to marshal editor audit details: %v", err)
		detailsJSON = []byte("{}")
	}

	_, err = db.Exec(`
		INSERT INTO editor_audit (editor, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, editor, ip, route, action, string(detailsJSON), success)

	if err != nil {
		log.Printf("Failed to log editor action: %v", err)
	}
	return err
}

// GetEditorAuditLogs retrieves recent audit entries with pagination
func GetEditorAuditLogs(db *sqlx.DB, limit, offset int) ([]models.EditorAudit, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}
	var logs []models.EditorAudit
	err := db.Select(&logs, `
		SELECT id, editor, ip, route, action, details, success, created_at
		FROM editor_audit
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return logs, err
}
