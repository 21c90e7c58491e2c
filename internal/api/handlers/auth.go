package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/arcade/internal/config"
	"github.com/playmatatu/arcade/internal/editor"
)

// IssueEditorToken signs an editor session token.
func IssueEditorToken(cfg *config.Config, username string, roles []string) (string, time.Time, error) {
	exp := time.Now().Add(time.Duration(cfg.EditorTokenMinutes) * time.Minute)
	claims := jwt.MapClaims{"editor": username, "roles": roles, "exp": exp.Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	return signed, exp, err
}

// EditorLogin validates editor credentials and issues a JWT
// POST /api/v1/auth/editor {"username": "...", "key": "..."}
func EditorLogin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Key      string `json:"key"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and key required"})
			return
		}
		username := strings.TrimSpace(req.Username)
		if username == "" || req.Key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and key required"})
			return
		}

		acc, err := editor.ValidateEditorCredentials(db, username, req.Key)
		if err != nil {
			switch {
			case errors.Is(err, editor.ErrInvalidCredentials):
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			case errors.Is(err, editor.ErrNoDatabase):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "editor accounts unavailable"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
			return
		}

		signed, exp, err := IssueEditorToken(cfg, acc.Username, acc.Roles)
		if err != nil {
			log.Printf("Failed to sign editor token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		editor.LogEditorAction(db, acc.Username, c.ClientIP(), c.FullPath(), "login", nil, true)

		c.JSON(http.StatusOK, gin.H{
			"token":      signed,
			"expires_at": exp.Format(time.RFC3339),
			"editor":     gin.H{"username": acc.Username, "display_name": acc.DisplayName, "roles": acc.Roles},
		})
	}
}

// EditorAuthMiddleware validates a bearer JWT carrying role and sets "editor" in context
func EditorAuthMiddleware(cfg *config.Config, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")

		parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		username, _ := claims["editor"].(string)
		if username == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		roles, _ := claims["roles"].([]interface{})
		permitted := false
		for _, r := range roles {
			if s, _ := r.(string); s == role {
				permitted = true
				break
			}
		}
		if !permitted {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		c.Set("editor", username)
		c.Next()
	}
}
