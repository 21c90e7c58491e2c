package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/arcade/internal/editor"
	"github.com/playmatatu/arcade/internal/level"
	"github.com/playmatatu/arcade/internal/session"
)

// ListLevels returns stored and built-in levels
func ListLevels(store *level.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		levels, err := store.List(context.Background())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"levels": levels})
	}
}

// GetLevel returns one level document
func GetLevel(store *level.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		l, err := store.Get(context.Background(), c.Param("name"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, l)
	}
}

// SaveLevel creates or replaces a level (editor only)
// PUT /api/v1/levels/:name
func SaveLevel(db *sqlx.DB, store *level.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		var l level.Layout
		if err := c.ShouldBindJSON(&l); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid level document"})
			return
		}
		if l.Name == "" {
			l.Name = name
		}
		if l.Name != name {
			c.JSON(http.StatusBadRequest, gin.H{"error": "level name does not match path"})
			return
		}

		editorName := c.GetString("editor")
		row, err := store.Save(context.Background(), l, editorName)
		audit(db, c, "save_level", map[string]interface{}{"level": name, "mode": l.Mode}, err == nil)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": row.Name, "mode": row.Mode, "version": row.Version, "updated_at": row.UpdatedAt})
	}
}

// DeleteLevel removes a stored level (editor only)
func DeleteLevel(db *sqlx.DB, store *level.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		err := store.Delete(context.Background(), name)
		audit(db, c, "delete_level", map[string]interface{}{"level": name}, err == nil)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// LevelScores returns the best recorded sessions on a level
// GET /api/v1/levels/:name/scores?limit=10
func LevelScores(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		rows, err := m.TopResults(context.Background(), c.Param("name"), limit)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"level": c.Param("name"), "scores": rows})
	}
}

func audit(db *sqlx.DB, c *gin.Context, action string, details map[string]interface{}, success bool) {
	if db == nil {
		return
	}
	editor.LogEditorAction(db, c.GetString("editor"), c.ClientIP(), c.FullPath(), action, details, success)
}
