package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/arcade/internal/game"
	"github.com/playmatatu/arcade/internal/level"
	"github.com/playmatatu/arcade/internal/session"
)

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, level.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTooManySessions),
		errors.Is(err, level.ErrNoDatabase),
		errors.Is(err, session.ErrNoDatabase):
		return http.StatusServiceUnavailable
	case errors.Is(err, level.ErrBuiltin),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrNoBird),
		errors.Is(err, game.ErrBirdInFlight),
		errors.Is(err, game.ErrBallsMoving),
		errors.Is(err, game.ErrCueBallInHand),
		errors.Is(err, game.ErrNotBallInHand):
		return http.StatusConflict
	case errors.Is(err, level.ErrInvalidLayout),
		errors.Is(err, game.ErrUnsupportedCommand),
		errors.Is(err, game.ErrInvalidPull),
		errors.Is(err, game.ErrInvalidPower),
		errors.Is(err, game.ErrOutOfBounds),
		errors.Is(err, game.ErrOverlap):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
