package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/accounts"
	"github.com/playmatatu/pong/internal/session"
	"github.com/playmatatu/pong/internal/tournament"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tournament.ErrNotFound),
		errors.Is(err, tournament.ErrMatchNotFound),
		errors.Is(err, session.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, tournament.ErrEmptyAlias),
		errors.Is(err, tournament.ErrInvalidWinner),
		errors.Is(err, session.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, accounts.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, tournament.ErrNotRegistering),
		errors.Is(err, tournament.ErrNotInProgress),
		errors.Is(err, tournament.ErrTournamentFull),
		errors.Is(err, tournament.ErrDuplicateAlias),
		errors.Is(err, tournament.ErrRosterSize),
		errors.Is(err, tournament.ErrOddRoster),
		errors.Is(err, tournament.ErrUnevenBracket),
		errors.Is(err, tournament.ErrMatchCompleted),
		errors.Is(err, session.ErrSessionActive),
		errors.Is(err, session.ErrMatchLive),
		errors.Is(err, session.ErrNoPendingMatch):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...} with the matching status.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[SERVER] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
