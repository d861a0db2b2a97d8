package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/session"
	"github.com/playmatatu/pong/internal/tournament"
	"github.com/playmatatu/pong/internal/ws"
)

// BeginSession attaches an engine to the tournament's next match
func BeginSession(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svc.Begin(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"tournament_id": sess.TournamentID,
			"match_id":      sess.MatchID,
			"round":         sess.Round,
			"state":         sess.Engine.Snapshot(),
		})
	}
}

// ControlSession starts, pauses or resets the running match
func ControlSession(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := svc.Control(c.Param("id"), c.Param("action"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// EndSession abandons the running match without a result
func EndSession(svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.End(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// WatchTournament upgrades to a websocket streaming frames and events for one tournament
func WatchTournament(reg *tournament.Registry, hub *ws.Hub, svc *session.Service) gin.HandlerFunc {
	upgrade := ws.HandleWebSocket(hub, svc)
	return func(c *gin.Context) {
		if _, err := reg.Get(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		upgrade(c)
	}
}
