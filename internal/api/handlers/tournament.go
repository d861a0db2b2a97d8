package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/accounts"
	"github.com/playmatatu/pong/internal/session"
	"github.com/playmatatu/pong/internal/tournament"
)

// CreateTournament opens a new tournament for registration
func CreateTournament(reg *tournament.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		m := reg.Create(strings.TrimSpace(req.Name))
		c.JSON(http.StatusCreated, m.Snapshot())
	}
}

// ListTournaments returns every tournament, oldest first
func ListTournaments(reg *tournament.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		list := reg.List()
		c.JSON(http.StatusOK, gin.H{"tournaments": list, "total": len(list)})
	}
}

// GetTournament returns the bracket, standings and the next match to play
func GetTournament(reg *tournament.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := reg.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		resp := gin.H{
			"tournament": m.Snapshot(),
			"standings":  m.Standings(),
		}
		if next, ok := m.NextMatch(); ok {
			resp["next_match"] = next
		}
		c.JSON(http.StatusOK, resp)
	}
}

// RegisterPlayer adds a player. A bearer token, when sent, links the player to an account.
func RegisterPlayer(reg *tournament.Registry, verifier *accounts.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := reg.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		var req struct {
			Alias string `json:"alias" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "alias is required"})
			return
		}

		var accountID string
		if header := c.GetHeader("Authorization"); header != "" {
			accountID, err = verifier.FromHeader(header)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
		}

		p, err := m.Register(req.Alias, accountID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// StartTournament closes registration and generates round 1
func StartTournament(reg *tournament.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := reg.Get(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if err := m.Start(); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, m.Snapshot())
	}
}

// RecordMatchResult records a match played outside a live session
func RecordMatchResult(reg *tournament.Registry, svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tournamentID, matchID := c.Param("id"), c.Param("matchId")
		m, err := reg.Get(tournamentID)
		if err != nil {
			respondError(c, err)
			return
		}

		var req struct {
			Winner  int `json:"winner" binding:"required"`
			Player1 int `json:"player1"`
			Player2 int `json:"player2"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "winner is required"})
			return
		}
		if req.Player1 < 0 || req.Player2 < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scores cannot be negative"})
			return
		}
		match, err := svc.RecordResult(tournamentID, matchID, req.Winner, tournament.Score{Player1: req.Player1, Player2: req.Player2})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"match": match, "tournament": m.Snapshot()})
	}
}
