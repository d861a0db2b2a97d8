package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/config"
	"github.com/playmatatu/pong/internal/game"
)

// GetConfig returns the gameplay settings and key layout the frontend draws with
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"settings": cfg.Game,
			"bindings": game.DefaultBindings(),
		})
	}
}
