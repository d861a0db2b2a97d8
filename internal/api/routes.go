package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/accounts"
	"github.com/playmatatu/pong/internal/api/handlers"
	"github.com/playmatatu/pong/internal/config"
	"github.com/playmatatu/pong/internal/middleware"
	"github.com/playmatatu/pong/internal/session"
	"github.com/playmatatu/pong/internal/tournament"
	"github.com/playmatatu/pong/internal/ws"
)

// Deps are the services the routes are served from.
type Deps struct {
	Config   *config.Config
	Registry *tournament.Registry
	Sessions *session.Service
	Hub      *ws.Hub
	Verifier *accounts.Verifier
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	router.Use(middleware.CORSMiddleware(d.Config))

	if d.Config.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/config", handlers.GetConfig(d.Config))

		tournaments := v1.Group("/tournaments")
		{
			tournaments.POST("", handlers.CreateTournament(d.Registry))
			tournaments.GET("", handlers.ListTournaments(d.Registry))
			tournaments.GET("/:id", handlers.GetTournament(d.Registry))
			tournaments.POST("/:id/players", handlers.RegisterPlayer(d.Registry, d.Verifier))
			tournaments.POST("/:id/start", handlers.StartTournament(d.Registry))
			tournaments.POST("/:id/matches/:matchId/result", handlers.RecordMatchResult(d.Registry, d.Sessions))

			tournaments.POST("/:id/session", handlers.BeginSession(d.Sessions))
			tournaments.POST("/:id/session/:action", handlers.ControlSession(d.Sessions))
			tournaments.DELETE("/:id/session", handlers.EndSession(d.Sessions))

			tournaments.GET("/:id/ws", middleware.WebSocketCORSCheck(d.Config), handlers.WatchTournament(d.Registry, d.Hub, d.Sessions))
		}
	}
}
