package middleware

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pong/internal/config"
)

// CORSMiddleware returns a CORS middleware configured for the environment
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	log.Printf("[CORS] Environment: %s, FrontendURL: %s", cfg.Environment, cfg.FrontendURL)

	corsConfig := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin", "Content-Length", "Content-Type", "Authorization",
			"Accept", "Cache-Control", "X-Requested-With",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowOrigins:     allowedOrigins(cfg),
		AllowCredentials: true,
		MaxAge:           12 * time.Hour, // Cache preflight responses
	}
	return cors.New(corsConfig)
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.Environment == "development" {
		origins := []string{
			"http://localhost:5173", // Vite dev server
			"http://127.0.0.1:5173",
		}
		if cfg.FrontendURL != "" && !contains(origins, cfg.FrontendURL) {
			origins = append(origins, cfg.FrontendURL)
		}
		return origins
	}
	return []string{cfg.FrontendURL}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// WebSocketCORSCheck validates WebSocket upgrade origins
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only check for WebSocket upgrade requests
		if !strings.Contains(strings.ToLower(c.GetHeader("Connection")), "upgrade") ||
			strings.ToLower(c.GetHeader("Upgrade")) != "websocket" {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			c.AbortWithStatusJSON(400, gin.H{"error": "WebSocket origin required"})
			return
		}

		var allowed bool
		if cfg.Environment == "development" {
			// Allow localhost variants in dev
			allowed = strings.HasPrefix(origin, "http://localhost:") ||
				strings.HasPrefix(origin, "http://127.0.0.1:") ||
				origin == cfg.FrontendURL
		} else {
			allowed = origin == cfg.FrontendURL
		}

		if !allowed {
			c.AbortWithStatusJSON(403, gin.H{"error": "WebSocket origin not allowed"})
			return
		}

		c.Next()
	}
}
