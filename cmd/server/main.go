package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/pong/internal/accounts"
	"github.com/playmatatu/pong/internal/api"
	"github.com/playmatatu/pong/internal/config"
	"github.com/playmatatu/pong/internal/events"
	"github.com/playmatatu/pong/internal/game"
	"github.com/playmatatu/pong/internal/metrics"
	"github.com/playmatatu/pong/internal/redis"
	"github.com/playmatatu/pong/internal/session"
	"github.com/playmatatu/pong/internal/tournament"
	"github.com/playmatatu/pong/internal/ws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	// Redis fans events out across instances; without it the hub is the only listener
	var publisher events.Publisher = hub
	rdb, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb)
		ws.StartEventSubscriber(ctx, rdb, hub)
		log.Printf("[EVENTS] publishing to redis channel %s", events.Channel)
	} else {
		log.Printf("[EVENTS] REDIS_URL not set; events go to local viewers only")
	}

	registry := tournament.NewRegistry()
	sessions := session.NewService(registry, cfg.Game,
		func(tournamentID string) game.Surface { return ws.NewFrameRecorder(hub, tournamentID) },
		session.WithPublisher(publisher),
		session.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
	)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	api.SetupRoutes(router, api.Deps{
		Config:   cfg,
		Registry: registry,
		Sessions: sessions,
		Hub:      hub,
		Verifier: accounts.NewVerifier(cfg.JWTSecret),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("[SERVER] Starting pong server on port %s (%.0fx%.0f field, first to %d)",
			cfg.Port, cfg.Game.FieldWidth, cfg.Game.FieldHeight, cfg.Game.MaxScore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[SERVER] shutting down...")
	sessions.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[SERVER] forced to shutdown: %v", err)
	}
	stop()
	log.Println("[SERVER] exited")
}
