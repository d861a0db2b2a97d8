package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/playmatatu/pong/internal/game"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Environment
	Environment string

	// Redis (empty disables event publishing)
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Security
	JWTSecret string

	// Game Settings
	GameTuningFile string
	Game           game.Settings
}

// Load reads the environment (and .env if present). Gameplay values start from
// the defaults, then the tuning file, then individual env overrides.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Environment:    getEnv("APP_ENV", "development"),
		RedisURL:       getEnv("REDIS_URL", ""),
		Port:           getEnv("APP_PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me-in-production"),
		GameTuningFile: getEnv("GAME_TUNING_FILE", ""),
		Game:           game.DefaultSettings(),
	}

	if cfg.GameTuningFile != "" {
		if err := loadTuning(cfg.GameTuningFile, &cfg.Game); err != nil {
			return nil, err
		}
		log.Printf("[CONFIG] loaded game tuning from %s", cfg.GameTuningFile)
	}

	g := &cfg.Game
	g.FieldWidth = getEnvFloat("FIELD_WIDTH", g.FieldWidth)
	g.FieldHeight = getEnvFloat("FIELD_HEIGHT", g.FieldHeight)
	g.PaddleWidth = getEnvFloat("PADDLE_WIDTH", g.PaddleWidth)
	g.PaddleHeight = getEnvFloat("PADDLE_HEIGHT", g.PaddleHeight)
	g.PaddleSpeed = getEnvFloat("PADDLE_SPEED", g.PaddleSpeed)
	g.BallRadius = getEnvFloat("BALL_RADIUS", g.BallRadius)
	g.BallSpeed = getEnvFloat("BALL_SPEED", g.BallSpeed)
	g.MaxScore = getEnvInt("MAX_SCORE", g.MaxScore)
	g.FrameRate = getEnvInt("FRAME_RATE", g.FrameRate)

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("game settings: %w", err)
	}
	return cfg, nil
}

// loadTuning overlays a YAML file onto s. Keys missing from the file keep their value.
func loadTuning(path string, s *game.Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
