package game

import (
	"errors"
	"fmt"
)

// Gameplay defaults. A match is played on an 800x400 field to 5 points.
const (
	DefaultFieldWidth   = 800.0
	DefaultFieldHeight  = 400.0
	DefaultPaddleWidth  = 10.0
	DefaultPaddleHeight = 100.0
	DefaultPaddleSpeed  = 6.0
	DefaultPaddleInset  = 20.0 // distance between a paddle and its goal line
	DefaultBallRadius   = 8.0
	DefaultBallSpeed    = 5.0
	DefaultMaxScore     = 5
	DefaultFrameRate    = 60
)

// Settings holds the field dimensions and gameplay constants for one match.
type Settings struct {
	FieldWidth   float64 `yaml:"field_width" json:"field_width"`
	FieldHeight  float64 `yaml:"field_height" json:"field_height"`
	PaddleWidth  float64 `yaml:"paddle_width" json:"paddle_width"`
	PaddleHeight float64 `yaml:"paddle_height" json:"paddle_height"`
	PaddleSpeed  float64 `yaml:"paddle_speed" json:"paddle_speed"`
	PaddleInset  float64 `yaml:"paddle_inset" json:"paddle_inset"`
	BallRadius   float64 `yaml:"ball_radius" json:"ball_radius"`
	BallSpeed    float64 `yaml:"ball_speed" json:"ball_speed"`
	MaxScore     int     `yaml:"max_score" json:"max_score"`
	FrameRate    int     `yaml:"frame_rate" json:"frame_rate"`
}

// DefaultSettings returns the documented gameplay defaults.
func DefaultSettings() Settings {
	return Settings{
		FieldWidth:   DefaultFieldWidth,
		FieldHeight:  DefaultFieldHeight,
		PaddleWidth:  DefaultPaddleWidth,
		PaddleHeight: DefaultPaddleHeight,
		PaddleSpeed:  DefaultPaddleSpeed,
		PaddleInset:  DefaultPaddleInset,
		BallRadius:   DefaultBallRadius,
		BallSpeed:    DefaultBallSpeed,
		MaxScore:     DefaultMaxScore,
		FrameRate:    DefaultFrameRate,
	}
}

// Validate rejects settings that cannot produce a playable field.
func (s Settings) Validate() error {
	if s.FieldWidth <= 0 || s.FieldHeight <= 0 {
		return fmt.Errorf("field must have positive size, got %.0fx%.0f", s.FieldWidth, s.FieldHeight)
	}
	if s.PaddleWidth <= 0 || s.PaddleHeight <= 0 {
		return errors.New("paddle must have positive size")
	}
	if s.PaddleHeight > s.FieldHeight {
		return fmt.Errorf("paddle height %.0f exceeds field height %.0f", s.PaddleHeight, s.FieldHeight)
	}
	if s.PaddleInset < 0 || s.PaddleInset+s.PaddleWidth > s.FieldWidth/2 {
		return fmt.Errorf("paddle inset %.0f does not fit in half field", s.PaddleInset)
	}
	if s.PaddleSpeed <= 0 || s.BallSpeed <= 0 {
		return errors.New("speeds must be positive")
	}
	if s.BallRadius <= 0 || 2*s.BallRadius >= s.FieldHeight {
		return fmt.Errorf("invalid ball radius %.1f", s.BallRadius)
	}
	if s.MaxScore < 1 {
		return fmt.Errorf("max score must be at least 1, got %d", s.MaxScore)
	}
	if s.FrameRate < 1 {
		return fmt.Errorf("frame rate must be at least 1, got %d", s.FrameRate)
	}
	return nil
}
