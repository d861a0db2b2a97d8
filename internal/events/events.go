package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel match and tournament events go to.
const Channel = "pong_events"

// Event types.
const (
	TypeMatchStarted        = "match_started"
	TypeScore               = "score"
	TypeMatchResult         = "match_result"
	TypeRoundStarted        = "round_started"
	TypeTournamentCompleted = "tournament_completed"
	TypeSessionEnded        = "session_ended"
)

// Event is the JSON payload published for every bracket or match change.
type Event struct {
	Type         string    `json:"type"`
	TournamentID string    `json:"tournament_id"`
	MatchID      string    `json:"match_id,omitempty"`
	Round        int       `json:"round,omitempty"`
	Player1      int       `json:"player1"`
	Player2      int       `json:"player2"`
	WinnerID     string    `json:"winner_id,omitempty"`
	At           time.Time `json:"at"`
}

// Publisher delivers events to whoever is listening.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event. Used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// RedisPublisher publishes events as JSON on a Redis channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: Channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Decode parses a published payload.
func Decode(payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, err
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("event without type")
	}
	return ev, nil
}

// Subscribe delivers events from the channel to fn until ctx is done.
// Payloads that fail to decode are logged and skipped.
func Subscribe(ctx context.Context, rdb *redis.Client, fn func(Event)) {
	if rdb == nil {
		log.Println("[EVENTS] Redis client not set; subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, Channel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[EVENTS] %s subscriber started", Channel)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[EVENTS] %s subscriber stopped", Channel)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ev, err := Decode(msg.Payload)
				if err != nil {
					log.Printf("[EVENTS] invalid event payload: %v", err)
					continue
				}
				fn(ev)
			}
		}
	}()
}
