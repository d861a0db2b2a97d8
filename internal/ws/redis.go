package ws

import (
	"context"
	"log"

	"github.com/playmatatu/pong/internal/events"
	"github.com/redis/go-redis/v9"
)

// StartEventSubscriber relays events published on Redis (by this or any other
// instance) to the viewers connected here.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	events.Subscribe(ctx, rdb, func(ev events.Event) {
		if ev.TournamentID == "" {
			log.Printf("[WS] event %s without tournament id dropped", ev.Type)
			return
		}
		if hub.RoomSize(ev.TournamentID) == 0 {
			return
		}
		hub.Relay(ev)
	})
}
