package events

import (
	"context"
	"testing"
)

func TestDecode(t *testing.T) {
	ev, err := Decode(`{"type":"match_result","tournament_id":"t1","match_id":"m1","player1":5,"player2":3,"winner_id":"p1"}`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.Type != TypeMatchResult || ev.MatchID != "m1" || ev.Player1 != 5 || ev.Player2 != 3 {
		t.Errorf("decoded %+v", ev)
	}

	if _, err := Decode(`{"tournament_id":"t1"}`); err == nil {
		t.Error("event without type accepted")
	}
	if _, err := Decode(`not json`); err == nil {
		t.Error("garbage accepted")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), Event{Type: TypeScore}); err != nil {
		t.Errorf("Nop.Publish = %v", err)
	}
}
