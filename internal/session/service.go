package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/pong/internal/events"
	"github.com/playmatatu/pong/internal/game"
	"github.com/playmatatu/pong/internal/metrics"
	"github.com/playmatatu/pong/internal/tournament"
)

var (
	ErrSessionActive  = errors.New("a match is already being played in this tournament")
	ErrNoSession      = errors.New("no match is being played in this tournament")
	ErrNoPendingMatch = errors.New("no match left to play in the current round")
	ErrUnknownAction  = errors.New("unknown action")
	ErrMatchLive      = errors.New("match is being played live")
)

// Control actions.
const (
	ActionStart = "start"
	ActionPause = "pause"
	ActionReset = "reset"
)

// SurfaceFactory returns the surface a tournament's matches are drawn on.
type SurfaceFactory func(tournamentID string) game.Surface

// Session ties the engine playing a match to that match in the bracket.
type Session struct {
	TournamentID string
	MatchID      string
	Round        int
	Engine       *game.Engine
	Keys         *game.KeyState
}

// Service runs at most one engine per tournament and reports each finished
// match back to the bracket.
type Service struct {
	registry   *tournament.Registry
	settings   game.Settings
	surfaces   SurfaceFactory
	publisher  events.Publisher
	metrics    *metrics.Metrics
	engineOpts []game.Option

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option customizes a Service.
type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithEngineOptions passes opts to every engine the service creates.
func WithEngineOptions(opts ...game.Option) Option {
	return func(s *Service) { s.engineOpts = append(s.engineOpts, opts...) }
}

func NewService(registry *tournament.Registry, settings game.Settings, surfaces SurfaceFactory, opts ...Option) *Service {
	s := &Service{
		registry:  registry,
		settings:  settings,
		surfaces:  surfaces,
		publisher: events.Nop{},
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin attaches a fresh engine to the tournament's next match and renders
// its first frame. The engine waits for a start action.
func (s *Service) Begin(tournamentID string) (*Session, error) {
	mgr, err := s.registry.Get(tournamentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[tournamentID]; ok {
		return nil, ErrSessionActive
	}
	match, ok := mgr.NextMatch()
	if !ok {
		return nil, ErrNoPendingMatch
	}
	if err := mgr.MarkInProgress(match.ID); err != nil {
		return nil, err
	}

	keys := game.NewKeyState(game.DefaultBindings())
	opts := append([]game.Option{game.WithLabel("match " + match.ID)}, s.engineOpts...)
	engine, err := game.NewEngine(s.settings, s.surfaces(tournamentID), keys, opts...)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	sess := &Session{
		TournamentID: tournamentID,
		MatchID:      match.ID,
		Round:        match.Round,
		Engine:       engine,
		Keys:         keys,
	}

	var last game.Score
	engine.OnScoreUpdate(func(sc game.Score) {
		s.metrics.Point(scorer(last, sc))
		last = sc
		s.publish(events.Event{
			Type:         events.TypeScore,
			TournamentID: tournamentID,
			MatchID:      match.ID,
			Round:        match.Round,
			Player1:      sc.Player1,
			Player2:      sc.Player2,
		})
	})
	engine.OnGameEnd(func(winner int) {
		s.finish(sess, winner)
	})

	s.sessions[tournamentID] = sess
	engine.RenderNow()
	s.metrics.SessionStarted()
	s.publish(events.Event{
		Type:         events.TypeMatchStarted,
		TournamentID: tournamentID,
		MatchID:      match.ID,
		Round:        match.Round,
	})
	log.Printf("[SESSION] %s: round %d match %s attached", tournamentID, match.Round, match.ID)
	return sess, nil
}

// Get returns the session running in a tournament.
func (s *Service) Get(tournamentID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[tournamentID]
	return sess, ok
}

// HandleKey feeds a key event into the tournament's running match.
// Returns false when no match is running or the key is not bound.
func (s *Service) HandleKey(tournamentID, code string, down bool) bool {
	sess, ok := s.Get(tournamentID)
	if !ok {
		return false
	}
	return sess.Keys.HandleKey(code, down)
}

// Control applies start, pause or reset to the running match and returns its state.
func (s *Service) Control(tournamentID, action string) (game.Snapshot, error) {
	sess, ok := s.Get(tournamentID)
	if !ok {
		return game.Snapshot{}, ErrNoSession
	}

	switch action {
	case ActionStart:
		sess.Engine.Start()
	case ActionPause:
		sess.Engine.Pause()
	case ActionReset:
		sess.Engine.Reset()
	default:
		return game.Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return sess.Engine.Snapshot(), nil
}

// End tears down the running match without recording a result. The match
// stays in progress and the next Begin picks it up again.
func (s *Service) End(tournamentID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[tournamentID]
	if ok {
		delete(s.sessions, tournamentID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrNoSession
	}
	sess.Engine.Destroy()
	s.metrics.SessionEnded()
	s.publish(events.Event{
		Type:         events.TypeSessionEnded,
		TournamentID: tournamentID,
		MatchID:      sess.MatchID,
		Round:        sess.Round,
	})
	log.Printf("[SESSION] %s: match %s abandoned", tournamentID, sess.MatchID)
	return nil
}

// finish records a finished match and detaches its engine. It runs from the
// engine's game-end handler, after the engine has released its lock.
func (s *Service) finish(sess *Session, winner int) {
	snap := sess.Engine.Snapshot()
	score := tournament.Score{Player1: snap.Score.Player1, Player2: snap.Score.Player2}

	mgr, err := s.registry.Get(sess.TournamentID)
	if err != nil {
		log.Printf("[SESSION] %s: tournament vanished before result: %v", sess.TournamentID, err)
	}

	s.mu.Lock()
	attached := s.sessions[sess.TournamentID] == sess
	if attached {
		delete(s.sessions, sess.TournamentID)
	}
	var match tournament.Match
	if mgr != nil {
		match, err = mgr.RecordResult(sess.MatchID, winner, score)
	}
	s.mu.Unlock()

	sess.Engine.Destroy()
	if attached {
		s.metrics.SessionEnded()
	}
	if mgr == nil {
		return
	}
	if err != nil {
		log.Printf("[SESSION] %s: failed to record match %s: %v", sess.TournamentID, sess.MatchID, err)
		return
	}
	s.announce(mgr, match)
}

// RecordResult records a match decided without an engine, such as one played
// offline, and reports it the same way a played match is reported. A match
// with an engine attached can only end by being played out.
func (s *Service) RecordResult(tournamentID, matchID string, winner int, score tournament.Score) (tournament.Match, error) {
	mgr, err := s.registry.Get(tournamentID)
	if err != nil {
		return tournament.Match{}, err
	}

	s.mu.Lock()
	if sess, ok := s.sessions[tournamentID]; ok && sess.MatchID == matchID {
		s.mu.Unlock()
		return tournament.Match{}, ErrMatchLive
	}
	match, err := mgr.RecordResult(matchID, winner, score)
	s.mu.Unlock()
	if err != nil {
		return tournament.Match{}, err
	}

	log.Printf("[SESSION] %s: match %s recorded without an engine", tournamentID, matchID)
	s.announce(mgr, match)
	return match, nil
}

// announce publishes a recorded result and whatever it did to the bracket.
func (s *Service) announce(mgr *tournament.Manager, match tournament.Match) {
	s.metrics.MatchFinished()
	ev := events.Event{
		Type:         events.TypeMatchResult,
		TournamentID: match.TournamentID,
		MatchID:      match.ID,
		Round:        match.Round,
		WinnerID:     match.WinnerID,
	}
	if match.Score != nil {
		ev.Player1, ev.Player2 = match.Score.Player1, match.Score.Player2
	}
	s.publish(ev)

	t := mgr.Snapshot()
	switch {
	case t.Status == tournament.StatusCompleted:
		s.metrics.TournamentCompleted()
		s.publish(events.Event{
			Type:         events.TypeTournamentCompleted,
			TournamentID: t.ID,
			Round:        t.CurrentRound,
			WinnerID:     t.WinnerID,
		})
	case t.CurrentRound > match.Round:
		s.publish(events.Event{
			Type:         events.TypeRoundStarted,
			TournamentID: t.ID,
			Round:        t.CurrentRound,
		})
	}
}

// scorer works out who took the point between two consecutive score updates.
// A reset in between restarts the count, so a 1-0 total is read on its own.
func scorer(prev, cur game.Score) int {
	if cur.Player1+cur.Player2 == 1 {
		if cur.Player1 == 1 {
			return game.Player1
		}
		return game.Player2
	}
	if cur.Player1 > prev.Player1 {
		return game.Player1
	}
	return game.Player2
}

func (s *Service) publish(ev events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log.Printf("[EVENTS] %s for %s not published: %v", ev.Type, ev.TournamentID, err)
	}
}

// Shutdown destroys every running engine.
func (s *Service) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for id, sess := range sessions {
		sess.Engine.Destroy()
		s.metrics.SessionEnded()
		log.Printf("[SESSION] %s: engine stopped on shutdown", id)
	}
}
