package game

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrNoSurface is returned when the engine has nothing to render onto.
var ErrNoSurface = errors.New("rendering surface unavailable")

// Snapshot is a copy of a match's state at the end of a tick.
type Snapshot struct {
	Settings Settings   `json:"settings"`
	Paddles  [2]Paddle  `json:"paddles"`
	Ball     Ball       `json:"ball"`
	Score    Score      `json:"score"`
	State    MatchState `json:"state"`
	Winner   int        `json:"winner,omitempty"`
	Tick     uint64     `json:"tick"`
}

// FrameFlusher is implemented by surfaces that batch draw calls into frames.
type FrameFlusher interface {
	Flush()
}

type detacher interface {
	Detach()
}

type eventKind int

const (
	eventScore eventKind = iota
	eventGameEnd
)

type engineEvent struct {
	kind   eventKind
	score  Score
	winner int
}

// Engine owns one match: two paddles, the ball and the score. All mutation goes
// through Start, Pause, Reset, Tick and Destroy.
type Engine struct {
	settings  Settings
	bindings  [2]Binding
	surface   Surface
	input     InputSource
	scheduler FrameScheduler
	rng       RandomSource
	label     string

	mu        sync.Mutex
	paddles   [2]Paddle
	ball      Ball
	score     Score
	state     MatchState
	winner    int
	tick      uint64
	frame     FrameHandle
	frameSeq  uint64
	endFired  bool
	destroyed bool

	onScore func(Score)
	onEnd   func(winner int)
}

// Option customizes an Engine at construction.
type Option func(*Engine)

// WithScheduler replaces the wall-clock frame scheduler.
func WithScheduler(s FrameScheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithRandom sets the source used for ball launch directions.
func WithRandom(r RandomSource) Option {
	return func(e *Engine) { e.rng = r }
}

// WithBindings replaces the default key layout.
func WithBindings(b [2]Binding) Option {
	return func(e *Engine) { e.bindings = b }
}

// WithLabel tags the engine's log lines.
func WithLabel(label string) Option {
	return func(e *Engine) { e.label = label }
}

type noInput struct{}

func (noInput) Snapshot() KeySet { return KeySet{} }

// NewEngine builds a match in the waiting state. A nil surface is a setup error.
func NewEngine(settings Settings, surface Surface, input InputSource, opts ...Option) (*Engine, error) {
	if surface == nil {
		return nil, ErrNoSurface
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	if input == nil {
		input = noInput{}
	}

	e := &Engine{
		settings: settings,
		bindings: DefaultBindings(),
		surface:  surface,
		input:    input,
		rng:      DefaultRNG(),
		label:    "match",
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.scheduler == nil {
		e.scheduler = NewTickerScheduler(settings.FrameRate)
	}

	e.initEntities()
	e.state = StateWaiting
	return e, nil
}

// OnScoreUpdate sets the handler fired after every point. It replaces any previous handler.
func (e *Engine) OnScoreUpdate(fn func(Score)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onScore = fn
}

// OnGameEnd sets the handler fired once when the match finishes. It replaces any previous handler.
func (e *Engine) OnGameEnd(fn func(winner int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnd = fn
}

// Start begins ticking from waiting or paused. Returns false when the call was a no-op.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed || (e.state != StateWaiting && e.state != StatePaused) {
		return false
	}
	e.state = StatePlaying
	e.armFrame()
	log.Printf("[ENGINE] %s: playing (score %d-%d)", e.label, e.score.Player1, e.score.Player2)
	return true
}

// Pause halts ticking, keeping every entity as of the last completed tick.
func (e *Engine) Pause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePlaying {
		return false
	}
	e.state = StatePaused
	e.cancelFrame()
	log.Printf("[ENGINE] %s: paused at tick %d", e.label, e.tick)
	return true
}

// Reset halts ticking, puts every entity back to its initial position with a
// new launch direction and renders the fresh frame. A finished match keeps
// its result, so Reset is a no-op there and returns false.
func (e *Engine) Reset() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateFinished {
		return false
	}
	e.cancelFrame()
	e.initEntities()
	e.state = StateWaiting
	e.winner = 0
	e.tick = 0
	if !e.destroyed {
		e.render()
	}
	log.Printf("[ENGINE] %s: reset", e.label)
	return true
}

// Destroy stops scheduling, releases the input source and drops the handlers.
// The engine cannot be started again afterwards.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return
	}
	e.cancelFrame()
	e.destroyed = true
	if d, ok := e.input.(detacher); ok {
		d.Detach()
	}
	e.onScore = nil
	e.onEnd = nil
	log.Printf("[ENGINE] %s: destroyed", e.label)
}

// Tick advances one simulation step if the match is playing, then renders.
// Returns false when nothing was simulated.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	if e.state != StatePlaying {
		e.mu.Unlock()
		return false
	}
	events := e.step()
	e.render()
	onScore, onEnd := e.onScore, e.onEnd
	e.mu.Unlock()

	dispatch(events, onScore, onEnd)
	return true
}

// RenderNow draws the current state without advancing it.
func (e *Engine) RenderNow() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.render()
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// State returns the current match state.
func (e *Engine) State() MatchState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Settings: e.settings,
		Paddles:  e.paddles,
		Ball:     e.ball,
		Score:    e.score,
		State:    e.state,
		Winner:   e.winner,
		Tick:     e.tick,
	}
}

// armFrame schedules the next frame. Callers hold mu.
func (e *Engine) armFrame() {
	e.frameSeq++
	seq := e.frameSeq
	e.frame = e.scheduler.RequestFrame(func() { e.onFrame(seq) })
}

// cancelFrame invalidates the pending frame. Callers hold mu.
func (e *Engine) cancelFrame() {
	e.frameSeq++
	if e.frame != nil {
		e.frame.Cancel()
		e.frame = nil
	}
}

func (e *Engine) onFrame(seq uint64) {
	e.mu.Lock()
	// a frame that raced with pause/reset/destroy carries an old sequence
	if seq != e.frameSeq || e.state != StatePlaying {
		e.mu.Unlock()
		return
	}
	events := e.step()
	e.render()
	if e.state == StatePlaying {
		e.armFrame()
	}
	onScore, onEnd := e.onScore, e.onEnd
	e.mu.Unlock()

	dispatch(events, onScore, onEnd)
}

func dispatch(events []engineEvent, onScore func(Score), onEnd func(int)) {
	for _, ev := range events {
		switch ev.kind {
		case eventScore:
			if onScore != nil {
				onScore(ev.score)
			}
		case eventGameEnd:
			if onEnd != nil {
				onEnd(ev.winner)
			}
		}
	}
}

func (e *Engine) render() {
	Render(e.surface, e.snapshotLocked())
	if f, ok := e.surface.(FrameFlusher); ok {
		f.Flush()
	}
}

func (e *Engine) initEntities() {
	s := e.settings
	y := (s.FieldHeight - s.PaddleHeight) / 2
	half := s.FieldWidth / 2

	e.paddles[0] = Paddle{
		Player: Player1,
		X:      s.PaddleInset,
		Y:      y,
		Width:  s.PaddleWidth,
		Height: s.PaddleHeight,
		Speed:  s.PaddleSpeed,
		MinX:   0,
		MaxX:   half - s.PaddleWidth,
	}
	e.paddles[1] = Paddle{
		Player: Player2,
		X:      s.FieldWidth - s.PaddleInset - s.PaddleWidth,
		Y:      y,
		Width:  s.PaddleWidth,
		Height: s.PaddleHeight,
		Speed:  s.PaddleSpeed,
		MinX:   half,
		MaxX:   s.FieldWidth - s.PaddleWidth,
	}
	e.ball = Ball{Radius: s.BallRadius, BaseSpeed: s.BallSpeed}
	e.serveBall()
	e.score = Score{}
}

// serveBall centers the ball and launches it diagonally; each axis picks its sign independently.
func (e *Engine) serveBall() {
	e.ball.Position = NewVec2(e.settings.FieldWidth/2, e.settings.FieldHeight/2)
	e.ball.Velocity = NewVec2(
		launchSign(e.rng)*e.settings.BallSpeed,
		launchSign(e.rng)*e.settings.BallSpeed,
	)
}

// step runs one tick in fixed order: paddles, ball, walls, paddle hits, scoring.
// Callers hold mu.
func (e *Engine) step() []engineEvent {
	e.tick++
	keys := e.input.Snapshot()

	for i := range e.paddles {
		e.paddles[i].move(keys, e.bindings[i], e.settings.FieldHeight)
	}

	e.ball.Position = e.ball.Position.Plus(e.ball.Velocity)

	// no clamping: a fast ball may sit past the wall for a frame
	if CrossesHorizontalBounds(e.ball.Circle(), e.settings.FieldHeight) {
		e.ball.Velocity = ReflectY(e.ball.Velocity)
	}

	for i := range e.paddles {
		e.collidePaddle(&e.paddles[i])
	}

	return e.checkScore()
}

func (e *Engine) collidePaddle(p *Paddle) {
	r := p.Rect()
	mid := r.X + r.W/2
	b := &e.ball

	var approaching bool
	if p.Player == Player1 {
		approaching = b.Velocity.X < 0 && b.Position.X >= mid
	} else {
		approaching = b.Velocity.X > 0 && b.Position.X <= mid
	}
	if !approaching || !CircleOverlapsRect(b.Circle(), r) {
		return
	}

	b.Velocity = ReflectX(b.Velocity)
	if p.Player == Player1 {
		b.Position.X = r.Right() + b.Radius
	} else {
		b.Position.X = r.X - b.Radius
	}
	b.Velocity.Y = DeflectionVY(b.Position.Y, r, b.BaseSpeed)
}

func (e *Engine) checkScore() []engineEvent {
	switch {
	case e.ball.Position.X < 0:
		e.score.Player2++
	case e.ball.Position.X > e.settings.FieldWidth:
		e.score.Player1++
	default:
		return nil
	}

	e.serveBall()
	events := []engineEvent{{kind: eventScore, score: e.score}}

	if leader := e.score.Leader(e.settings.MaxScore); leader != 0 {
		e.state = StateFinished
		e.winner = leader
		e.cancelFrame()
		if !e.endFired {
			e.endFired = true
			events = append(events, engineEvent{kind: eventGameEnd, winner: leader})
		}
		log.Printf("[ENGINE] %s: finished %d-%d, player %d wins", e.label, e.score.Player1, e.score.Player2, leader)
	}
	return events
}
