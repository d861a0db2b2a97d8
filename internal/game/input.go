package game

import "sync"

// Direction is one of the four directions a paddle can be steered.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// directions is the order a paddle applies held keys in.
var directions = [...]Direction{DirUp, DirDown, DirLeft, DirRight}

// Unit is the one-pixel step dir moves a paddle by. Y grows downward.
func (d Direction) Unit() Vec2 {
	switch d {
	case DirUp:
		return NewVec2(0, -1)
	case DirDown:
		return NewVec2(0, 1)
	case DirLeft:
		return NewVec2(-1, 0)
	case DirRight:
		return NewVec2(1, 0)
	}
	return Vec2{}
}

// Binding maps each direction to the key code that drives it.
type Binding struct {
	Up    string `json:"up"`
	Down  string `json:"down"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Key returns the key code bound to dir.
func (b Binding) Key(dir Direction) string {
	switch dir {
	case DirUp:
		return b.Up
	case DirDown:
		return b.Down
	case DirLeft:
		return b.Left
	case DirRight:
		return b.Right
	}
	return ""
}

// DefaultBindings returns the keyboard layout for player 1 (WASD) and player 2 (arrows).
func DefaultBindings() [2]Binding {
	return [2]Binding{
		{Up: "w", Down: "s", Left: "a", Right: "d"},
		{Up: "ArrowUp", Down: "ArrowDown", Left: "ArrowLeft", Right: "ArrowRight"},
	}
}

// KeySet is a read-only view of held keys captured at one instant.
type KeySet map[string]bool

// Held reports whether code was held when the set was captured.
func (k KeySet) Held(code string) bool {
	return k[code]
}

// InputSource is read by the engine once per tick.
type InputSource interface {
	Snapshot() KeySet
}

// KeyState is the shared key map fed by key-down/key-up handlers.
type KeyState struct {
	mu       sync.RWMutex
	held     map[string]bool
	known    map[string]bool
	detached bool
}

// NewKeyState creates a key map that accepts only the codes in bindings.
func NewKeyState(bindings [2]Binding) *KeyState {
	known := make(map[string]bool, 8)
	for _, b := range bindings {
		for _, code := range []string{b.Up, b.Down, b.Left, b.Right} {
			if code != "" {
				known[code] = true
			}
		}
	}
	return &KeyState{
		held:  make(map[string]bool),
		known: known,
	}
}

// HandleKey records a key-down or key-up event. Unknown codes are ignored.
// Returns whether the event was applied.
func (k *KeyState) HandleKey(code string, down bool) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.detached || !k.known[code] {
		return false
	}
	if down {
		k.held[code] = true
	} else {
		delete(k.held, code)
	}
	return true
}

// Snapshot copies the held keys so a tick reads one consistent view.
func (k *KeyState) Snapshot() KeySet {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := make(KeySet, len(k.held))
	for code := range k.held {
		out[code] = true
	}
	return out
}

// Detach releases every held key and stops accepting events.
func (k *KeyState) Detach() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.detached = true
	k.held = make(map[string]bool)
}
