package tournament

import (
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned when no tournament has the requested id.
var ErrNotFound = errors.New("tournament not found")

// Registry keeps every live tournament in memory, keyed by id.
type Registry struct {
	mu          sync.RWMutex
	tournaments map[string]*Manager
}

func NewRegistry() *Registry {
	return &Registry{tournaments: make(map[string]*Manager)}
}

// Create opens a new tournament for registration.
func (r *Registry) Create(name string) *Manager {
	m := New(name)
	r.mu.Lock()
	r.tournaments[m.ID()] = m
	r.mu.Unlock()
	return m
}

// Get returns the tournament with the given id.
func (r *Registry) Get(id string) (*Manager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.tournaments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

// List returns snapshots of all tournaments, oldest first.
func (r *Registry) List() []Tournament {
	r.mu.RLock()
	out := make([]Tournament, 0, len(r.tournaments))
	for _, m := range r.tournaments {
		out = append(out, m.Snapshot())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
