package tournament

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotRegistering = errors.New("tournament is not accepting registrations")
	ErrNotInProgress  = errors.New("tournament is not in progress")
	ErrTournamentFull = errors.New("tournament roster is full")
	ErrDuplicateAlias = errors.New("alias already registered")
	ErrEmptyAlias     = errors.New("alias is required")
	ErrRosterSize     = errors.New("roster must have between 2 and 8 players")
	ErrOddRoster      = errors.New("roster must have an even number of players")
	ErrUnevenBracket  = errors.New("roster must be a power of two so every round pairs up")
	ErrMatchNotFound  = errors.New("match not found in current round")
	ErrMatchCompleted = errors.New("match already has a result")
	ErrInvalidWinner  = errors.New("winner must be 1 or 2")
)

// Manager owns one tournament. Every mutation goes through its methods and
// completes before the next one starts.
type Manager struct {
	mu  sync.RWMutex
	t   Tournament
	now func() time.Time
}

// New creates a tournament open for registration.
func New(name string) *Manager {
	return newWithClock(name, time.Now)
}

func newWithClock(name string, now func() time.Time) *Manager {
	return &Manager{
		t: Tournament{
			ID:        uuid.NewString(),
			Name:      name,
			Players:   []Player{},
			Matches:   []Match{},
			Status:    StatusRegistration,
			CreatedAt: now(),
		},
		now: now,
	}
}

// ID returns the tournament id.
func (m *Manager) ID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t.ID
}

// Register adds a player at the end of the roster.
func (m *Manager) Register(alias, accountID string) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	alias = strings.TrimSpace(alias)
	if alias == "" {
		return Player{}, ErrEmptyAlias
	}
	if m.t.Status != StatusRegistration {
		return Player{}, ErrNotRegistering
	}
	if len(m.t.Players) >= MaxPlayers {
		return Player{}, ErrTournamentFull
	}
	for _, p := range m.t.Players {
		if strings.EqualFold(p.Alias, alias) {
			return Player{}, fmt.Errorf("%w: %s", ErrDuplicateAlias, alias)
		}
	}

	p := Player{ID: uuid.NewString(), Alias: alias, AccountID: accountID}
	m.t.Players = append(m.t.Players, p)
	log.Printf("[TOURNAMENT] %s: registered %s (%d/%d)", m.t.ID, alias, len(m.t.Players), MaxPlayers)
	return p, nil
}

// Start closes registration and pairs round 1 in registration order: (0,1), (2,3), ...
// Rosters outside [2,8], of odd size, or of a size whose later rounds would
// leave a winner unpaired (6) are rejected before any match exists.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.t.Status != StatusRegistration {
		return ErrNotRegistering
	}
	n := len(m.t.Players)
	if n < MinPlayers || n > MaxPlayers {
		return fmt.Errorf("%w: got %d", ErrRosterSize, n)
	}
	if n%2 != 0 {
		return fmt.Errorf("%w: got %d", ErrOddRoster, n)
	}
	if n&(n-1) != 0 {
		return fmt.Errorf("%w: got %d", ErrUnevenBracket, n)
	}

	ids := make([]string, n)
	for i, p := range m.t.Players {
		ids[i] = p.ID
	}
	m.appendRound(1, ids)
	m.t.Status = StatusInProgress
	m.t.CurrentRound = 1
	log.Printf("[TOURNAMENT] %s: started with %d players, %d matches in round 1", m.t.ID, n, n/2)
	return nil
}

// MarkInProgress flags a pending match of the current round as being played.
func (m *Manager) MarkInProgress(matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.t.Status != StatusInProgress {
		return ErrNotInProgress
	}
	i := m.currentMatchIndex(matchID)
	if i < 0 {
		return ErrMatchNotFound
	}
	match := &m.t.Matches[i]
	if match.Status == MatchCompleted {
		return ErrMatchCompleted
	}
	match.Status = MatchInProgress
	return nil
}

// RecordResult completes a match of the current round. winner is 1 or 2.
// It updates both players' tallies and advances the bracket when the round is done.
// A match can be recorded once; a second call returns ErrMatchCompleted.
func (m *Manager) RecordResult(matchID string, winner int, score Score) (Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.t.Status != StatusInProgress {
		return Match{}, ErrNotInProgress
	}
	if winner != 1 && winner != 2 {
		return Match{}, ErrInvalidWinner
	}
	i := m.currentMatchIndex(matchID)
	if i < 0 {
		return Match{}, ErrMatchNotFound
	}
	match := &m.t.Matches[i]
	if match.Status == MatchCompleted {
		return Match{}, ErrMatchCompleted
	}

	winnerID, loserID := match.Player1ID, match.Player2ID
	if winner == 2 {
		winnerID, loserID = loserID, winnerID
	}

	now := m.now()
	s := score
	match.Score = &s
	match.WinnerID = winnerID
	match.Status = MatchCompleted
	match.CompletedAt = &now

	if w := m.playerIndex(winnerID); w >= 0 {
		m.t.Players[w].Wins++
	}
	if l := m.playerIndex(loserID); l >= 0 {
		m.t.Players[l].Losses++
		m.t.Players[l].Eliminated = true
	}
	result := *match
	log.Printf("[TOURNAMENT] %s: round %d match %s won by %s (%d-%d)",
		m.t.ID, match.Round, match.ID, winnerID, score.Player1, score.Player2)

	m.advanceRound()
	return result, nil
}

// advanceRound either waits, finishes the tournament, or pairs the current
// round's winners in match order into the next round. Callers hold mu.
func (m *Manager) advanceRound() {
	var winners []string
	count := 0
	for _, match := range m.t.Matches {
		if match.Round != m.t.CurrentRound {
			continue
		}
		count++
		if match.Status != MatchCompleted {
			return
		}
		winners = append(winners, match.WinnerID)
	}

	if count == 1 {
		m.t.Status = StatusCompleted
		m.t.WinnerID = winners[0]
		log.Printf("[TOURNAMENT] %s: completed, winner %s", m.t.ID, m.t.WinnerID)
		return
	}

	next := m.t.CurrentRound + 1
	m.appendRound(next, winners)
	m.t.CurrentRound = next
	log.Printf("[TOURNAMENT] %s: round %d generated with %d matches", m.t.ID, next, len(winners)/2)
}

// appendRound pairs ids consecutively into pending matches. Callers hold mu.
func (m *Manager) appendRound(round int, ids []string) {
	for i := 0; i+1 < len(ids); i += 2 {
		m.t.Matches = append(m.t.Matches, Match{
			ID:           uuid.NewString(),
			TournamentID: m.t.ID,
			Round:        round,
			Player1ID:    ids[i],
			Player2ID:    ids[i+1],
			Status:       MatchPending,
		})
	}
}

func (m *Manager) currentMatchIndex(matchID string) int {
	for i, match := range m.t.Matches {
		if match.ID == matchID && match.Round == m.t.CurrentRound {
			return i
		}
	}
	return -1
}

func (m *Manager) playerIndex(id string) int {
	for i, p := range m.t.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// NextMatch returns the first unfinished match of the current round, in bracket order.
func (m *Manager) NextMatch() (Match, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.t.Status != StatusInProgress {
		return Match{}, false
	}
	for _, match := range m.t.Matches {
		if match.Round == m.t.CurrentRound && match.Status != MatchCompleted {
			return match, true
		}
	}
	return Match{}, false
}

// Snapshot returns a deep copy of the tournament.
func (m *Manager) Snapshot() Tournament {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t := m.t
	t.Players = make([]Player, len(m.t.Players))
	copy(t.Players, m.t.Players)
	t.Matches = make([]Match, len(m.t.Matches))
	for i, match := range m.t.Matches {
		if match.Score != nil {
			s := *match.Score
			match.Score = &s
		}
		if match.CompletedAt != nil {
			ts := *match.CompletedAt
			match.CompletedAt = &ts
		}
		t.Matches[i] = match
	}
	return t
}

// Standings orders players by wins, then fewest losses, then registration order.
func (m *Manager) Standings() []Player {
	m.mu.RLock()
	players := append([]Player(nil), m.t.Players...)
	m.mu.RUnlock()

	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Wins != players[j].Wins {
			return players[i].Wins > players[j].Wins
		}
		return players[i].Losses < players[j].Losses
	})
	return players
}
