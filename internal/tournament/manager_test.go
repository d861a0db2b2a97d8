package tournament

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	return func() time.Time { return ts }
}

// newStarted registers aliases in order and starts the tournament.
func newStarted(t *testing.T, aliases ...string) (*Manager, map[string]string) {
	t.Helper()
	m := newWithClock("cup", fixedClock())
	ids := make(map[string]string, len(aliases))
	for _, a := range aliases {
		p, err := m.Register(a, "")
		if err != nil {
			t.Fatalf("Register(%s): %v", a, err)
		}
		ids[a] = p.ID
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return m, ids
}

func pairOf(ids map[string]string, match Match) string {
	name := func(id string) string {
		for alias, pid := range ids {
			if pid == id {
				return alias
			}
		}
		return "?"
	}
	return fmt.Sprintf("%s-%s", name(match.Player1ID), name(match.Player2ID))
}

func TestFourPlayerBracket(t *testing.T) {
	m, ids := newStarted(t, "A", "B", "C", "D")

	tour := m.Snapshot()
	if tour.Status != StatusInProgress || tour.CurrentRound != 1 {
		t.Fatalf("after start: status=%s round=%d", tour.Status, tour.CurrentRound)
	}
	r1 := tour.RoundMatches(1)
	if len(r1) != 2 || pairOf(ids, r1[0]) != "A-B" || pairOf(ids, r1[1]) != "C-D" {
		t.Fatalf("round 1 = %v %v, want A-B and C-D", pairOf(ids, r1[0]), pairOf(ids, r1[1]))
	}
	for _, match := range r1 {
		if match.Status != MatchPending {
			t.Errorf("new match status = %s, want %s", match.Status, MatchPending)
		}
	}

	if _, err := m.RecordResult(r1[0].ID, 1, Score{Player1: 5, Player2: 2}); err != nil {
		t.Fatalf("record A over B: %v", err)
	}
	if got := m.Snapshot().CurrentRound; got != 1 {
		t.Errorf("round advanced early: current round = %d", got)
	}
	if _, err := m.RecordResult(r1[1].ID, 1, Score{Player1: 5, Player2: 4}); err != nil {
		t.Fatalf("record C over D: %v", err)
	}

	tour = m.Snapshot()
	if tour.CurrentRound != 2 {
		t.Fatalf("current round = %d, want 2", tour.CurrentRound)
	}
	r2 := tour.RoundMatches(2)
	if len(r2) != 1 || pairOf(ids, r2[0]) != "A-C" {
		t.Fatalf("round 2 = %+v, want A-C", r2)
	}

	if _, err := m.RecordResult(r2[0].ID, 1, Score{Player1: 5, Player2: 3}); err != nil {
		t.Fatalf("record final: %v", err)
	}
	tour = m.Snapshot()
	if tour.Status != StatusCompleted {
		t.Errorf("status = %s, want %s", tour.Status, StatusCompleted)
	}
	if tour.WinnerID != ids["A"] {
		t.Errorf("winner = %s, want A (%s)", tour.WinnerID, ids["A"])
	}
	if len(tour.Matches) != 3 {
		t.Errorf("total matches = %d, want 3", len(tour.Matches))
	}
}

func TestRecordResultUpdatesTallies(t *testing.T) {
	m, ids := newStarted(t, "A", "B")
	match, _ := m.NextMatch()

	got, err := m.RecordResult(match.ID, 2, Score{Player1: 3, Player2: 5})
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if got.WinnerID != ids["B"] || got.Status != MatchCompleted {
		t.Errorf("match = %+v, want completed with B winning", got)
	}
	if got.Score == nil || *got.Score != (Score{Player1: 3, Player2: 5}) {
		t.Errorf("score snapshot = %v", got.Score)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(fixedClock()()) {
		t.Errorf("completed at = %v", got.CompletedAt)
	}

	tour := m.Snapshot()
	a, _ := tour.PlayerByID(ids["A"])
	b, _ := tour.PlayerByID(ids["B"])
	if a.Losses != 1 || a.Wins != 0 || !a.Eliminated {
		t.Errorf("A = %+v, want 0-1 eliminated", a)
	}
	if b.Wins != 1 || b.Losses != 0 || b.Eliminated {
		t.Errorf("B = %+v, want 1-0 active", b)
	}
	if tour.Status != StatusCompleted || tour.WinnerID != ids["B"] {
		t.Errorf("two-player final should complete the tournament: %s winner=%s", tour.Status, tour.WinnerID)
	}
}

func TestEightPlayerBracketPairsInMatchOrder(t *testing.T) {
	m, ids := newStarted(t, "P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8")

	// second seat wins every round-1 match
	for _, match := range m.Snapshot().RoundMatches(1) {
		if _, err := m.RecordResult(match.ID, 2, Score{Player1: 1, Player2: 5}); err != nil {
			t.Fatalf("round 1: %v", err)
		}
	}
	r2 := m.Snapshot().RoundMatches(2)
	if len(r2) != 2 || pairOf(ids, r2[0]) != "P2-P4" || pairOf(ids, r2[1]) != "P6-P8" {
		t.Fatalf("round 2 = %s, %s; want P2-P4, P6-P8", pairOf(ids, r2[0]), pairOf(ids, r2[1]))
	}

	// finish the second match first; pairing still follows match order
	if _, err := m.RecordResult(r2[1].ID, 1, Score{Player1: 5, Player2: 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.RecordResult(r2[0].ID, 2, Score{Player1: 0, Player2: 5}); err != nil {
		t.Fatal(err)
	}
	r3 := m.Snapshot().RoundMatches(3)
	if len(r3) != 1 || pairOf(ids, r3[0]) != "P4-P6" {
		t.Fatalf("final = %+v, want P4-P6", r3)
	}
	if m.Snapshot().CurrentRound != 3 {
		t.Errorf("current round = %d, want 3", m.Snapshot().CurrentRound)
	}
}

func TestStartRejectsOddRoster(t *testing.T) {
	m := New("odd")
	for _, a := range []string{"A", "B", "C"} {
		if _, err := m.Register(a, ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Start(); !errors.Is(err, ErrOddRoster) {
		t.Fatalf("Start with 3 players: err = %v, want ErrOddRoster", err)
	}
	tour := m.Snapshot()
	if len(tour.Matches) != 0 || tour.Status != StatusRegistration || tour.CurrentRound != 0 {
		t.Errorf("rejected start mutated state: %d matches, status %s, round %d", len(tour.Matches), tour.Status, tour.CurrentRound)
	}
}

func TestStartRejectsSixPlayers(t *testing.T) {
	m := New("six")
	for _, a := range []string{"A", "B", "C", "D", "E", "F"} {
		if _, err := m.Register(a, ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Start(); !errors.Is(err, ErrUnevenBracket) {
		t.Fatalf("Start with 6 players: err = %v, want ErrUnevenBracket", err)
	}
	tour := m.Snapshot()
	if len(tour.Matches) != 0 || tour.Status != StatusRegistration {
		t.Errorf("rejected start mutated state: %d matches, status %s", len(tour.Matches), tour.Status)
	}

	// Dropping to four players makes a bracket where nobody is left unbeaten.
	m = New("four")
	for _, a := range []string{"A", "B", "C", "D"} {
		m.Register(a, "")
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start with 4 players: %v", err)
	}
	for {
		match, ok := m.NextMatch()
		if !ok {
			break
		}
		if _, err := m.RecordResult(match.ID, 1, Score{Player1: 3}); err != nil {
			t.Fatalf("RecordResult: %v", err)
		}
	}
	tour = m.Snapshot()
	if tour.Status != StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", tour.Status)
	}
	for _, p := range tour.Players {
		if p.ID != tour.WinnerID && !p.Eliminated {
			t.Errorf("%s is not the champion but was never eliminated", p.Alias)
		}
	}
}

func TestStartRejectsTooFewPlayers(t *testing.T) {
	m := New("solo")
	m.Register("A", "")
	if err := m.Start(); !errors.Is(err, ErrRosterSize) {
		t.Fatalf("Start with 1 player: err = %v, want ErrRosterSize", err)
	}
}

func TestRegisterLimits(t *testing.T) {
	m := New("full")
	for i := 0; i < MaxPlayers; i++ {
		if _, err := m.Register(fmt.Sprintf("p%d", i), ""); err != nil {
			t.Fatalf("Register %d: %v", i, err)
		}
	}
	if _, err := m.Register("late", ""); !errors.Is(err, ErrTournamentFull) {
		t.Errorf("ninth player: err = %v, want ErrTournamentFull", err)
	}

	m2 := New("dupes")
	m2.Register("Ace", "acct-1")
	if _, err := m2.Register("ace", ""); !errors.Is(err, ErrDuplicateAlias) {
		t.Errorf("duplicate alias: err = %v, want ErrDuplicateAlias", err)
	}
	if _, err := m2.Register("   ", ""); !errors.Is(err, ErrEmptyAlias) {
		t.Errorf("blank alias: err = %v, want ErrEmptyAlias", err)
	}
	p, _ := m2.Snapshot().PlayerByID(m2.Snapshot().Players[0].ID)
	if p.AccountID != "acct-1" {
		t.Errorf("account id = %q, want acct-1", p.AccountID)
	}
}

func TestNoRegistrationAfterStart(t *testing.T) {
	m, _ := newStarted(t, "A", "B")
	if _, err := m.Register("C", ""); !errors.Is(err, ErrNotRegistering) {
		t.Errorf("err = %v, want ErrNotRegistering", err)
	}
	if err := m.Start(); !errors.Is(err, ErrNotRegistering) {
		t.Errorf("second Start: err = %v, want ErrNotRegistering", err)
	}
}

func TestRecordResultRejections(t *testing.T) {
	m, _ := newStarted(t, "A", "B", "C", "D")
	match, _ := m.NextMatch()

	if _, err := m.RecordResult(match.ID, 3, Score{}); !errors.Is(err, ErrInvalidWinner) {
		t.Errorf("winner 3: err = %v, want ErrInvalidWinner", err)
	}
	if _, err := m.RecordResult("nope", 1, Score{}); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("unknown match: err = %v, want ErrMatchNotFound", err)
	}
	if _, err := m.RecordResult(match.ID, 1, Score{Player1: 5}); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := m.RecordResult(match.ID, 1, Score{Player1: 5}); !errors.Is(err, ErrMatchCompleted) {
		t.Errorf("second record: err = %v, want ErrMatchCompleted", err)
	}

	tour := m.Snapshot()
	winner, _ := tour.PlayerByID(match.Player1ID)
	if winner.Wins != 1 {
		t.Errorf("wins after duplicate record = %d, want 1", winner.Wins)
	}

	pre := New("pre")
	if _, err := pre.RecordResult("x", 1, Score{}); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("record before start: err = %v, want ErrNotInProgress", err)
	}
}

func TestNextMatchAndMarkInProgress(t *testing.T) {
	m, ids := newStarted(t, "A", "B", "C", "D")

	first, ok := m.NextMatch()
	if !ok || pairOf(ids, first) != "A-B" {
		t.Fatalf("next match = %+v ok=%v, want A-B", first, ok)
	}
	if err := m.MarkInProgress(first.ID); err != nil {
		t.Fatalf("MarkInProgress: %v", err)
	}
	again, _ := m.NextMatch()
	if again.ID != first.ID || again.Status != MatchInProgress {
		t.Errorf("next match while in progress = %+v", again)
	}

	m.RecordResult(first.ID, 2, Score{Player2: 5})
	if err := m.MarkInProgress(first.ID); !errors.Is(err, ErrMatchCompleted) {
		t.Errorf("mark completed match: err = %v, want ErrMatchCompleted", err)
	}
	second, _ := m.NextMatch()
	if pairOf(ids, second) != "C-D" {
		t.Errorf("next match = %s, want C-D", pairOf(ids, second))
	}
}

func TestNextMatchAfterCompletion(t *testing.T) {
	m, _ := newStarted(t, "A", "B")
	match, _ := m.NextMatch()
	m.RecordResult(match.ID, 1, Score{Player1: 5})

	if _, ok := m.NextMatch(); ok {
		t.Error("completed tournament still offers a match")
	}
	if _, err := m.RecordResult(match.ID, 1, Score{}); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("record after completion: err = %v, want ErrNotInProgress", err)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m, _ := newStarted(t, "A", "B")
	match, _ := m.NextMatch()
	m.RecordResult(match.ID, 1, Score{Player1: 5, Player2: 1})

	snap := m.Snapshot()
	snap.Players[0].Wins = 99
	snap.Matches[0].Score.Player1 = 99

	fresh := m.Snapshot()
	if fresh.Players[0].Wins == 99 || fresh.Matches[0].Score.Player1 == 99 {
		t.Error("mutating a snapshot leaked into the manager")
	}
}

func TestStandings(t *testing.T) {
	m, ids := newStarted(t, "A", "B", "C", "D")
	r1 := m.Snapshot().RoundMatches(1)
	m.RecordResult(r1[0].ID, 2, Score{Player2: 5})
	m.RecordResult(r1[1].ID, 1, Score{Player1: 5})

	st := m.Standings()
	if st[0].ID != ids["B"] || st[1].ID != ids["C"] {
		t.Errorf("leaders = %s, %s; want B, C", st[0].Alias, st[1].Alias)
	}
	if st[2].ID != ids["A"] || st[3].ID != ids["D"] {
		t.Errorf("trailing = %s, %s; want A, D", st[2].Alias, st[3].Alias)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	m := r.Create("spring")

	got, err := r.Get(m.ID())
	if err != nil || got != m {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", err)
	}
	r.Create("summer")
	if n := len(r.List()); n != 2 {
		t.Errorf("List returned %d tournaments, want 2", n)
	}
}
