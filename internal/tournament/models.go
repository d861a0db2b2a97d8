package tournament

import "time"

// Status is the lifecycle stage of a tournament.
type Status string

const (
	StatusRegistration Status = "REGISTRATION"
	StatusInProgress   Status = "IN_PROGRESS"
	StatusCompleted    Status = "COMPLETED"
)

// MatchStatus is the lifecycle stage of one bracket match.
type MatchStatus string

const (
	MatchPending    MatchStatus = "PENDING"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchCompleted  MatchStatus = "COMPLETED"
)

// Roster limits for single elimination without byes.
const (
	MinPlayers = 2
	MaxPlayers = 8
)

// Player is a registered contestant.
type Player struct {
	ID         string `json:"id"`
	Alias      string `json:"alias"`
	AccountID  string `json:"account_id,omitempty"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Eliminated bool   `json:"eliminated"`
}

// Score is the final score of a match, player 1 first.
type Score struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// Match is one edge of the bracket.
type Match struct {
	ID           string      `json:"id"`
	TournamentID string      `json:"tournament_id"`
	Round        int         `json:"round"`
	Player1ID    string      `json:"player1_id"`
	Player2ID    string      `json:"player2_id"`
	Score        *Score      `json:"score,omitempty"`
	WinnerID     string      `json:"winner_id,omitempty"`
	Status       MatchStatus `json:"status"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

// Tournament is the bracket aggregate. Players keep registration order and
// Matches keep creation order; both orders decide pairings.
type Tournament struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Players      []Player  `json:"players"`
	Matches      []Match   `json:"matches"`
	Status       Status    `json:"status"`
	CurrentRound int       `json:"current_round"`
	WinnerID     string    `json:"winner_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoundMatches returns the matches of round r in bracket order.
func (t Tournament) RoundMatches(r int) []Match {
	var out []Match
	for _, m := range t.Matches {
		if m.Round == r {
			out = append(out, m)
		}
	}
	return out
}

// PlayerByID looks a player up by id.
func (t Tournament) PlayerByID(id string) (Player, bool) {
	for _, p := range t.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}
