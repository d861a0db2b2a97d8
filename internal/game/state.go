package game

// MatchState represents the current state of a match
type MatchState string

const (
	StateWaiting  MatchState = "WAITING"
	StatePlaying  MatchState = "PLAYING"
	StatePaused   MatchState = "PAUSED"
	StateFinished MatchState = "FINISHED"
)

// Player identifiers. Player 1 defends the left goal, player 2 the right.
const (
	Player1 = 1
	Player2 = 2
)
