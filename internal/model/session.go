package model

import "time"

// ConnID identifies a single client connection on the notification channel
type ConnID string

// SessionID identifies one round of the game
type SessionID string

// Guess bounds, inclusive
const (
	MinGuess = 1
	MaxGuess = 50
)

// SessionState is the coordinator's state machine position
type SessionState string

const (
	StateIdle     SessionState = "idle"
	StateActive   SessionState = "active"
	StateResolved SessionState = "resolved"
)

// Outcome classifies a guess relative to the target
type Outcome string

const (
	OutcomeCorrect Outcome = "correct"
	OutcomeTooLow  Outcome = "too low"
	OutcomeTooHigh Outcome = "too high"
)

// ClassifyGuess returns the outcome of guess against target
func ClassifyGuess(guess, target int) Outcome {
	switch {
	case guess == target:
		return OutcomeCorrect
	case guess < target:
		return OutcomeTooLow
	default:
		return OutcomeTooHigh
	}
}

// ConnectedPlayer is an authenticated player holding an open connection.
// The registry references the connection by ConnID only; it does not own it.
type ConnectedPlayer struct {
	ConnID    ConnID
	AccountID AccountID
	Username  string
	Role      Role
	Guess     *int // nil until submitted
	JoinedAt  time.Time
}

// HasGuessed reports whether the player has submitted a guess
func (p *ConnectedPlayer) HasGuessed() bool {
	return p.Guess != nil
}

// GuessRecord is one submitted guess, as broadcast to clients
type GuessRecord struct {
	Username string  `json:"username"`
	Guess    int     `json:"guess"`
	Target   int     `json:"randomNumber"`
	Outcome  Outcome `json:"outcome"`
	Message  string  `json:"result"`
}

// Session is one round between exactly two participants
type Session struct {
	ID           SessionID
	Participants [2]*ConnectedPlayer
	Target       int
	Guesses      []GuessRecord
	StartedAt    time.Time
}

// Participant returns the participant owning connID, or nil
func (s *Session) Participant(connID ConnID) *ConnectedPlayer {
	for _, p := range s.Participants {
		if p != nil && p.ConnID == connID {
			return p
		}
	}
	return nil
}

// IsComplete reports whether both guesses have been recorded
func (s *Session) IsComplete() bool {
	return len(s.Guesses) >= 2
}

// Result is the outcome of a resolved session
type Result struct {
	SessionID   SessionID     `json:"session_id"`
	Target      int           `json:"randomNumber"`
	Winner      string        `json:"winner"`
	Loser       string        `json:"loser"`
	WinnerGuess int           `json:"winner_guess"`
	LoserGuess  int           `json:"loser_guess"`
	Tie         bool          `json:"tie"`
	Guesses     []GuessRecord `json:"guesses"`
	Message     string        `json:"message"`
}
