package response

import (
	"time"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/auth"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/game"
)

// Health is the health check response
type Health struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

// Account represents an account in API responses; never carries the password
type Account struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountFromModel converts a model.Account to a response Account
func AccountFromModel(a *model.Account) Account {
	return Account{
		ID:        int64(a.ID),
		Username:  a.Username,
		Role:      string(a.Role),
		CreatedAt: a.CreatedAt,
	}
}

// AccountsFromModel converts a list of accounts
func AccountsFromModel(accounts []*model.Account) []Account {
	out := make([]Account, len(accounts))
	for i, a := range accounts {
		out[i] = AccountFromModel(a)
	}
	return out
}

// AccountList is the response for the admin account listing
type AccountList struct {
	Accounts []Account `json:"accounts"`
}

// AdminSession is the response for admin login
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminSessionFromAuth converts an auth.AdminSession
func AdminSessionFromAuth(s *auth.AdminSession) AdminSession {
	return AdminSession{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

// Game is the admin view of the current round
type Game struct {
	State       string    `json:"state"`
	PlayerCount int       `json:"player_count"`
	Players     []string  `json:"players"`
	SessionID   string    `json:"session_id,omitempty"`
	GuessCount  int       `json:"guess_count"`
	StartedAt   time.Time `json:"started_at,omitzero"`
}

// GameFromSnapshot converts a coordinator snapshot
func GameFromSnapshot(s game.Snapshot) Game {
	players := s.Players
	if players == nil {
		players = []string{}
	}
	return Game{
		State:       string(s.State),
		PlayerCount: s.PlayerCount,
		Players:     players,
		SessionID:   string(s.SessionID),
		GuessCount:  s.GuessCount,
		StartedAt:   s.StartedAt,
	}
}
