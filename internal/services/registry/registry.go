// Package registry tracks the logged-in players holding open connections.
//
// A Registry is not safe for concurrent use. It is owned by the
// notification hub's event loop and only touched from that goroutine.
package registry

import (
	"log/slog"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/dependencies/clock"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
)

// Broadcaster sends an event to every connected client
type Broadcaster interface {
	Broadcast(event model.EventType, payload any)
}

// Registry is the ordered list of admitted players
type Registry struct {
	players []*model.ConnectedPlayer
	notify  Broadcaster
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates an empty Registry
func New(notify Broadcaster, clock clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		notify: notify,
		clock:  clock,
		logger: logger.With(slog.String("component", "registry")),
	}
}

// Admit appends an authenticated player and broadcasts the new count.
// Callers check Get and HasUsername first; Admit does not deduplicate.
func (r *Registry) Admit(connID model.ConnID, account *model.Account) *model.ConnectedPlayer {
	player := &model.ConnectedPlayer{
		ConnID:    connID,
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
		JoinedAt:  r.clock.Now(),
	}
	r.players = append(r.players, player)

	r.logger.Info("player admitted",
		slog.String("conn_id", string(connID)),
		slog.String("username", account.Username),
		slog.Int("count", len(r.players)))

	r.broadcastCount()
	return player
}

// Remove drops the player on connID and broadcasts the new count.
// The count is broadcast even when connID was never admitted.
func (r *Registry) Remove(connID model.ConnID) (*model.ConnectedPlayer, bool) {
	var removed *model.ConnectedPlayer
	for i, p := range r.players {
		if p.ConnID == connID {
			removed = p
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}

	if removed != nil {
		r.logger.Info("player removed",
			slog.String("conn_id", string(connID)),
			slog.String("username", removed.Username),
			slog.Int("count", len(r.players)))
	}

	r.broadcastCount()
	return removed, removed != nil
}

// Clear removes every player and broadcasts the new count
func (r *Registry) Clear() {
	r.players = nil
	r.broadcastCount()
}

// Count returns the number of admitted players
func (r *Registry) Count() int {
	return len(r.players)
}

// Players returns the admitted players in admission order
func (r *Registry) Players() []*model.ConnectedPlayer {
	out := make([]*model.ConnectedPlayer, len(r.players))
	copy(out, r.players)
	return out
}

// Get returns the player on connID
func (r *Registry) Get(connID model.ConnID) (*model.ConnectedPlayer, bool) {
	for _, p := range r.players {
		if p.ConnID == connID {
			return p, true
		}
	}
	return nil, false
}

// HasUsername reports whether username is already admitted on any connection
func (r *Registry) HasUsername(username string) bool {
	for _, p := range r.players {
		if p.Username == username {
			return true
		}
	}
	return false
}

func (r *Registry) broadcastCount() {
	r.notify.Broadcast(model.EventPlayerCount, model.PlayerCountPayload{Count: len(r.players)})
}
