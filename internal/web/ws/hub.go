// Package ws is the notification channel between players and the game.
//
// A single Hub goroutine owns every connection together with the game
// coordinator. Storage round-trips run on their own goroutines and post
// their results back into the loop.
package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/dependencies/clock"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/game"
)

// ErrHubStopped is returned by calls made after Run has exited
var ErrHubStopped = errors.New("hub stopped")

// Authenticator is the account store as seen by the hub
type Authenticator interface {
	Register(ctx context.Context, username, password string) (*model.Account, error)
	Authenticate(ctx context.Context, username, password string) (*model.Account, error)
}

// Config holds configuration for the hub
type Config struct {
	// StorageTimeout bounds each register or login round-trip
	StorageTimeout time.Duration
	// TickInterval is how often the coordinator checks for stalled games
	TickInterval time.Duration
	// SendBuffer is the per-client outbound queue length
	SendBuffer int
}

// DefaultConfig returns default hub configuration
func DefaultConfig() Config {
	return Config{
		StorageTimeout: 5 * time.Second,
		TickInterval:   time.Second,
		SendBuffer:     64,
	}
}

type inbound struct {
	client *Client
	env    Envelope
}

type authResult struct {
	connID   model.ConnID
	event    model.EventType
	username string
	account  *model.Account
	err      error
}

// Hub routes frames between connections and the coordinator
type Hub struct {
	auth        Authenticator
	coordinator *game.Coordinator
	clock       clock.Clock
	logger      *slog.Logger
	cfg         Config

	// Owned by the Run goroutine
	clients map[model.ConnID]*Client

	register   chan *Client
	unregister chan *Client
	incoming   chan inbound
	results    chan authResult
	snapshots  chan chan game.Snapshot
	done       chan struct{}

	connections atomic.Int64
}

// NewHub creates a Hub. buildCoordinator receives the hub as its notifier.
func NewHub(
	auth Authenticator,
	buildCoordinator func(game.Notifier) *game.Coordinator,
	clock clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Hub {
	defaults := DefaultConfig()
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = defaults.StorageTimeout
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaults.TickInterval
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaults.SendBuffer
	}

	h := &Hub{
		auth:       auth,
		clock:      clock,
		logger:     logger.With(slog.String("component", "ws")),
		cfg:        cfg,
		clients:    make(map[model.ConnID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan inbound, 64),
		results:    make(chan authResult),
		snapshots:  make(chan chan game.Snapshot),
		done:       make(chan struct{}),
	}
	h.coordinator = buildCoordinator(h)
	return h
}

// Run processes events until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.TickInterval)
	defer ticker.Stop()

	h.logger.Info("hub started")
	for {
		select {
		case c := <-h.register:
			h.clients[c.id] = c
			h.connections.Store(int64(len(h.clients)))
			h.logger.Info("client connected",
				slog.String("conn_id", string(c.id)),
				slog.Int("total_clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c.id]; !ok {
				continue
			}
			delete(h.clients, c.id)
			close(c.send)
			h.connections.Store(int64(len(h.clients)))
			h.coordinator.Disconnect(c.id)
			h.logger.Info("client disconnected",
				slog.String("conn_id", string(c.id)),
				slog.Duration("connection_duration", clock.Since(h.clock, c.connectedAt)),
				slog.Int("total_clients", len(h.clients)))

		case in := <-h.incoming:
			h.handle(ctx, in)

		case res := <-h.results:
			h.complete(res)

		case reply := <-h.snapshots:
			reply <- h.coordinator.Snapshot()

		case <-ticker.C:
			h.coordinator.Tick(h.clock.Now())

		case <-ctx.Done():
			count := len(h.clients)
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.connections.Store(0)
			close(h.done)
			h.logger.Info("hub stopped", slog.Int("disconnected_clients", count))
			return
		}
	}
}

// Done is closed once Run has returned
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// ClientCount returns the number of open connections
func (h *Hub) ClientCount() int {
	return int(h.connections.Load())
}

// Snapshot returns the coordinator state as seen from the loop
func (h *Hub) Snapshot(ctx context.Context) (game.Snapshot, error) {
	reply := make(chan game.Snapshot, 1)
	select {
	case h.snapshots <- reply:
	case <-h.done:
		return game.Snapshot{}, ErrHubStopped
	case <-ctx.Done():
		return game.Snapshot{}, ctx.Err()
	}

	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return game.Snapshot{}, ctx.Err()
	}
}

// Attach registers an upgraded connection and starts its pumps
func (h *Hub) Attach(conn *websocket.Conn) error {
	c := &Client{
		id:          model.ConnID(newConnID()),
		hub:         h,
		conn:        conn,
		send:        make(chan []byte, h.cfg.SendBuffer),
		connectedAt: h.clock.Now(),
	}
	c.logger = h.logger.With(slog.String("conn_id", string(c.id)))

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return ErrHubStopped
	}

	go c.writePump()
	go c.readPump()
	return nil
}

// Emit queues an event for one connection.
// Only called from the Run goroutine.
func (h *Hub) Emit(to model.ConnID, event model.EventType, payload any) {
	c, ok := h.clients[to]
	if !ok {
		return
	}
	msg, err := encode(event, payload)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}
	h.send(c, event, msg)
}

// Broadcast queues an event for every connection.
// Only called from the Run goroutine.
func (h *Hub) Broadcast(event model.EventType, payload any) {
	msg, err := encode(event, payload)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
		return
	}

	dropped := 0
	for _, c := range h.clients {
		if !h.send(c, event, msg) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("broadcast partial failure",
			slog.String("event", string(event)),
			slog.Int("sent", len(h.clients)-dropped),
			slog.Int("dropped", dropped))
	}
}

func (h *Hub) send(c *Client, event model.EventType, msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		h.logger.Warn("message dropped - client buffer full",
			slog.String("conn_id", string(c.id)),
			slog.String("event", string(event)))
		return false
	}
}

// deliver hands an inbound frame to the loop; false once the hub has stopped
func (h *Hub) deliver(in inbound) bool {
	select {
	case h.incoming <- in:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) handle(ctx context.Context, in inbound) {
	id := in.client.id
	if _, ok := h.clients[id]; !ok {
		return
	}

	switch in.env.Event {
	case model.EventRegister, model.EventLogin:
		creds, err := decodeCredentials(in.env.Data)
		if err != nil {
			h.Emit(id, errorEvent(in.env.Event), model.ErrorPayload{Message: "Username and password are required."})
			return
		}
		go h.authenticate(ctx, id, in.env.Event, creds)

	case model.EventGuess:
		guess, err := parseGuess(in.env.Data)
		if err != nil {
			h.Emit(id, model.EventGuessError, model.ErrorPayload{
				Message: fmt.Sprintf("Guess must be a whole number between %d and %d.", model.MinGuess, model.MaxGuess),
			})
			return
		}
		if _, err := h.coordinator.SubmitGuess(id, guess); err != nil {
			h.logger.Debug("guess rejected",
				slog.String("conn_id", string(id)),
				slog.String("error", err.Error()))
		}

	default:
		in.client.logger.Warn("unknown event", slog.String("event", string(in.env.Event)))
	}
}

// authenticate runs off-loop; its result re-enters through h.results
func (h *Hub) authenticate(ctx context.Context, id model.ConnID, event model.EventType, creds model.CredentialsPayload) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.StorageTimeout)
	defer cancel()

	res := authResult{connID: id, event: event, username: creds.Username}
	if event == model.EventRegister {
		res.account, res.err = h.auth.Register(ctx, creds.Username, creds.Password)
	} else {
		res.account, res.err = h.auth.Authenticate(ctx, creds.Username, creds.Password)
	}

	select {
	case h.results <- res:
	case <-h.done:
	}
}

func (h *Hub) complete(res authResult) {
	if _, ok := h.clients[res.connID]; !ok {
		h.logger.Debug("dropping result for closed connection",
			slog.String("conn_id", string(res.connID)),
			slog.String("event", string(res.event)))
		return
	}

	if res.err != nil {
		level := slog.LevelInfo
		if errors.Is(res.err, model.ErrStorageFailure) {
			level = slog.LevelError
		}
		h.logger.Log(context.Background(), level, "authentication failed",
			slog.String("conn_id", string(res.connID)),
			slog.String("event", string(res.event)),
			slog.String("username", res.username),
			slog.String("error", res.err.Error()))
		h.Emit(res.connID, errorEvent(res.event), model.ErrorPayload{Message: authMessage(res.event, res.err)})
		return
	}

	if res.event == model.EventRegister {
		h.Emit(res.connID, model.EventRegistrationSuccess, model.RegistrationSuccessPayload{
			Message: fmt.Sprintf("Welcome, %s!", res.account.Username),
		})
		return
	}

	if err := h.coordinator.Join(res.connID, res.account); err != nil {
		h.Emit(res.connID, model.EventLoginError, model.ErrorPayload{Message: game.UserMessage(err)})
	}
}

func errorEvent(event model.EventType) model.EventType {
	if event == model.EventRegister {
		return model.EventRegistrationError
	}
	return model.EventLoginError
}

// authMessage maps an account error to the text shown to players
func authMessage(event model.EventType, err error) string {
	switch {
	case errors.Is(err, model.ErrStorageFailure), errors.Is(err, context.DeadlineExceeded):
		return "Service unavailable, please try again."
	case errors.Is(err, model.ErrDuplicateUsername):
		return "Username already taken."
	case event == model.EventRegister && errors.Is(err, model.ErrInvalidCredentials):
		return fmt.Sprintf("Username or password must be at least %d characters long.", model.MinCredentialLength)
	case errors.Is(err, model.ErrInvalidCredentials):
		return "Invalid username or password."
	default:
		return "Something went wrong, please try again."
	}
}
