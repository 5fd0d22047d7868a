// Package game runs the two-player guessing round.
//
// The Coordinator is a state machine driven by the notification hub's
// event loop. It is not safe for concurrent use.
package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/dependencies/clock"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/dependencies/random"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/registry"
)

// PlayersPerSession is the registry size that starts a round
const PlayersPerSession = 2

// Notifier delivers events to connected clients
type Notifier interface {
	// Emit sends to a single connection
	Emit(to model.ConnID, event model.EventType, payload any)
	// Broadcast sends to every connection, logged in or not
	Broadcast(event model.EventType, payload any)
}

// Config holds configuration for the coordinator
type Config struct {
	// SessionTimeout abandons an unfinished round. Zero disables it.
	SessionTimeout time.Duration
}

// DefaultConfig returns default coordinator configuration
func DefaultConfig() Config {
	return Config{
		SessionTimeout: 2 * time.Minute,
	}
}

// Snapshot is a read-only view of coordinator state
type Snapshot struct {
	State       model.SessionState `json:"state"`
	PlayerCount int                `json:"player_count"`
	Players     []string           `json:"players"`
	SessionID   model.SessionID    `json:"session_id,omitempty"`
	GuessCount  int                `json:"guess_count"`
	StartedAt   time.Time          `json:"started_at,omitzero"`
}

// Coordinator owns the single game session and the connection registry
type Coordinator struct {
	registry *registry.Registry
	notify   Notifier
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
	timeout  time.Duration

	state   model.SessionState
	session *model.Session
}

// NewCoordinator creates an idle Coordinator with an empty registry
func NewCoordinator(
	notify Notifier,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		registry: registry.New(notify, clock, logger),
		notify:   notify,
		clock:    clock,
		random:   random,
		logger:   logger.With(slog.String("component", "coordinator")),
		timeout:  cfg.SessionTimeout,
		state:    model.StateIdle,
	}
}

// State returns the current state machine position
func (c *Coordinator) State() model.SessionState {
	return c.state
}

// PlayerCount returns the registry size
func (c *Coordinator) PlayerCount() int {
	return c.registry.Count()
}

// Snapshot returns a copy of the current state for diagnostics
func (c *Coordinator) Snapshot() Snapshot {
	snap := Snapshot{
		State:       c.state,
		PlayerCount: c.registry.Count(),
		Players:     make([]string, 0, c.registry.Count()),
	}
	for _, p := range c.registry.Players() {
		snap.Players = append(snap.Players, p.Username)
	}
	if c.session != nil {
		snap.SessionID = c.session.ID
		snap.GuessCount = len(c.session.Guesses)
		snap.StartedAt = c.session.StartedAt
	}
	return snap
}

// Join admits an authenticated account on connID.
// The second admitted player starts a round.
func (c *Coordinator) Join(connID model.ConnID, account *model.Account) error {
	if _, ok := c.registry.Get(connID); ok {
		return model.ErrAlreadyLoggedIn
	}
	if c.registry.HasUsername(account.Username) {
		return model.ErrAlreadyLoggedIn
	}
	if c.state == model.StateActive {
		return model.ErrGameInProgress
	}

	c.registry.Admit(connID, account)
	c.notify.Emit(connID, model.EventLoginSuccess, model.LoginSuccessPayload{
		Username: account.Username,
		Role:     account.Role,
		Message:  fmt.Sprintf("Welcome back, %s!", account.Username),
	})

	switch c.registry.Count() {
	case 1:
		c.notify.Emit(connID, model.EventWaitingRoom, model.MessagePayload{Message: "Waiting for another player..."})
	case PlayersPerSession:
		c.start()
	}
	return nil
}

func (c *Coordinator) start() {
	players := c.registry.Players()
	session := &model.Session{
		ID:           model.SessionID(uuid.NewString()),
		Participants: [2]*model.ConnectedPlayer{players[0], players[1]},
		Target:       random.IntRange(c.random, model.MinGuess, model.MaxGuess),
		Guesses:      make([]model.GuessRecord, 0, PlayersPerSession),
		StartedAt:    c.clock.Now(),
	}
	for _, p := range session.Participants {
		p.Guess = nil
	}

	c.session = session
	c.state = model.StateActive

	for i, p := range session.Participants {
		c.notify.Emit(p.ConnID, model.EventGameStarted, model.GameStartedPayload{
			SessionID: session.ID,
			Username:  p.Username,
			Opponent:  session.Participants[1-i].Username,
		})
	}

	c.logger.Info("game started",
		slog.String("session_id", string(session.ID)),
		slog.String("player1", session.Participants[0].Username),
		slog.String("player2", session.Participants[1].Username),
	)
}

// SubmitGuess records a participant's guess.
// Errors are reported to the submitter as guess_error and leave the session unchanged.
func (c *Coordinator) SubmitGuess(connID model.ConnID, guess int) (*model.GuessRecord, error) {
	record, err := c.submit(connID, guess)
	if err != nil {
		c.notify.Emit(connID, model.EventGuessError, model.ErrorPayload{Message: UserMessage(err)})
		return nil, err
	}
	return record, nil
}

func (c *Coordinator) submit(connID model.ConnID, guess int) (*model.GuessRecord, error) {
	if c.state != model.StateActive || c.session == nil {
		return nil, model.ErrNoActiveSession
	}
	player := c.session.Participant(connID)
	if player == nil {
		return nil, model.ErrNotParticipant
	}
	if player.HasGuessed() {
		return nil, model.ErrAlreadyGuessed
	}
	if guess < model.MinGuess || guess > model.MaxGuess {
		return nil, model.ErrGuessOutOfRange
	}

	g := guess
	player.Guess = &g

	outcome := model.ClassifyGuess(guess, c.session.Target)
	record := model.GuessRecord{
		Username: player.Username,
		Guess:    guess,
		Target:   c.session.Target,
		Outcome:  outcome,
		Message:  guessMessage(player.Username, outcome),
	}
	c.session.Guesses = append(c.session.Guesses, record)
	c.notify.Broadcast(model.EventGuessSubmitted, record)

	c.logger.Info("guess submitted",
		slog.String("session_id", string(c.session.ID)),
		slog.String("username", player.Username),
		slog.String("outcome", string(outcome)),
	)

	if c.session.IsComplete() {
		c.resolve()
	}
	return &record, nil
}

// resolve moves Active -> Resolved -> Idle and resets the registry
func (c *Coordinator) resolve() {
	c.state = model.StateResolved
	result := DetermineResult(c.session, c.random)

	c.notify.Broadcast(model.EventGameResult, result)
	c.logger.Info("game resolved",
		slog.String("session_id", string(c.session.ID)),
		slog.String("winner", result.Winner),
		slog.Bool("tie", result.Tie),
	)

	c.reset()
}

// Disconnect removes connID from the registry.
// A participant leaving mid-round discards the session without notifying anyone.
func (c *Coordinator) Disconnect(connID model.ConnID) {
	c.registry.Remove(connID)

	if c.state != model.StateActive || c.session == nil {
		return
	}
	if c.session.Participant(connID) == nil {
		return
	}

	c.logger.Info("game discarded",
		slog.String("session_id", string(c.session.ID)),
		slog.String("conn_id", string(connID)),
	)
	for _, p := range c.session.Participants {
		p.Guess = nil
	}
	c.session = nil
	c.state = model.StateIdle
}

// Tick abandons the active session once it has run past the timeout
func (c *Coordinator) Tick(now time.Time) {
	if c.timeout <= 0 || c.state != model.StateActive || c.session == nil {
		return
	}
	if now.Sub(c.session.StartedAt) < c.timeout {
		return
	}

	payload := model.GameAbandonedPayload{
		SessionID: c.session.ID,
		Reason:    "Game timed out waiting for guesses. Please log in again.",
	}
	for _, p := range c.session.Participants {
		c.notify.Emit(p.ConnID, model.EventGameAbandoned, payload)
	}

	c.logger.Warn("game abandoned",
		slog.String("session_id", string(c.session.ID)),
		slog.Duration("timeout", c.timeout),
	)

	c.reset()
}

// reset discards the session and empties the registry; everyone logs in again
func (c *Coordinator) reset() {
	c.session = nil
	c.state = model.StateIdle
	c.registry.Clear()
}

func guessMessage(username string, outcome model.Outcome) string {
	switch outcome {
	case model.OutcomeCorrect:
		return fmt.Sprintf("%s guessed the correct number!", username)
	case model.OutcomeTooLow:
		return fmt.Sprintf("%s's guess is lower than the result.", username)
	default:
		return fmt.Sprintf("%s's guess is higher than the result.", username)
	}
}
