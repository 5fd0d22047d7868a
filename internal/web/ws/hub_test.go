package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/dependencies/clock"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/dependencies/mocks"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/auth"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/game"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage/memory"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/testutil"
)

const readTimeout = 2 * time.Second

type HubSuite struct {
	suite.Suite
	random *mocks.MockRandom
	logs   *testutil.LogBuffer
	hub    *Hub
	server *httptest.Server
	cancel context.CancelFunc
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	logger, logs := testutil.BufferLogger()
	s.logs = logs
	clk := clock.New()
	s.random = mocks.NewMockRandom()

	authService := auth.New(memory.New(), clk, auth.Config{BcryptCost: bcrypt.MinCost})
	s.hub = NewHub(authService, func(n game.Notifier) *game.Coordinator {
		return game.NewCoordinator(n, clk, s.random, game.DefaultConfig(), logger)
	}, clk, Config{TickInterval: time.Hour}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.hub.Run(ctx)

	s.server = httptest.NewServer(NewHandler(s.hub, nil, logger))
}

func (s *HubSuite) TearDownTest() {
	s.cancel()
	<-s.hub.Done()
	s.server.Close()
}

// testClient is a player's side of the connection
type testClient struct {
	s    *HubSuite
	conn *websocket.Conn
}

func (s *HubSuite) dial() *testClient {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return &testClient{s: s, conn: conn}
}

func (c *testClient) send(event model.EventType, payload any) {
	data, err := json.Marshal(payload)
	c.s.Require().NoError(err)
	c.s.Require().NoError(c.conn.WriteJSON(Envelope{Event: event, Data: data}))
}

// waitFor reads frames until one with the given event arrives
func (c *testClient) waitFor(event model.EventType) json.RawMessage {
	deadline := time.Now().Add(readTimeout)
	for {
		c.s.Require().NoError(c.conn.SetReadDeadline(deadline))
		var env Envelope
		err := c.conn.ReadJSON(&env)
		c.s.Require().NoError(err, "waiting for %s", event)
		if env.Event == event {
			return env.Data
		}
	}
}

func (c *testClient) waitForMessage(event model.EventType) string {
	var payload model.ErrorPayload
	c.s.Require().NoError(json.Unmarshal(c.waitFor(event), &payload))
	return payload.Message
}

// waitForCount reads player_count frames until count is reported
func (c *testClient) waitForCount(count int) {
	for {
		var payload model.PlayerCountPayload
		c.s.Require().NoError(json.Unmarshal(c.waitFor(model.EventPlayerCount), &payload))
		if payload.Count == count {
			return
		}
	}
}

func (c *testClient) register(username, password string) {
	c.send(model.EventRegister, model.CredentialsPayload{Username: username, Password: password})
	c.s.Equal("Welcome, "+username+"!", c.waitForMessage(model.EventRegistrationSuccess))
}

func (c *testClient) login(username, password string) {
	c.send(model.EventLogin, model.CredentialsPayload{Username: username, Password: password})
	c.waitFor(model.EventLoginSuccess)
}

// startGame registers and logs in two players
func (s *HubSuite) startGame(target int) (*testClient, *testClient) {
	s.random.QueueTarget(target)

	p1, p2 := s.dial(), s.dial()
	p1.register("player1", "secret1")
	p2.register("player2", "secret2")

	p1.login("player1", "secret1")
	p1.waitFor(model.EventWaitingRoom)

	p2.login("player2", "secret2")
	p1.waitFor(model.EventGameStarted)
	p2.waitFor(model.EventGameStarted)
	return p1, p2
}

func (s *HubSuite) snapshot() game.Snapshot {
	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()
	snap, err := s.hub.Snapshot(ctx)
	s.Require().NoError(err)
	return snap
}

func (s *HubSuite) TestFullRound() {
	p1, p2 := s.startGame(15)

	p1.send(model.EventGuess, map[string]any{"guess": 10})
	for _, c := range []*testClient{p1, p2} {
		var record model.GuessRecord
		s.Require().NoError(json.Unmarshal(c.waitFor(model.EventGuessSubmitted), &record))
		s.Equal("player1", record.Username)
		s.Equal("player1's guess is lower than the result.", record.Message)
	}

	p2.send(model.EventGuess, map[string]any{"guess": "40"})
	for _, c := range []*testClient{p1, p2} {
		var result model.Result
		s.Require().NoError(json.Unmarshal(c.waitFor(model.EventGameResult), &result))
		s.Equal(15, result.Target)
		s.Equal("player1", result.Winner)
		s.Equal("player2", result.Loser)
		s.Len(result.Guesses, 2)
	}

	p1.waitForCount(0)
	s.Equal(model.StateIdle, s.snapshot().State)
}

func (s *HubSuite) TestDuplicateRegistration() {
	p1 := s.dial()
	p1.register("player1", "secret1")

	p1.send(model.EventRegister, model.CredentialsPayload{Username: "player1", Password: "secret9"})
	s.Equal("Username already taken.", p1.waitForMessage(model.EventRegistrationError))
}

func (s *HubSuite) TestShortCredentialsRejected() {
	p1 := s.dial()

	p1.send(model.EventRegister, model.CredentialsPayload{Username: "abc", Password: "secret1"})
	s.Equal("Username or password must be at least 6 characters long.", p1.waitForMessage(model.EventRegistrationError))
}

func (s *HubSuite) TestWrongPassword() {
	p1 := s.dial()
	p1.register("player1", "secret1")

	p1.send(model.EventLogin, model.CredentialsPayload{Username: "player1", Password: "wrong12"})
	s.Equal("Invalid username or password.", p1.waitForMessage(model.EventLoginError))
}

func (s *HubSuite) TestOutOfRangeGuess() {
	p1, _ := s.startGame(15)

	p1.send(model.EventGuess, map[string]any{"guess": 51})
	s.Equal("Guess must be between 1 and 50.", p1.waitForMessage(model.EventGuessError))

	p1.send(model.EventGuess, map[string]any{"guess": "ten"})
	s.Equal("Guess must be a whole number between 1 and 50.", p1.waitForMessage(model.EventGuessError))

	s.Zero(s.snapshot().GuessCount)
}

func (s *HubSuite) TestLoginDuringGameRejected() {
	s.startGame(15)

	p3 := s.dial()
	p3.register("player3", "secret3")
	p3.send(model.EventLogin, model.CredentialsPayload{Username: "player3", Password: "secret3"})
	s.Equal("A game is in progress. Please try again when it finishes.", p3.waitForMessage(model.EventLoginError))
}

func (s *HubSuite) TestDisconnectDuringGame() {
	p1, p2 := s.startGame(15)

	s.Require().NoError(p2.conn.Close())

	p1.waitForCount(1)
	s.Eventually(func() bool {
		return s.snapshot().State == model.StateIdle
	}, readTimeout, 10*time.Millisecond)

	p1.send(model.EventGuess, map[string]any{"guess": 15})
	s.Equal("There is no game in progress.", p1.waitForMessage(model.EventGuessError))
}

func (s *HubSuite) TestClientCount() {
	s.dial()
	s.dial()

	s.Eventually(func() bool {
		return s.hub.ClientCount() == 2
	}, readTimeout, 10*time.Millisecond)
}

func (s *HubSuite) TestMalformedAndUnknownFramesAreLogged() {
	c := s.dial()

	s.Require().NoError(c.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	c.send("dance", map[string]any{})

	s.Eventually(func() bool {
		logs := s.logs.String()
		return strings.Contains(logs, "malformed frame") && strings.Contains(logs, "unknown event")
	}, readTimeout, 10*time.Millisecond)

	// The connection survives both
	c.register("player1", "secret1")
}

func (s *HubSuite) TestDisconnectEventClosesConnection() {
	c := s.dial()
	s.Eventually(func() bool { return s.hub.ClientCount() == 1 }, readTimeout, 10*time.Millisecond)

	c.send(model.EventDisconnect, nil)

	s.Eventually(func() bool {
		return s.hub.ClientCount() == 0 && strings.Contains(s.logs.String(), "client disconnected")
	}, readTimeout, 10*time.Millisecond)
}
