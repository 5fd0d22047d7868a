package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/api"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/factory"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/testutil"
)

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		server string
		want   string
	}{
		{"http://localhost:3000", "ws://localhost:3000/ws"},
		{"http://localhost:3000/", "ws://localhost:3000/ws"},
		{"https://guess.example.com", "wss://guess.example.com/ws"},
		{"ws://127.0.0.1:9000", "ws://127.0.0.1:9000/ws"},
	}

	for _, tt := range tests {
		t.Run(tt.server, func(t *testing.T) {
			c := &Config{ServerURL: tt.server}
			assert.Equal(t, tt.want, c.WebSocketURL())
		})
	}
}

func TestTokenFile(t *testing.T) {
	c := &Config{TokenFile: filepath.Join(t.TempDir(), "nested", "token")}

	// Missing file is not an error
	require.NoError(t, c.LoadToken())
	assert.Empty(t, c.Token)

	require.NoError(t, c.SaveToken("adm_abc"))

	loaded := &Config{TokenFile: c.TokenFile}
	require.NoError(t, loaded.LoadToken())
	assert.Equal(t, "adm_abc", loaded.Token)

	// A token from flags or env wins over the file
	explicit := &Config{TokenFile: c.TokenFile, Token: "adm_flag"}
	require.NoError(t, explicit.LoadToken())
	assert.Equal(t, "adm_flag", explicit.Token)

	require.NoError(t, c.ClearToken())
	assert.Empty(t, c.Token)
	_, err := os.Stat(c.TokenFile)
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine
	require.NoError(t, c.ClearToken())
}

func TestOutputText(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput("text", &buf)

	out.Print(GameState{State: "active", PlayerCount: 2, Players: []string{"player1", "player2"}, SessionID: "abc", GuessCount: 1})
	text := buf.String()
	assert.Contains(t, text, "State: active")
	assert.Contains(t, text, "Players (2): player1, player2")
	assert.Contains(t, text, "Session: abc")
	assert.Contains(t, text, "Guesses: 1")

	buf.Reset()
	out.Print(AccountList{Accounts: []Account{{ID: 1, Username: "player1", Role: "guest"}}})
	assert.Contains(t, buf.String(), "Accounts (1):")
	assert.Contains(t, buf.String(), "player1")
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput("json", &buf)

	out.Print(HealthResult{Status: "ok", Connections: 3})
	var h HealthResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &h))
	assert.Equal(t, HealthResult{Status: "ok", Connections: 3}, h)

	buf.Reset()
	out.PrintMessage("Logged out")
	assert.JSONEq(t, `{"message":"Logged out"}`, buf.String())
}

// CLISuite runs commands against an in-process server
type CLISuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
	wsURL  string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.app.Start()

	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		AuthService: s.app.AuthService,
		Hub:         s.app.Hub,
	}))
	s.wsURL = (&Config{ServerURL: s.server.URL}).WebSocketURL()
}

func (s *CLISuite) TearDownTest() {
	s.app.Stop()
	s.server.Close()
}

// execute runs the root command with the given arguments
func (s *CLISuite) execute(tokenFile string, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--server", s.server.URL, "--token-file", tokenFile, "--token", ""}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func (s *CLISuite) register(username string) {
	_, err := s.app.AuthService.Register(context.Background(), username, "secret1")
	s.Require().NoError(err)
}

func (s *CLISuite) waitForPlayers(n int) {
	s.Require().Eventually(func() bool {
		snap, err := s.app.Hub.Snapshot(context.Background())
		return err == nil && snap.PlayerCount == n
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *CLISuite) TestHealth() {
	out, err := s.execute(filepath.Join(s.T().TempDir(), "token"), "health")
	s.Require().NoError(err)
	s.Contains(out, "Status: ok")
	s.Contains(out, "Connections: 0")
}

func (s *CLISuite) TestVerboseTracesRequests() {
	out, err := s.execute(filepath.Join(s.T().TempDir(), "token"), "-v", "health")
	s.Require().NoError(err)
	s.Contains(out, "> GET "+s.server.URL+"/api/v1/health")
	s.Contains(out, "< 200 OK")
}

func (s *CLISuite) TestClientReportsAPIErrors() {
	c := NewClient(s.server.URL, "", nil)
	err := c.Post("/api/v1/admin/session", map[string]string{"password": "nope"}, nil)
	s.Require().Error(err)
	s.Equal("Invalid password (UNAUTHORIZED)", err.Error())

	err = c.Get("/api/v1/missing", nil)
	s.Require().Error(err)
	s.Contains(err.Error(), "HTTP 404")
}

func (s *CLISuite) TestRegister() {
	var buf bytes.Buffer
	opts := playOptions{URL: s.wsURL, Username: "player1", Password: "secret1"}

	s.Require().NoError(runRegister(context.Background(), opts, &buf))
	s.Contains(buf.String(), "Welcome, player1!")

	_, err := s.app.AuthService.Authenticate(context.Background(), "player1", "secret1")
	s.NoError(err)

	err = runRegister(context.Background(), opts, &buf)
	s.Require().Error(err)
	s.Equal("Username already taken.", err.Error())
}

func (s *CLISuite) TestPlayRejectsBadLogin() {
	s.register("player1")

	var buf bytes.Buffer
	opts := playOptions{URL: s.wsURL, Username: "player1", Password: "wrong-pass", Guess: 10}
	err := runPlay(context.Background(), opts, strings.NewReader(""), &buf)
	s.Require().Error(err)
	s.Equal("Invalid username or password.", err.Error())
}

func (s *CLISuite) TestPlayFullRound() {
	s.register("player1")
	s.register("player2")
	s.app.MockRandom.QueueTarget(15)

	var out1, out2 bytes.Buffer
	var err1, err2 error
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		opts := playOptions{URL: s.wsURL, Username: "player1", Password: "secret1", Guess: 10}
		err1 = runPlay(context.Background(), opts, strings.NewReader(""), &out1)
	}()
	s.waitForPlayers(1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		// Interactive: a bad line is re-prompted before the real guess
		opts := playOptions{URL: s.wsURL, Username: "player2", Password: "secret1"}
		err2 = runPlay(context.Background(), opts, strings.NewReader("forty\n40\n"), &out2)
	}()
	wg.Wait()

	s.Require().NoError(err1)
	s.Require().NoError(err2)

	s.Contains(out1.String(), "Waiting for another player...")
	s.Contains(out1.String(), "Game started against player2.")
	s.Contains(out1.String(), "player1's guess is lower than the result.")
	s.Contains(out1.String(), "player1 wins! The correct number was 15.")

	s.Contains(out2.String(), "Game started against player1.")
	s.Contains(out2.String(), "Please enter a whole number between 1 and 50.")
	s.Contains(out2.String(), "player2's guess is higher than the result.")
	s.Contains(out2.String(), "player1 wins!")
}

func (s *CLISuite) TestPlayGuessOutOfRange() {
	s.register("player1")
	s.register("player2")

	var err1 error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		opts := playOptions{URL: s.wsURL, Username: "player1", Password: "secret1", Guess: 99}
		err1 = runPlay(context.Background(), opts, strings.NewReader(""), &bytes.Buffer{})
	}()
	s.waitForPlayers(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		opts := playOptions{URL: s.wsURL, Username: "player2", Password: "secret1", Guess: 20}
		_ = runPlay(ctx, opts, strings.NewReader(""), &bytes.Buffer{})
	}()

	wg.Wait()
	s.Require().Error(err1)
	s.Equal("Guess must be between 1 and 50.", err1.Error())
}

func (s *CLISuite) TestAdminCommands() {
	s.register("player1")
	tokenFile := filepath.Join(s.T().TempDir(), "token")

	_, err := s.execute(tokenFile, "admin", "users")
	s.Require().Error(err)
	s.Contains(err.Error(), "UNAUTHORIZED")

	out, err := s.execute(tokenFile, "admin", "login", "--password", factory.TestAdminSecret)
	s.Require().NoError(err, out)
	s.Contains(out, "Admin session created")

	out, err = s.execute(tokenFile, "-o", "json", "admin", "users")
	s.Require().NoError(err, out)
	var list AccountList
	s.Require().NoError(json.Unmarshal([]byte(out), &list))
	s.Require().Len(list.Accounts, 1)
	s.Equal("player1", list.Accounts[0].Username)

	out, err = s.execute(tokenFile, "admin", "game")
	s.Require().NoError(err, out)
	s.Contains(out, "State: idle")

	out, err = s.execute(tokenFile, "admin", "logout")
	s.Require().NoError(err, out)
	s.Contains(out, "Logged out")

	_, err = os.Stat(tokenFile)
	s.True(os.IsNotExist(err))
}
