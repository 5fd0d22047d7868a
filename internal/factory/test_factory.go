package factory

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/dependencies/mocks"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/auth"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/game"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage/memory"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/testutil"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/web/ws"
)

// TestAdminSecret is the admin secret configured on a TestApp
const TestAdminSecret = "test-admin-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom

	cancel context.CancelFunc
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The hub is not running until Start is called.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := Config{
		AuthConfig: auth.Config{
			AdminSecret:     TestAdminSecret,
			AdminSessionTTL: time.Hour,
			BcryptCost:      bcrypt.MinCost,
		},
		GameConfig: game.DefaultConfig(),
		HubConfig:  ws.Config{TickInterval: time.Hour},
	}
	app := newWithDependencies(store, mockClock, mockRandom, cfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// Start runs the hub in the background
func (t *TestApp) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go t.Hub.Run(ctx)
}

// Stop halts the hub and waits for it to exit
func (t *TestApp) Stop() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.Hub.Done()
}
