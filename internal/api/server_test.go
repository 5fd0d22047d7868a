package api_test

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/api"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/factory"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/testutil"
)

func TestServerLifecycle(t *testing.T) {
	app := factory.NewTestApp()
	app.Start()
	t.Cleanup(app.Stop)

	router := api.NewRouter(api.RouterConfig{
		Logger:      testutil.NopLogger(),
		AuthService: app.AuthService,
		Hub:         app.Hub,
	})

	cfg := api.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	server := api.NewServer(router, cfg, testutil.NopLogger())

	hookRan := make(chan struct{})
	server.OnShutdown(func() { close(hookRan) })

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-server.Ready():
	case err := <-errCh:
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}
	assert.NotEqual(t, "127.0.0.1:0", server.Addr())

	resp, err := http.Get("http://" + server.Addr() + "/api/v1/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Shutdown(context.Background()))
	require.NoError(t, <-errCh)

	select {
	case <-hookRan:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown hook did not run")
	}
}

func TestServerStartFailsOnBusyPort(t *testing.T) {
	cfg := api.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0

	first := api.NewServer(http.NotFoundHandler(), cfg, testutil.NopLogger())
	go func() { _ = first.Start() }()
	<-first.Ready()
	t.Cleanup(func() { _ = first.Shutdown(context.Background()) })

	_, portText, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)
	cfg.Port, err = strconv.Atoi(portText)
	require.NoError(t, err)

	second := api.NewServer(http.NotFoundHandler(), cfg, testutil.NopLogger())
	err = second.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}
