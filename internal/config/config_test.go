package config

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/factory"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

// execute runs the command with args and returns the settings passed to run
func (s *ConfigSuite) execute(args ...string) (*Config, error) {
	cfg := &Config{}
	var got *Config
	cmd := NewCommand(cfg, "test", func(_ context.Context, c *Config) error {
		got = c
		return nil
	})
	// A nil slice would make cobra fall back to os.Args
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return got, err
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := s.execute()
	s.Require().NoError(err)

	s.Equal("0.0.0.0", cfg.Bind)
	s.Equal(3000, cfg.Port)
	s.Equal(factory.StorageTypeMemory, cfg.Storage)
	s.Equal(time.Hour, cfg.AdminSessionTTL)
	s.Equal(2*time.Minute, cfg.SessionTimeout)
	s.Equal("info", cfg.LogLevel)
}

func (s *ConfigSuite) TestFlags() {
	cfg, err := s.execute("--port", "9000", "--storage", "sqlite", "--sqlite-path", "/tmp/x.db", "--session-timeout", "0")
	s.Require().NoError(err)

	s.Equal(9000, cfg.Port)
	s.Equal(factory.StorageTypeSQLite, cfg.Storage)
	s.Equal("/tmp/x.db", cfg.SQLitePath)
	s.Zero(cfg.SessionTimeout)
}

func (s *ConfigSuite) TestEnvironment() {
	s.T().Setenv("GUESSGAME_PORT", "4100")
	s.T().Setenv("GUESSGAME_STORAGE", "redis")
	s.T().Setenv("GUESSGAME_REDIS_URL", "redis://localhost:6379/0")
	s.T().Setenv("GUESSGAME_ADMIN_SECRET", "hunter22")

	cfg, err := s.execute()
	s.Require().NoError(err)

	s.Equal(4100, cfg.Port)
	s.Equal(factory.StorageTypeRedis, cfg.Storage)
	s.Equal("hunter22", cfg.AdminSecret)

	fc := cfg.Factory(nil)
	s.Require().NotNil(fc.RedisConfig)
	s.Equal("redis://localhost:6379/0", fc.RedisConfig.URL)
	s.Equal("hunter22", fc.AuthConfig.AdminSecret)
}

func (s *ConfigSuite) TestFlagOverridesEnvironment() {
	s.T().Setenv("GUESSGAME_PORT", "4100")

	cfg, err := s.execute("--port", "4200")
	s.Require().NoError(err)
	s.Equal(4200, cfg.Port)
}

func (s *ConfigSuite) TestValidation() {
	tests := []struct {
		name string
		args []string
	}{
		{"bad port", []string{"--port", "70000"}},
		{"unknown storage", []string{"--storage", "postgres"}},
		{"redis without url", []string{"--storage", "redis"}},
		{"sqlite without path", []string{"--storage", "sqlite", "--sqlite-path", ""}},
		{"admin username alone", []string{"--admin-username", "operator"}},
		{"short admin password", []string{"--admin-username", "operator", "--admin-password", "abc"}},
		// Six bytes but three characters
		{"multibyte admin password", []string{"--admin-username", "operator", "--admin-password", "ééé"}},
		{"short admin username", []string{"--admin-username", "op", "--admin-password", "secret1"}},
		{"negative timeout", []string{"--session-timeout", "-1s"}},
		{"bad log level", []string{"--log-level", "loud"}},
		{"positional args", []string{"extra"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.execute(tt.args...)
			s.Error(err)
		})
	}
}

func (s *ConfigSuite) TestAdminCredentialsCountCharacters() {
	cfg, err := s.execute("--admin-username", "opérateur", "--admin-password", "mötörhead")
	s.Require().NoError(err)
	s.Equal("opérateur", cfg.AdminUsername)
}

func (s *ConfigSuite) TestCheckOrigin() {
	cfg := &Config{}
	s.Nil(cfg.CheckOrigin())

	cfg.AllowedOrigins = []string{"https://game.example.com/"}
	check := cfg.CheckOrigin()

	req := httptest.NewRequest("GET", "/ws", nil)
	s.True(check(req))

	req.Header.Set("Origin", "https://game.example.com")
	s.True(check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	s.False(check(req))
}
