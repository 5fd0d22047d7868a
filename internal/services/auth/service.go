package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/dependencies/clock"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage"
)

// Errors
var (
	ErrInvalidSession = errors.New("invalid or expired session")
)

// AdminSession is a bearer token issued to an operator of the admin API
type AdminSession struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles accounts and admin sessions
type Service struct {
	store storage.AccountStore
	clock clock.Clock

	mu       sync.RWMutex
	sessions map[string]*AdminSession

	adminSecret string
	sessionTTL  time.Duration
	bcryptCost  int
}

// Config holds configuration for the auth service
type Config struct {
	// AdminSecret is the shared secret for the admin API. Empty disables admin login.
	AdminSecret     string
	AdminSessionTTL time.Duration
	BcryptCost      int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		AdminSessionTTL: time.Hour,
		BcryptCost:      bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(store storage.AccountStore, clock clock.Clock, cfg Config) *Service {
	if cfg.AdminSessionTTL == 0 {
		cfg.AdminSessionTTL = DefaultConfig().AdminSessionTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		store:       store,
		clock:       clock,
		sessions:    make(map[string]*AdminSession),
		adminSecret: cfg.AdminSecret,
		sessionTTL:  cfg.AdminSessionTTL,
		bcryptCost:  cfg.BcryptCost,
	}
}

// Register creates a guest account
func (s *Service) Register(ctx context.Context, username, password string) (*model.Account, error) {
	return s.create(ctx, username, password, model.RoleGuest)
}

// EnsureAdmin creates an admin account unless the username already exists
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (*model.Account, error) {
	existing, err := s.store.GetAccountByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return nil, storageFailure(err)
	}
	return s.create(ctx, username, password, model.RoleAdmin)
}

func (s *Service) create(ctx context.Context, username, password string, role model.Role) (*model.Account, error) {
	if !validCredential(username) || !validCredential(password) {
		return nil, model.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	account := &model.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, model.ErrDuplicateUsername) {
			return nil, model.ErrDuplicateUsername
		}
		return nil, storageFailure(err)
	}

	return account, nil
}

// Authenticate checks a username and password against the store
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.Account, error) {
	account, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, storageFailure(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return account, nil
}

// ListAll returns every account ordered by ID, without password hashes
func (s *Service) ListAll(ctx context.Context) ([]*model.Account, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, storageFailure(err)
	}
	for _, a := range accounts {
		a.PasswordHash = ""
	}
	return accounts, nil
}

// AdminLogin exchanges the shared admin secret for a bearer token
func (s *Service) AdminLogin(secret string) (*AdminSession, error) {
	if !s.CheckAdminSecret(secret) {
		return nil, model.ErrUnauthorized
	}

	now := s.clock.Now()
	session := &AdminSession{
		Token:     generateToken(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session, nil
}

// CheckAdminSecret compares secret with the configured admin secret in constant time
func (s *Service) CheckAdminSecret(secret string) bool {
	if s.adminSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.adminSecret)) == 1
}

// ValidateSession checks if an admin token is valid and returns its session
func (s *Service) ValidateSession(token string) (*AdminSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes an admin session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}

func validCredential(v string) bool {
	return utf8.RuneCountInString(v) >= model.MinCredentialLength
}

func storageFailure(err error) error {
	return fmt.Errorf("%w: %w", model.ErrStorageFailure, err)
}

func generateToken() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return "adm_" + base64.RawURLEncoding.EncodeToString(b)
}
