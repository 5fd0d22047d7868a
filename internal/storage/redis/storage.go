package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
	keys   keys
}

// storedAccount is the JSON form of an account in Redis.
// model.Account hides the hash from JSON, so it is copied explicitly.
type storedAccount struct {
	ID           model.AccountID `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"password_hash"`
	Role         model.Role      `json:"role"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toStored(a *model.Account) storedAccount {
	return storedAccount{
		ID:           a.ID,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		Role:         a.Role,
		CreatedAt:    a.CreatedAt,
	}
}

func (sa storedAccount) toModel() *model.Account {
	return &model.Account{
		ID:           sa.ID,
		Username:     sa.Username,
		PasswordHash: sa.PasswordHash,
		Role:         sa.Role,
		CreatedAt:    sa.CreatedAt,
	}
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = DefaultConfig().DialTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		keys:   keys{prefix: prefix},
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.AccountStore = (*Storage)(nil)

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	id, err := s.client.Incr(ctx, s.keys.accountSeq()).Result()
	if err != nil {
		return err
	}

	// SETNX on the index is the uniqueness check; a lost race burns the ID
	claimed, err := s.client.SetNX(ctx, s.keys.usernameIndex(account.Username), id, 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrDuplicateUsername
	}

	account.ID = model.AccountID(id)
	data, err := json.Marshal(toStored(account))
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keys.account(account.ID), data, 0)
	pipe.ZAdd(ctx, s.keys.accountList(), redis.Z{Score: float64(id), Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		// Release the username so a retry can succeed
		_ = s.client.Del(ctx, s.keys.usernameIndex(account.Username)).Err()
		return err
	}
	return nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	idStr, err := s.client.Get(ctx, s.keys.usernameIndex(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.keys.account(model.AccountID(id))).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var sa storedAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, err
	}
	return sa.toModel(), nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	ids, err := s.client.ZRange(ctx, s.keys.accountList(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Account{}, nil
	}

	accountKeys := make([]string, 0, len(ids))
	for _, idStr := range ids {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		accountKeys = append(accountKeys, s.keys.account(model.AccountID(id)))
	}

	values, err := s.client.MGet(ctx, accountKeys...).Result()
	if err != nil {
		return nil, err
	}

	accounts := make([]*model.Account, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Missing key
		}
		var sa storedAccount
		if err := json.Unmarshal([]byte(str), &sa); err != nil {
			continue // Skip invalid data
		}
		accounts = append(accounts, sa.toModel())
	}
	return accounts, nil
}
