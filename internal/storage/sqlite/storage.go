// Package sqlite stores accounts in a single SQL table through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/storage"
)

// accountRow is the accounts table: {id, username, password_hash, role, created_at}
type accountRow struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:guest"`
	CreatedAt    time.Time
}

func (accountRow) TableName() string {
	return "accounts"
}

func (r *accountRow) toModel() *model.Account {
	return &model.Account{
		ID:           model.AccountID(r.ID),
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         model.Role(r.Role),
		CreatedAt:    r.CreatedAt,
	}
}

// Storage is a SQLite-backed implementation of the storage interface
type Storage struct {
	db *gorm.DB
}

// Ensure Storage implements the interface
var _ storage.AccountStore = (*Storage)(nil)

// New opens (creating if needed) the database at path and migrates the schema.
// Use ":memory:" for a throwaway database.
func New(path string) (*Storage, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// An in-memory database is per connection, so pin the pool to one
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&accountRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the underlying database handle
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	row := accountRow{
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		Role:         string(account.Role),
		CreatedAt:    account.CreatedAt,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicateUsername
		}
		return err
	}

	account.ID = model.AccountID(row.ID)
	return nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	var row accountRow
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	var rows []accountRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	accounts := make([]*model.Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, rows[i].toModel())
	}
	return accounts, nil
}

// isUniqueViolation matches both the translated gorm error and the raw driver message
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
