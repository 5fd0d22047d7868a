package model

import "time"

// AccountID uniquely identifies an account; assigned by the store
type AccountID int64

// Role is the permission level of an account
type Role string

const (
	RoleGuest Role = "guest"
	RoleAdmin Role = "admin"
)

// MinCredentialLength is the minimum length of usernames and passwords
const MinCredentialLength = 6

// Account is a registered user.
// PasswordHash is a bcrypt hash and is never serialized to clients.
type Account struct {
	ID           AccountID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the account has the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
