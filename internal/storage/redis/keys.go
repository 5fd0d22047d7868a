package redis

import (
	"fmt"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/model"
)

// keys builds Redis keys under a configurable prefix
type keys struct {
	prefix string
}

// accountSeq is the INCR counter used to assign account IDs
func (k keys) accountSeq() string {
	return fmt.Sprintf("%s:seq:account", k.prefix)
}

// account returns the key holding an account's JSON
func (k keys) account(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%d", k.prefix, id)
}

// usernameIndex maps a username to its account ID; written with SETNX
func (k keys) usernameIndex(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", k.prefix, username)
}

// accountList is a sorted set of account IDs scored by ID
func (k keys) accountList() string {
	return fmt.Sprintf("%s:idx:accounts", k.prefix)
}
