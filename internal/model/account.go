package model

import (
	"slices"
	"time"

	"golang.org/x/text/cases"
)

var usernameFolder = cases.Fold()

// FoldUsername returns the case-insensitive key for a username
func FoldUsername(name string) string {
	return usernameFolder.String(name)
}

// RecoveryPair is one password-recovery question and its answer
type RecoveryPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Profile is the free-form part of an account that survives between sessions
type Profile struct {
	Friends   []string  `json:"friends,omitempty"`
	Inventory []string  `json:"inventory,omitempty"`
	LastLogin time.Time `json:"last_login,omitzero"`
	Logins    int       `json:"logins"`
}

// Account is a persisted player account
// Only the digest of the password is ever stored
type Account struct {
	Username       string         `json:"username"`
	PasswordDigest string         `json:"password_digest"`
	Recovery       []RecoveryPair `json:"recovery,omitempty"`
	Profile        Profile        `json:"profile"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Key returns the folded username the account is stored under
func (a *Account) Key() string {
	return FoldUsername(a.Username)
}

// Clone returns a deep copy so callers can't alias stored state
func (a *Account) Clone() *Account {
	c := *a
	c.Recovery = slices.Clone(a.Recovery)
	c.Profile.Friends = slices.Clone(a.Profile.Friends)
	c.Profile.Inventory = slices.Clone(a.Profile.Inventory)
	return &c
}
