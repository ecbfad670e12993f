package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrBadCredentials    = errors.New("bad credentials")
	ErrUsernameTaken     = errors.New("username is taken")
	ErrBadUsernameFormat = errors.New("username may only contain letters, digits and spaces")
	ErrRecoveryNotFound  = errors.New("recovery question not found")
	ErrInternal          = errors.New("internal storage failure")
	ErrHashFailure       = errors.New("credential digest failed")
	ErrUnknownAlgorithm  = errors.New("unknown digest algorithm")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrAlreadyLoggedIn = errors.New("player is already logged in")
	ErrFriendNotFound  = errors.New("friend not found")

	// Channel errors
	ErrChannelClosed = errors.New("notification channel closed")
	ErrChannelBound  = errors.New("notification channel already bound")

	// World errors
	ErrRoomNotFound = errors.New("room not found")
)
