package model

import (
	"errors"
	"fmt"
)

// ResponseCode is the outcome of an account or credential operation
type ResponseCode int

const (
	Success ResponseCode = iota
	NotFound
	BadCredentials
	UsernameTaken
	BadUsernameFormat
	InternalError
	UnknownFailure
)

var responseNames = map[ResponseCode]string{
	Success:           "SUCCESS",
	NotFound:          "NOT_FOUND",
	BadCredentials:    "BAD_CREDENTIALS",
	UsernameTaken:     "USERNAME_TAKEN",
	BadUsernameFormat: "BAD_USERNAME_FORMAT",
	InternalError:     "INTERNAL_ERROR",
	UnknownFailure:    "UNKNOWN_FAILURE",
}

func (c ResponseCode) String() string {
	if name, ok := responseNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ResponseCode(%d)", int(c))
}

// ParseResponseCode parses the wire name of a response code
func ParseResponseCode(s string) (ResponseCode, error) {
	for code, name := range responseNames {
		if name == s {
			return code, nil
		}
	}
	return UnknownFailure, fmt.Errorf("unknown response code %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (c ResponseCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *ResponseCode) UnmarshalText(text []byte) error {
	parsed, err := ParseResponseCode(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ResponseFromError maps an operation error onto its response code
func ResponseFromError(err error) ResponseCode {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrFriendNotFound),
		errors.Is(err, ErrRecoveryNotFound):
		return NotFound
	case errors.Is(err, ErrBadCredentials):
		return BadCredentials
	case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrAlreadyLoggedIn):
		return UsernameTaken
	case errors.Is(err, ErrBadUsernameFormat):
		return BadUsernameFormat
	case errors.Is(err, ErrHashFailure):
		return UnknownFailure
	default:
		return InternalError
	}
}
