package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"north", North},
		{"EAST", East},
		{" South ", South},
		{"w", West},
		{"N", North},
		{"up", DirectionInvalid},
		{"", DirectionInvalid},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDirection(tt.in), "input %q", tt.in)
	}
}

func TestDirectionTurnsAreCyclic(t *testing.T) {
	assert.Equal(t, East, North.Right())
	assert.Equal(t, North, West.Right())
	assert.Equal(t, West, North.Left())
	assert.Equal(t, South, North.Opposite())

	for _, d := range Directions() {
		assert.Equal(t, d, d.Right().Right().Right().Right())
		assert.Equal(t, d, d.Left().Right())
	}

	assert.Equal(t, DirectionInvalid, DirectionInvalid.Left())
	assert.Equal(t, "invalid", DirectionInvalid.String())
}

func TestDirectionText(t *testing.T) {
	b, err := West.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "west", string(b))

	var d Direction
	assert.NoError(t, d.UnmarshalText([]byte("East")))
	assert.Equal(t, East, d)
	assert.Error(t, d.UnmarshalText([]byte("sideways")))
}

func TestResponseFromError(t *testing.T) {
	tests := []struct {
		err  error
		want ResponseCode
	}{
		{nil, Success},
		{ErrAccountNotFound, NotFound},
		{ErrSessionNotFound, NotFound},
		{fmt.Errorf("lookup: %w", ErrBadCredentials), BadCredentials},
		{ErrUsernameTaken, UsernameTaken},
		{ErrAlreadyLoggedIn, UsernameTaken},
		{ErrBadUsernameFormat, BadUsernameFormat},
		{ErrHashFailure, UnknownFailure},
		{ErrInternal, InternalError},
		{fmt.Errorf("disk full"), InternalError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResponseFromError(tt.err), "error %v", tt.err)
	}
}

func TestResponseCodeWireNames(t *testing.T) {
	code, err := ParseResponseCode("USERNAME_TAKEN")
	assert.NoError(t, err)
	assert.Equal(t, UsernameTaken, code)

	_, err = ParseResponseCode("NOPE")
	assert.Error(t, err)
	assert.Equal(t, "BAD_USERNAME_FORMAT", BadUsernameFormat.String())
}

func TestFoldUsername(t *testing.T) {
	assert.Equal(t, FoldUsername("Bob"), FoldUsername("bOB"))
	assert.Equal(t, "mary jane", FoldUsername("Mary Jane"))
}

func TestAccountCloneDoesNotAlias(t *testing.T) {
	a := &Account{
		Username: "Alice",
		Recovery: []RecoveryPair{{Question: "pet", Answer: "cat"}},
		Profile:  Profile{Friends: []string{"bob"}, Inventory: []string{"lamp"}},
	}
	c := a.Clone()
	c.Profile.Friends[0] = "carol"
	c.Recovery[0].Answer = "dog"

	assert.Equal(t, "bob", a.Profile.Friends[0])
	assert.Equal(t, "cat", a.Recovery[0].Answer)
	assert.Equal(t, "alice", a.Key())
}
