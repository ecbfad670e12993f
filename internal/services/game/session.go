package game

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/services/notify"
	"github.com/mcoot/textworld/internal/world"
)

// Session is the live state of one logged-in player
type Session struct {
	id   string
	name string
	key  string

	// mu guards everything below it except the atomics
	mu        sync.Mutex
	room      world.RoomID
	facing    model.Direction
	inventory []string
	friends   []string
	profile   model.Profile

	closed   atomic.Bool
	lastSeen atomic.Int64
	channel  atomic.Pointer[notify.Channel]
}

func newSession(id string, acct *model.Account, entry world.RoomID, now time.Time) *Session {
	s := &Session{
		id:        id,
		name:      acct.Username,
		key:       acct.Key(),
		room:      entry,
		facing:    model.North,
		inventory: slices.Clone(acct.Profile.Inventory),
		friends:   slices.Clone(acct.Profile.Friends),
		profile:   acct.Profile,
	}
	s.profile.Logins++
	s.profile.LastLogin = now
	s.touch(now)
	return s
}

// ID returns the unique id of this login
func (s *Session) ID() string { return s.id }

// Name returns the username as it was registered
func (s *Session) Name() string { return s.name }

// Room returns the room the player is standing in
func (s *Session) Room() world.RoomID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// Facing returns the direction the player is facing
func (s *Session) Facing() model.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facing
}

// Inventory returns a copy of the objects the player carries
func (s *Session) Inventory() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.inventory)
}

// Friends returns a copy of the player's friend list
func (s *Session) Friends() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.friends)
}

// Closed reports whether the session has been torn down
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// LastSeen returns the time of the last heartbeat
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// snapshot must be called with mu held
func (s *Session) snapshot() model.Profile {
	p := s.profile
	p.Friends = slices.Clone(s.friends)
	p.Inventory = slices.Clone(s.inventory)
	return p
}

// push hands msg to the session's channel, if one is bound
func (s *Session) push(msg string) {
	if ch := s.channel.Load(); ch != nil {
		_ = ch.Enqueue(msg)
	}
}

// roomState is the mutable part of a room
type roomState struct {
	mu        sync.Mutex
	occupants map[string]*Session
	objects   []string
	board     []string
}

func newRoomState(r world.Room) *roomState {
	return &roomState{
		occupants: make(map[string]*Session),
		objects:   slices.Clone(r.Objects),
	}
}

// others returns every occupant except key; rs.mu must be held
func (rs *roomState) others(key string) []*Session {
	out := make([]*Session, 0, len(rs.occupants))
	for k, s := range rs.occupants {
		if k != key {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b *Session) int { return strings.Compare(a.key, b.key) })
	return out
}

func broadcast(to []*Session, msg string) {
	for _, s := range to {
		s.push(msg)
	}
}
