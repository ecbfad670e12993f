package game

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/mcoot/textworld/internal/dependencies/clock"
	"github.com/mcoot/textworld/internal/dependencies/ids"
	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/services/account"
	"github.com/mcoot/textworld/internal/services/notify"
	"github.com/mcoot/textworld/internal/world"
)

// Config holds session tuning
type Config struct {
	// HeartbeatTimeout is how long a session may go without a heartbeat
	HeartbeatTimeout time.Duration

	// ReapInterval is how often stale sessions are looked for
	ReapInterval time.Duration

	Channel notify.ChannelConfig
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		HeartbeatTimeout: 60 * time.Second,
		ReapInterval:     10 * time.Second,
		Channel:          notify.DefaultChannelConfig(),
	}
}

// Controller owns the session registry and the live state of every room
//
// Lock order: Session.mu, then room locks in ascending RoomID order.
// The registry lock may be taken under Session.mu but never the other way round.
// Channel enqueues never block and may happen under any lock.
type Controller struct {
	cfg      Config
	accounts *account.Service
	world    *world.Graph
	clock    clock.Clock
	ids      ids.Generator
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	// rooms is built once and never resized
	rooms map[world.RoomID]*roomState
}

// NewController creates a new game controller over the given world
func NewController(
	cfg Config,
	accounts *account.Service,
	graph *world.Graph,
	clock clock.Clock,
	ids ids.Generator,
	logger *slog.Logger,
) *Controller {
	c := &Controller{
		cfg:      cfg,
		accounts: accounts,
		world:    graph,
		clock:    clock,
		ids:      ids,
		logger:   logger.With(slog.String("component", "game")),
		sessions: make(map[string]*Session),
		rooms:    make(map[world.RoomID]*roomState),
	}
	for _, id := range graph.Rooms() {
		r, _ := graph.RoomAt(id)
		c.rooms[id] = newRoomState(r)
	}
	return c
}

// Join authenticates a player and places them in the entry room
// Errors: ErrAccountNotFound, ErrBadCredentials, ErrAlreadyLoggedIn, ErrInternal
func (c *Controller) Join(ctx context.Context, name, digest string) (*Session, error) {
	acct, err := c.accounts.Lookup(ctx, name, digest)
	if err != nil {
		return nil, err
	}
	return c.enter(ctx, acct)
}

// CreateAccountAndJoin registers a new account and joins with it
// Errors: ErrBadUsernameFormat, ErrUsernameTaken, ErrInternal
func (c *Controller) CreateAccountAndJoin(ctx context.Context, name, digest string, recovery []model.RecoveryPair) (*Session, error) {
	acct, err := c.accounts.Create(ctx, name, digest, recovery)
	if err != nil {
		return nil, err
	}
	return c.enter(ctx, acct)
}

func (c *Controller) enter(ctx context.Context, acct *model.Account) (*Session, error) {
	s := newSession(c.ids.NewID(), acct, c.world.Entry(), c.clock.Now())

	s.mu.Lock()
	c.mu.Lock()
	if _, taken := c.sessions[s.key]; taken {
		c.mu.Unlock()
		s.mu.Unlock()
		return nil, model.ErrAlreadyLoggedIn
	}
	c.sessions[s.key] = s
	c.mu.Unlock()

	rs := c.rooms[s.room]
	rs.mu.Lock()
	others := rs.others(s.key)
	rs.occupants[s.key] = s
	rs.mu.Unlock()
	profile := s.snapshot()
	s.mu.Unlock()

	broadcast(others, s.name+" has arrived.")
	c.accounts.PersistProfile(ctx, s.name, profile)

	c.logger.Info("player joined",
		slog.String("player", s.name),
		slog.String("session_id", s.id),
		slog.Int("logins", profile.Logins),
	)
	return s, nil
}

// Leave logs a player out, returning the removed session or nil if none was found
func (c *Controller) Leave(ctx context.Context, name string) *Session {
	key := model.FoldUsername(name)

	c.mu.Lock()
	s, ok := c.sessions[key]
	if ok {
		delete(c.sessions, key)
	}
	c.mu.Unlock()

	if !ok {
		return nil
	}
	c.teardown(ctx, s, "left")
	return s
}

// DeleteAccount removes an account for good, logging the player out if they are online
// Errors: ErrAccountNotFound
func (c *Controller) DeleteAccount(ctx context.Context, name string) error {
	// the account goes first so the teardown snapshot is skipped
	if !c.accounts.Delete(ctx, name) {
		return model.ErrAccountNotFound
	}
	c.Leave(ctx, name)
	return nil
}

// Session returns the live session for name, or nil
func (c *Controller) Session(name string) *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessions[model.FoldUsername(name)]
}

// OnlineCount returns the number of live sessions
func (c *Controller) OnlineCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// Heartbeat resets the liveness deadline of a session
func (c *Controller) Heartbeat(ctx context.Context, name string) error {
	s := c.Session(name)
	if s == nil || s.Closed() {
		return model.ErrSessionNotFound
	}
	s.touch(c.clock.Now())
	return nil
}

// ResetPassword replaces the password digest of an account
func (c *Controller) ResetPassword(ctx context.Context, name, digest string) error {
	return c.accounts.ResetPassword(ctx, name, digest)
}

// VerifyPassword checks a password digest against an account
func (c *Controller) VerifyPassword(ctx context.Context, name, digest string) error {
	return c.accounts.VerifyPassword(ctx, name, digest)
}

// Question returns the n-th (1-based) recovery question of an account
func (c *Controller) Question(ctx context.Context, name string, n int) (string, error) {
	return c.accounts.Question(ctx, name, n)
}

// Answer returns the n-th (1-based) recovery answer of an account
func (c *Controller) Answer(ctx context.Context, name string, n int) (string, error) {
	return c.accounts.Answer(ctx, name, n)
}

// AttachChannel binds a push connection to a live session
// A session accepts at most one channel in its lifetime
func (c *Controller) AttachChannel(name string, conn net.Conn) (*notify.Channel, error) {
	s := c.Session(name)
	if s == nil {
		return nil, model.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Closed() {
		return nil, model.ErrSessionNotFound
	}
	if s.channel.Load() != nil {
		return nil, model.ErrChannelBound
	}
	ch := notify.NewChannel(s.name, conn, c.cfg.Channel, func(err error) {
		c.evict(s, "push channel lost")
	}, c.logger)
	s.channel.Store(ch)
	return ch, nil
}

// EvictStale tears down every session whose last heartbeat is older than the timeout
// It returns the number of sessions evicted
func (c *Controller) EvictStale(now time.Time) int {
	deadline := now.Add(-c.cfg.HeartbeatTimeout)

	c.mu.RLock()
	var stale []*Session
	for _, s := range c.sessions {
		if s.LastSeen().Before(deadline) {
			stale = append(stale, s)
		}
	}
	c.mu.RUnlock()

	n := 0
	for _, s := range stale {
		if c.evict(s, "heartbeat timeout") {
			n++
		}
	}
	return n
}

// Run evicts stale sessions every ReapInterval until ctx is done
func (c *Controller) Run(ctx context.Context) {
	interval := c.cfg.ReapInterval
	if interval <= 0 {
		interval = DefaultConfig().ReapInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.EvictStale(c.clock.Now()); n > 0 {
				c.logger.Info("stale sessions evicted", slog.Int("count", n))
			}
		}
	}
}

// Shutdown tears down every live session, persisting their profiles
func (c *Controller) Shutdown(ctx context.Context) {
	c.mu.Lock()
	all := make([]*Session, 0, len(c.sessions))
	for k, s := range c.sessions {
		all = append(all, s)
		delete(c.sessions, k)
	}
	c.mu.Unlock()

	for _, s := range all {
		c.teardown(ctx, s, "server shutdown")
	}
	c.logger.Info("game controller stopped", slog.Int("sessions", len(all)))
}

// evict removes s from the registry if it is still the registered session
func (c *Controller) evict(s *Session, reason string) bool {
	c.mu.Lock()
	current, ok := c.sessions[s.key]
	if !ok || current != s {
		c.mu.Unlock()
		return false
	}
	delete(c.sessions, s.key)
	c.mu.Unlock()

	c.teardown(context.Background(), s, reason)
	return true
}

// teardown releases a session that is no longer in the registry
func (c *Controller) teardown(ctx context.Context, s *Session, reason string) {
	s.mu.Lock()
	if s.closed.Swap(true) {
		s.mu.Unlock()
		return
	}
	rs := c.rooms[s.room]
	rs.mu.Lock()
	delete(rs.occupants, s.key)
	others := rs.others(s.key)
	rs.mu.Unlock()
	profile := s.snapshot()
	s.mu.Unlock()

	broadcast(others, s.name+" has left.")
	c.accounts.PersistProfile(ctx, s.name, profile)

	if ch := s.channel.Swap(nil); ch != nil {
		ch.Close()
	}

	c.logger.Info("player left",
		slog.String("player", s.name),
		slog.String("session_id", s.id),
		slog.String("reason", reason),
	)
}

// acquire returns the live session for name with its lock held
func (c *Controller) acquire(name string) (*Session, error) {
	s := c.Session(name)
	if s == nil {
		return nil, model.ErrSessionNotFound
	}
	s.mu.Lock()
	if s.Closed() {
		s.mu.Unlock()
		return nil, model.ErrSessionNotFound
	}
	return s, nil
}
