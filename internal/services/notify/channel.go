package notify

import (
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/textworld/internal/model"
)

// ChannelConfig tunes a push channel
type ChannelConfig struct {
	// QueueSize bounds the outbound queue; messages beyond it are dropped
	QueueSize int

	// WriteTimeout bounds each write to the peer
	WriteTimeout time.Duration
}

// DefaultChannelConfig returns sensible defaults for push channels
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		QueueSize:    64,
		WriteTimeout: 5 * time.Second,
	}
}

// Channel is the server-to-client push connection of one session
// Enqueue never blocks; a single goroutine drains the queue to the connection in FIFO order
type Channel struct {
	owner  string
	conn   net.Conn
	cfg    ChannelConfig
	logger *slog.Logger

	// mu guards closed and sends on queue
	mu     sync.RWMutex
	closed bool
	queue  chan string

	broken     atomic.Bool
	brokenOnce sync.Once
	onBroken   func(error)

	closeOnce sync.Once
	done      chan struct{}
	dropped   atomic.Int64
}

// NewChannel wraps conn and starts its delivery goroutine
// onBroken runs at most once, on its own goroutine, when the peer can no longer be written to
func NewChannel(owner string, conn net.Conn, cfg ChannelConfig, onBroken func(error), logger *slog.Logger) *Channel {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultChannelConfig().QueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultChannelConfig().WriteTimeout
	}
	c := &Channel{
		owner:    owner,
		conn:     conn,
		cfg:      cfg,
		logger:   logger.With(slog.String("player", owner)),
		queue:    make(chan string, cfg.QueueSize),
		onBroken: onBroken,
		done:     make(chan struct{}),
	}
	go c.run()
	return c
}

// Enqueue hands a message to the delivery goroutine
// A full queue drops the message; a closed channel returns ErrChannelClosed
func (c *Channel) Enqueue(msg string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return model.ErrChannelClosed
	}
	select {
	case c.queue <- msg:
	default:
		c.dropped.Add(1)
		c.logger.Warn("push message dropped - queue full")
	}
	return nil
}

// Close stops accepting messages; already queued messages are still written
// before the connection is closed. Safe to call more than once.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.queue)
		c.mu.Unlock()
	})
}

// Break reports that the peer has gone away; the owner is told via onBroken
func (c *Channel) Break(err error) {
	c.brokenOnce.Do(func() {
		c.broken.Store(true)
		c.logger.Info("push channel broken", slog.String("error", errString(err)))
		c.Close()
		// unblock a write stuck on a stalled peer
		_ = c.conn.SetWriteDeadline(time.Now())
		if c.onBroken != nil {
			go c.onBroken(err)
		}
	})
}

// Done is closed once the connection has been released
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Closed reports whether Close or Break has been called
func (c *Channel) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Dropped returns how many messages were discarded because the queue was full
func (c *Channel) Dropped() int64 {
	return c.dropped.Load()
}

func (c *Channel) run() {
	defer close(c.done)
	defer c.conn.Close()

	for msg := range c.queue {
		if c.broken.Load() {
			continue
		}
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
		if _, err := io.WriteString(c.conn, formatMessage(msg)); err != nil {
			c.Break(err)
		}
	}
}

// formatMessage turns msg into newline-terminated lines
func formatMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "")
	msg = strings.TrimRight(msg, "\n")
	return msg + "\n"
}

func errString(err error) string {
	if err == nil {
		return "closed"
	}
	return err.Error()
}
