package notify

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// handshakeBuffer sizes the reader for the registration line
const handshakeBuffer = 256

// Binder attaches an accepted connection to a logged-in session
type Binder interface {
	AttachChannel(name string, conn net.Conn) (*Channel, error)
}

// ListenerConfig holds configuration for the push listener
type ListenerConfig struct {
	Addr             string
	HandshakeTimeout time.Duration
}

// DefaultListenerConfig returns sensible defaults for the push listener
func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		Addr:             ":8081",
		HandshakeTimeout: 10 * time.Second,
	}
}

// Listener accepts push connections; each sends one line naming its player, then only reads
type Listener struct {
	cfg    ListenerConfig
	binder Binder
	logger *slog.Logger

	mu sync.Mutex
	ln net.Listener
}

// NewListener creates a push listener; call Listen then Serve
func NewListener(cfg ListenerConfig, binder Binder, logger *slog.Logger) *Listener {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultListenerConfig().HandshakeTimeout
	}
	return &Listener{
		cfg:    cfg,
		binder: binder,
		logger: logger.With(slog.String("component", "notify")),
	}
}

// Listen binds the listening socket
func (l *Listener) Listen() error {
	ln, err := net.Listen("tcp", l.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", l.cfg.Addr, err)
	}
	l.mu.Lock()
	l.ln = ln
	l.mu.Unlock()
	l.logger.Info("push listener bound", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or nil before Listen
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// Serve accepts connections until ctx is cancelled or Close is called
func (l *Listener) Serve(ctx context.Context) error {
	l.mu.Lock()
	ln := l.ln
	l.mu.Unlock()
	if ln == nil {
		return errors.New("push listener not bound")
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			l.logger.Warn("accept failed", slog.String("error", err.Error()))
			continue
		}
		go l.handle(conn)
	}
}

// Close stops accepting new connections
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Close()
}

func (l *Listener) handle(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	reader := bufio.NewReaderSize(conn, handshakeBuffer)

	_ = conn.SetReadDeadline(time.Now().Add(l.cfg.HandshakeTimeout))
	line, err := reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		l.logger.Info("push handshake too long", slog.String("remote", remote))
		l.refuse(conn, "handshake line too long")
		return
	}
	if err != nil {
		l.logger.Info("push handshake failed",
			slog.String("remote", remote),
			slog.String("error", err.Error()))
		_ = conn.Close()
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	name := strings.TrimSpace(string(line))
	ch, err := l.binder.AttachChannel(name, conn)
	if err != nil {
		l.logger.Info("push registration rejected",
			slog.String("player", name),
			slog.String("remote", remote),
			slog.String("error", err.Error()))
		l.refuse(conn, err.Error())
		return
	}
	l.logger.Info("push channel registered",
		slog.String("player", name),
		slog.String("remote", remote))

	// the client never sends after the handshake; any read result means it went away
	_, err = io.Copy(io.Discard, reader)
	if err == nil {
		err = io.EOF
	}
	if !ch.Closed() {
		ch.Break(err)
	}
}

// refuse answers a failed handshake and hangs up
func (l *Listener) refuse(conn net.Conn, reason string) {
	_ = conn.SetWriteDeadline(time.Now().Add(l.cfg.HandshakeTimeout))
	_, _ = io.WriteString(conn, "ERROR "+reason+"\n")
	_ = conn.Close()
}
