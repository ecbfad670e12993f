package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Print what happens around the current player",
		Long: `Connect to the notification port and print every message pushed to
the current player until the server closes the connection or Ctrl+C is
pressed. The player must have joined first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return listen(ctx, cfg.NotifyAddr, name, cfg.Verbose, cmd.OutOrStdout())
		},
	}
}

// listen binds the notification channel for name and copies lines to w
func listen(ctx context.Context, addr, name string, verbose bool, w io.Writer) error {
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	if _, err := io.WriteString(conn, name+"\n"); err != nil {
		return fmt.Errorf("failed to bind: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if rest, ok := strings.CutPrefix(line, "ERROR "); ok {
				return fmt.Errorf("server refused channel: %s", rest)
			}
		}
		if verbose {
			_, _ = fmt.Fprintf(w, "[%s] %s\n", time.Now().Format("15:04:05"), line)
		} else {
			_, _ = fmt.Fprintln(w, line)
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("connection lost: %w", err)
	}
	return nil
}
