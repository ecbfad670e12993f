package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// UsageError is a mistake in the command line caught before contacting the server
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string {
	return e.msg
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "textworld",
		Short: "CLI client for the textworld server",
		Long: `textworld is a CLI client for a shared text world.

Join or create an account once, then look around, move, talk and pick
things up. Run "textworld listen" in a second terminal to see what other
players do around you.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load player from file if not provided via flag/env
			if err := cfg.LoadPlayer(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL)
			stdout = cmd.OutOrStdout()
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: TEXTWORLD_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.NotifyAddr, "notify", cfg.NotifyAddr, "Notification address (env: TEXTWORLD_NOTIFY)")
	rootCmd.PersistentFlags().StringVar(&cfg.Player, "player", cfg.Player, "Player name (env: TEXTWORLD_PLAYER)")
	rootCmd.PersistentFlags().StringVar(&cfg.PlayerFile, "player-file", cfg.PlayerFile, "Player file path (env: TEXTWORLD_PLAYER_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newLeaveCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newHeartbeatCmd())
	rootCmd.AddCommand(newPasswordCmd())
	rootCmd.AddCommand(newRecoveryCmd())
	rootCmd.AddCommand(newLookCmd())
	rootCmd.AddCommand(newLeftCmd())
	rootCmd.AddCommand(newRightCmd())
	rootCmd.AddCommand(newSayCmd())
	rootCmd.AddCommand(newMoveCmd())
	rootCmd.AddCommand(newPickupCmd())
	rootCmd.AddCommand(newPickupAllCmd())
	rootCmd.AddCommand(newInventoryCmd())
	rootCmd.AddCommand(newFriendCmd())
	rootCmd.AddCommand(newWhiteboardCmd())
	rootCmd.AddCommand(newListenCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	err := NewRootCmd().Execute()
	if err == nil {
		return
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		os.Exit(2)
	}
	os.Exit(1)
}
