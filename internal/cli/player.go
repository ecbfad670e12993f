package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newJoinCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "join <name>",
		Short: "Join the world with an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{
				"name":     args[0],
				"password": password,
			}

			var result CodeResult
			if err := client.Post("/api/v1/players/join", body, &result); err != nil {
				return err
			}

			if err := cfg.SavePlayer(args[0]); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newCreateCmd() *cobra.Command {
	var (
		password string
		recovery []string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an account and join the world",
		Long: `Create an account and join the world.

Recovery questions are given as --recovery "question=answer" and may be
repeated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parseRecovery(recovery)
			if err != nil {
				return err
			}

			body := map[string]any{
				"name":     args[0],
				"password": password,
				"recovery": pairs,
			}

			var result CodeResult
			if err := client.Post("/api/v1/players", body, &result); err != nil {
				return err
			}

			if err := cfg.SavePlayer(args[0]); err != nil {
				return fmt.Errorf("failed to save player: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringArrayVar(&recovery, "recovery", nil, "Recovery pair as question=answer (repeatable)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the world",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			var result CodeResult
			if err := client.Post(playerPath(name, "leave"), nil, &result); err != nil {
				return err
			}

			if err := cfg.ClearPlayer(); err != nil {
				return fmt.Errorf("failed to clear player: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the current account and leave the world",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}
			if !confirm {
				return usageErrorf("refusing to delete %s without --yes", name)
			}

			var result CodeResult
			if err := client.Delete(playerPath(name), &result); err != nil {
				return err
			}

			if err := cfg.ClearPlayer(); err != nil {
				return fmt.Errorf("failed to clear player: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm deletion")

	return cmd
}

func newHeartbeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heartbeat",
		Short: "Tell the server the player is still here",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			var result CodeResult
			if err := client.Post(playerPath(name, "heartbeat"), nil, &result); err != nil {
				return err
			}

			if cfg.Verbose {
				NewOutput(cfg.Output).Print(result)
			}
			return nil
		},
	}
}

func newPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Password operations",
	}

	cmd.AddCommand(newPasswordVerifyCmd())
	cmd.AddCommand(newPasswordResetCmd())

	return cmd
}

func newPasswordVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <name> <password>",
		Short: "Check a password without joining",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CodeResult
			body := map[string]string{"password": args[1]}
			if err := client.Post(playerPath(args[0], "password", "verify"), body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPasswordResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <name> <new-password>",
		Short: "Replace an account password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CodeResult
			body := map[string]string{"password": args[1]}
			if err := client.Put(playerPath(args[0], "password"), body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newRecoveryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recovery",
		Short: "Password recovery questions",
	}

	cmd.AddCommand(newRecoveryLookupCmd("question", "Show a recovery question"))
	cmd.AddCommand(newRecoveryLookupCmd("answer", "Show the answer to a recovery question"))

	return cmd
}

func newRecoveryLookupCmd(kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " <name> <index>",
		Short: short,
		Long:  short + ". Questions are numbered from 1.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 1 {
				return usageErrorf("index must be a positive number, got %q", args[1])
			}

			var result TextResult
			if err := client.Get(playerPath(args[0], "recovery", strconv.Itoa(index), kind), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

// RecoveryPair is one recovery question sent on account creation
type RecoveryPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func parseRecovery(values []string) ([]RecoveryPair, error) {
	pairs := make([]RecoveryPair, 0, len(values))
	for _, v := range values {
		question, answer, ok := strings.Cut(v, "=")
		question = strings.TrimSpace(question)
		if !ok || question == "" {
			return nil, usageErrorf("recovery must look like question=answer, got %q", v)
		}
		pairs = append(pairs, RecoveryPair{Question: question, Answer: strings.TrimSpace(answer)})
	}
	return pairs, nil
}
