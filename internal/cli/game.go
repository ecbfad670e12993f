package cli

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// playerText runs a request for the current player and prints the text reply
func playerText(method string, body any, parts ...string) error {
	name, err := cfg.RequirePlayer()
	if err != nil {
		return err
	}

	var result TextResult
	if err := client.Do(method, playerPath(name, parts...), body, &result); err != nil {
		return err
	}

	NewOutput(cfg.Output).Print(result)
	return nil
}

// playerCode runs a request for the current player and prints the response code
func playerCode(method string, body any, parts ...string) error {
	name, err := cfg.RequirePlayer()
	if err != nil {
		return err
	}

	var result CodeResult
	if err := client.Do(method, playerPath(name, parts...), body, &result); err != nil {
		return err
	}

	NewOutput(cfg.Output).Print(result)
	return nil
}

func newLookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "look",
		Short: "Describe the current room",
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerText(http.MethodGet, nil, "look")
		},
	}
}

func newLeftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "left",
		Short: "Turn 90 degrees to the left",
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerText(http.MethodPost, nil, "left")
		},
	}
}

func newRightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "right",
		Short: "Turn 90 degrees to the right",
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerText(http.MethodPost, nil, "right")
		},
	}
}

func newSayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "say <message...>",
		Short: "Say something to everyone in the room",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"message": strings.Join(args, " ")}
			return playerText(http.MethodPost, body, "say")
		},
	}
}

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move [distance]",
		Short: "Walk forward in the direction you are facing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			distance := 1
			if len(args) == 1 {
				d, err := strconv.Atoi(args[0])
				if err != nil {
					return usageErrorf("distance must be a number, got %q", args[0])
				}
				distance = d
			}

			body := map[string]int{"distance": distance}
			return playerText(http.MethodPost, body, "move")
		},
	}
}

func newPickupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pickup <object...>",
		Short: "Pick up an object in the room",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"target": strings.Join(args, " ")}
			return playerText(http.MethodPost, body, "pickup")
		},
	}
}

func newPickupAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pickup-all",
		Short: "Pick up everything in the room",
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerText(http.MethodPost, nil, "pickup-all")
		},
	}
}

func newInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "inventory",
		Aliases: []string{"inv"},
		Short:   "List what you are carrying",
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerText(http.MethodGet, nil, "inventory")
		},
	}
}

func newFriendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friend",
		Short: "Friend list operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a friend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerCode(http.MethodPost, map[string]string{"friend": args[0]}, "friends")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a friend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerCode(http.MethodDelete, nil, "friends", url.PathEscape(args[0]))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "online",
		Short: "List friends who are online",
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerText(http.MethodGet, nil, "friends", "online")
		},
	})

	return cmd
}

func newWhiteboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "whiteboard",
		Aliases: []string{"wb"},
		Short:   "Read and write the room whiteboard",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "read",
		Short: "Read the whiteboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerText(http.MethodGet, nil, "whiteboard")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "write <text...>",
		Short: "Add a line to the whiteboard",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerText(http.MethodPut, map[string]string{"text": strings.Join(args, " ")}, "whiteboard")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "erase",
		Short: "Wipe the whiteboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return playerText(http.MethodDelete, nil, "whiteboard")
		},
	})

	return cmd
}
