package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// projectPath builds a project-scoped API path
func projectPath(suffix string) (string, error) {
	if cfg.Project == "" {
		return "", fmt.Errorf("--project is required (or set INKDUEL_PROJECT)")
	}
	return "/api/v1/projects/" + url.PathEscape(cfg.Project) + suffix, nil
}

// requirePlayer returns the configured player name or an error
func requirePlayer() (string, error) {
	if cfg.Player == "" {
		return "", fmt.Errorf("--player is required (or set INKDUEL_PLAYER)")
	}
	return cfg.Player, nil
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the player in a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := requirePlayer()
			if err != nil {
				return err
			}
			path, err := projectPath("/players")
			if err != nil {
				return err
			}

			req := map[string]string{"player": player}
			var result Balances

			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newHeartbeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heartbeat",
		Short: "Send a presence heartbeat",
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := requirePlayer()
			if err != nil {
				return err
			}
			path, err := projectPath("/heartbeat")
			if err != nil {
				return err
			}

			req := map[string]string{
				"player":     player,
				"session_id": cfg.SessionID,
			}

			if err := client.Post(path, req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("heartbeat sent")
			return nil
		},
	}
}

func newPlayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List active players in the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := projectPath("/players/active")
			if err != nil {
				return err
			}
			if cfg.Player != "" {
				path += "?excluding=" + url.QueryEscape(cfg.Player)
			}

			var result ActivePlayers
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the player's token balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := requirePlayer()
			if err != nil {
				return err
			}
			path, err := projectPath("/players/" + url.PathEscape(player))
			if err != nil {
				return err
			}

			var result Balances
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
