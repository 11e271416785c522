package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newAttackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attack <target>",
		Short: "Challenge another player for a review token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := requirePlayer()
			if err != nil {
				return err
			}
			path, err := projectPath("/challenges")
			if err != nil {
				return err
			}

			req := map[string]string{
				"attacker": player,
				"target":   args[0],
			}
			var result AttackResult

			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRespondCmd() *cobra.Command {
	var useShield bool

	cmd := &cobra.Command{
		Use:   "respond <challenge-id>",
		Short: "Respond to an incoming challenge",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("challenge id is required")
			}
			path, err := projectPath("/challenges/" + url.PathEscape(args[0]) + "/respond")
			if err != nil {
				return err
			}

			req := map[string]bool{"use_shield": useShield}
			var result RespondResult

			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useShield, "shield", false, "Spend a shield token to block the steal")

	return cmd
}
