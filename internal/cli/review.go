package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newReviewCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "review [essay-text]",
		Short: "Submit an essay for review",
		Long: `Submit an essay for review. On success a review token is spent and an
attack token is granted.

The essay text is taken from the argument, or from a file via --file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := requirePlayer()
			if err != nil {
				return err
			}

			var essay string
			switch {
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read essay file: %w", err)
				}
				essay = string(data)
			case len(args) == 1:
				essay = args[0]
			default:
				return fmt.Errorf("essay text or --file is required")
			}

			path, err := projectPath("/reviews")
			if err != nil {
				return err
			}

			req := map[string]string{
				"player": player,
				"essay":  essay,
			}
			var result ReviewResult

			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Read the essay from a file")

	return cmd
}
