package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "inkduel",
		Short: "CLI tool for the ink duel API",
		Long: `inkduel is a CLI tool for interacting with the ink duel JSON API.

It supports all API operations including player setup, presence heartbeats,
challenge attacks and responses, review submissions, and real-time SSE
event streaming.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load or mint the heartbeat session id
			if err := cfg.LoadSession(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: INKDUEL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Project, "project", cfg.Project, "Project code (env: INKDUEL_PROJECT)")
	rootCmd.PersistentFlags().StringVar(&cfg.Player, "player", cfg.Player, "Player display name (env: INKDUEL_PLAYER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newHeartbeatCmd())
	rootCmd.AddCommand(newPlayersCmd())
	rootCmd.AddCommand(newBalanceCmd())
	rootCmd.AddCommand(newAttackCmd())
	rootCmd.AddCommand(newRespondCmd())
	rootCmd.AddCommand(newReviewCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
