package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/calvinwijaya/blackjack/internal/config"
)

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	d := config.Default()

	root := &cobra.Command{
		Use:          "blackjack",
		Short:        "Single-player blackjack: HTTP server and terminal game",
		SilenceUsage: true,
	}
	root.PersistentFlags().String(config.KeyLogLevel, d.LogLevel, "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool(config.KeyLogJSON, d.LogJSON, "Log as JSON")
	root.PersistentFlags().Int(config.KeyDecks, d.Decks, "Decks per shoe for new games (1-8)")

	root.AddCommand(newServeCmd(v), newPlayCmd(v))
	return root
}

// loadConfig merges the command's flags over env and defaults.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (config.Config, error) {
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return config.Config{}, err
	}
	return config.Load(v)
}
