// Package app holds the starsync command line.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFlag  = "config"
	addressFlag = "address"
)

// NewRootCmd builds the command tree. Settings come from the environment,
// an optional env file, and flags bound through viper.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "starsync",
		Short:         "Mirror a GitHub user's starred repositories into a database",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().String(configFlag, "", "Path to an env-format configuration file (default .env when present)")

	root.AddCommand(newServeCmd(v), newSyncCmd(v))
	return root
}
