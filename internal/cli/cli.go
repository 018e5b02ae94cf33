// Package cli implements the coordinator command line.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ygrebnov/coordinator/internal/config"
)

// NewRootCommand returns the coordinator command writing its output to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "coordinator",
		Short:         "Distribute simulated tasks over a pool of workers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().StringP("config", "c", "", "path to a YAML config file")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newRunCommand(), newConfigCommand())
	return root
}

// loadConfig resolves the configuration for cmd from --config, the environment and flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(file, cmd.Flags())
}

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
