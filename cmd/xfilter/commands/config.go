package commands

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/crossfilter/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings as YAML",
		Long: `Print the settings after applying defaults, the config file, XFILTER_
environment variables and flags. Secrets are not printed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}
			return config.Write(cmd.OutOrStdout(), s)
		},
	})
	return cmd
}
