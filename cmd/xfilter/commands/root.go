// Package commands implements the xfilter command tree.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the xfilter command tree.
func NewRootCmd() *cobra.Command {
	app := &app{}

	rootCmd := &cobra.Command{
		Use:   "xfilter",
		Short: "xfilter - cross-filter and selection tooling for visual datasets",
		Long: `xfilter loads a dataset file, resolves rendered datums to row identities,
applies selection gestures and cross-filter expressions, renders tooltips
and exports dataset snapshots to a blob store.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "config file (YAML or JSON)")
	flags.StringVarP(&app.datasetPath, "dataset", "d", "", "dataset file (YAML or JSON)")
	flags.StringSliceVar(&app.selection, "selection", nil, "identities selected before the command runs")
	flags.BoolVar(&app.dump, "dump", false, "dump internal values")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.String("locale", "", "message locale, e.g. en-US or de-DE")
	app.flags = flags

	rootCmd.AddCommand(
		newResolveCmd(app),
		newSelectCmd(app),
		newFilterCmd(app),
		newTooltipCmd(app),
		newStatusCmd(app),
		newContextMenuCmd(app),
		newExportCmd(app),
		newConfigCmd(app),
	)
	return rootCmd
}
