package commands

import (
	"github.com/spf13/cobra"
)

func newContextMenuCmd(a *app) *cobra.Command {
	g := &gestureFlags{}

	cmd := &cobra.Command{
		Use:     "context-menu",
		Short:   "Open the context menu for a rendered datum",
		Example: `  xfilter context-menu -d data.yaml --datum '{"cat":"y"}' --x 120 --y 40`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			it, err := parseItem(g.single, g.facet)
			if err != nil {
				return err
			}
			return s.xf.HandleContextMenu(cmd.Context(), g.event("contextmenu"), it)
		},
	}

	g.register(cmd)
	return cmd
}
