package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/resolve"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		single string
		facet  []string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve rendered datums to row identities",
		Example: `  xfilter resolve -d data.yaml --datum '{"cat":"y"}'
  xfilter resolve -d data.yaml --facet '{"__row__":0}' --facet '{"__row__":2}'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			it, err := parseItem(single, facet)
			if err != nil {
				return err
			}
			data := datum.Normalize(it)
			res := resolve.New().Resolve(s.registry.Current(), data)
			a.dumpTo(cmd.ErrOrStderr(), "datums", data)

			out := cmd.OutOrStdout()
			switch {
			case res.Identities == nil && res.Covered:
				fmt.Fprintf(out, "covers every row (%s): clear\n", res.Strategy)
			case res.Identities == nil:
				fmt.Fprintln(out, "nothing to resolve: clear")
			default:
				fmt.Fprintf(out, "%s: %s\n", res.Strategy, keys(res.Identities))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&single, "datum", "", "rendered datum as a JSON object")
	cmd.Flags().StringArrayVar(&facet, "facet", nil, "facet datum as a JSON object (repeatable)")
	return cmd
}
