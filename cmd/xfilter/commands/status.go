package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/crossfilter/config"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/i18n"
	"github.com/hupe1980/crossfilter/table"
)

func newStatusCmd(a *app) *cobra.Command {
	var (
		describe  bool
		highlight bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the dataset rows with their selection status",
		Example: `  xfilter status -d data.yaml --selection B
  xfilter status -d data.yaml --highlight --describe`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd, func(st *config.Settings) {
				st.EnableHighlight = st.EnableHighlight || highlight
			})
			if err != nil {
				return err
			}
			defer s.Close()

			l, err := i18n.New(s.settings.Locale)
			if err != nil {
				return err
			}
			d := table.New(l)

			values := s.xf.Values()
			columns := columnsOf(values)
			out := cmd.OutOrStdout()

			tw := newTabWriter(out)
			fmt.Fprintln(tw, strings.Join(columns, "\t"))
			for _, row := range values {
				cells := make([]string, len(columns))
				for n, c := range columns {
					cells[n] = d.CellTooltip(c, row[c])
				}
				fmt.Fprintln(tw, strings.Join(cells, "\t"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if describe {
				fmt.Fprintln(out)
				for _, c := range columns {
					fmt.Fprintf(out, "%s: %s\n", c, d.ColumnHeaderTooltip(c))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&describe, "describe", false, "print column descriptions")
	cmd.Flags().BoolVar(&highlight, "highlight", false, "derive highlight status columns")
	return cmd
}

// columnsOf returns the reserved row columns first, then every other key in
// sorted order.
func columnsOf(values []datum.Document) []string {
	lead := []string{datum.RowKey, datum.IdentityKey, datum.SelectedKey}
	seen := map[string]struct{}{}
	var rest []string
	for _, row := range values {
		for k := range row {
			if _, ok := seen[k]; ok || slices.Contains(lead, k) {
				continue
			}
			seen[k] = struct{}{}
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(lead, rest...)
}
