package commands

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/crossfilter"
	"github.com/hupe1980/crossfilter/datum"
)

func newTooltipCmd(a *app) *cobra.Command {
	var (
		payload string
		single  string
		event   string
		raw     bool
	)

	cmd := &cobra.Command{
		Use:   "tooltip PAYLOAD",
		Short: "Render the display items of a tooltip payload",
		Args:  cobra.MaximumNArgs(1),
		Example: `  xfilter tooltip -d data.yaml '{"val":"1234.5","cat":"y"}'
  xfilter tooltip -d data.yaml '"plain text"'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				payload = args[0]
			}
			s, err := a.session(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			v := datum.Null()
			if payload != "" {
				if v, err = parseValue(payload); err != nil {
					return err
				}
			}

			if raw {
				writeItems(cmd.OutOrStdout(), s.xf.TooltipItems(v))
				return nil
			}
			it := &datum.Item{Tooltip: v}
			if single != "" {
				if it.Datum, err = parseDocument(single); err != nil {
					return err
				}
			}
			s.xf.HandleTooltip(crossfilter.Event{Type: event}, it)
			return nil
		},
	}

	cmd.Flags().StringVar(&single, "datum", "", "rendered datum of the hovered mark, as a JSON object")
	cmd.Flags().StringVar(&event, "event", "mouseover", "event type")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the display items without dispatching")
	return cmd
}
