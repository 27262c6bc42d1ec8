package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/crossfilter"
	"github.com/hupe1980/crossfilter/config"
	"github.com/hupe1980/crossfilter/datum"
	"github.com/hupe1980/crossfilter/selection"
)

type gestureFlags struct {
	single  string
	facet   []string
	options string
	ctrl    bool
	shift   bool
	alt     bool
	x, y    float64
}

func (g *gestureFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.single, "datum", "", "rendered datum as a JSON object")
	cmd.Flags().StringArrayVar(&g.facet, "facet", nil, "facet datum as a JSON object (repeatable)")
	cmd.Flags().BoolVar(&g.ctrl, "ctrl", false, "hold ctrl")
	cmd.Flags().BoolVar(&g.shift, "shift", false, "hold shift")
	cmd.Flags().BoolVar(&g.alt, "alt", false, "hold alt")
	cmd.Flags().Float64Var(&g.x, "x", 0, "event x coordinate")
	cmd.Flags().Float64Var(&g.y, "y", 0, "event y coordinate")
}

func (g *gestureFlags) event(eventType string) crossfilter.Event {
	return crossfilter.Event{
		Type:      eventType,
		Modifiers: crossfilter.Modifiers{Ctrl: g.ctrl, Shift: g.shift, Alt: g.alt},
		Point:     selection.Point{X: g.x, Y: g.y},
	}
}

func newSelectCmd(a *app) *cobra.Command {
	g := &gestureFlags{}

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Apply a selection gesture and print the resulting selection",
		Example: `  xfilter select -d data.yaml --datum '{"cat":"y"}'
  xfilter select -d data.yaml --selection A --ctrl --facet '{"__row__":0}' --facet '{"__row__":1}'
  xfilter select -d data.yaml --options '{"mode":"advanced","filterExpr":"datum.val > 15"}'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.session(cmd, enableSelection)
			if err != nil {
				return err
			}
			defer s.Close()

			opts, err := crossfilter.ParseCrossFilterOptions([]byte(g.options))
			if err != nil {
				return err
			}
			it, err := parseItem(g.single, g.facet)
			if err != nil {
				return err
			}

			res, err := s.xf.HandleInteractionEvent(cmd.Context(), g.event("click"), it, opts)
			if err != nil {
				return err
			}
			if err := waitAck(cmd.Context(), res.Ack); err != nil {
				return err
			}
			a.dumpTo(cmd.ErrOrStderr(), "result", res)
			return writeResult(cmd.OutOrStdout(), res, s.xf.Selection().Keys())
		},
	}

	g.register(cmd)
	cmd.Flags().StringVar(&g.options, "options", "", "cross-filter options as JSON or YAML")
	return cmd
}

func newFilterCmd(a *app) *cobra.Command {
	var (
		expr   string
		origin string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "filter EXPR",
		Short: "Select the rows matching an advanced cross-filter expression",
		Args:  cobra.MaximumNArgs(1),
		Example: `  xfilter filter -d data.yaml "datum.val >= 20"
  xfilter filter -d data.yaml "datum.cat == _{cat}_" --origin '{"cat":"x"}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				expr = args[0]
			}
			s, err := a.session(cmd, enableSelection)
			if err != nil {
				return err
			}
			defer s.Close()

			var it *datum.Item
			if origin != "" {
				if it, err = parseItem(origin, nil); err != nil {
					return err
				}
			}
			opts := &crossfilter.CrossFilterOptions{Mode: crossfilter.ModeAdvanced, FilterExpr: expr, Limit: limit}
			res, err := s.xf.HandleInteractionEvent(cmd.Context(), crossfilter.Event{Type: "click"}, it, opts)
			if err != nil {
				return err
			}
			if err := waitAck(cmd.Context(), res.Ack); err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), res, s.xf.Selection().Keys())
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "originating datum for _{field}_ tokens, as a JSON object")
	cmd.Flags().IntVar(&limit, "limit", 0, "selection limit override")
	return cmd
}

func enableSelection(s *config.Settings) {
	s.EnableSelection = true
}

func writeResult(w io.Writer, res crossfilter.Result, confirmed []string) error {
	switch {
	case res.Warning != "":
		_, err := fmt.Fprintf(w, "warning: %s\n", res.Warning)
		return err
	case res.Aborted:
		_, err := fmt.Fprintf(w, "rejected: limit %d exceeded, selection kept: %s\n", res.Limit, keys(res.Identities))
		return err
	}
	if res.Strategy != "" {
		fmt.Fprintf(w, "resolved by %s\n", res.Strategy)
	}
	_, err := fmt.Fprintf(w, "selection: %s\n", joinOrNone(confirmed))
	return err
}
