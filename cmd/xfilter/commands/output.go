package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hupe1980/crossfilter/tooltip"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeItems(w io.Writer, items []tooltip.DisplayItem) {
	tw := newTabWriter(w)
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\n", it.DisplayName, strings.ReplaceAll(it.Value, "\n", " "))
	}
	tw.Flush()
}

func joinOrNone(ks []string) string {
	if len(ks) == 0 {
		return "(none)"
	}
	return strings.Join(ks, ",")
}
