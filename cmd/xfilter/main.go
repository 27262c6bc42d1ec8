// Command xfilter resolves, selects and exports crossfilter datasets from the
// command line.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/crossfilter/cmd/xfilter/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
