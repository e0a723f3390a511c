package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "polynav",
		Short:        "polygon region pathfinding",
		SilenceUsage: true,
	}
	root.AddCommand(ServeCmd(), RouteCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
