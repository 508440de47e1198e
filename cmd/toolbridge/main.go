// Command toolbridge inspects and replays the tool-call protocol of a live session.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "toolbridge",
		Short:        "Live-session tool bridge",
		Long:         "toolbridge declares host capabilities to a live session and replays tool-call traffic against them.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to toolbridge.yaml")
	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("toolbridge version %s\n", version))

	root.AddCommand(newDeclarationsCmd())
	root.AddCommand(newReplayCmd())
	return root
}
