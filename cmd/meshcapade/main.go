package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meshcapade/meshcapade-export/internal/commands/config"
	"github.com/meshcapade/meshcapade-export/internal/commands/export"
	"github.com/meshcapade/meshcapade-export/internal/commands/version"
	"github.com/meshcapade/meshcapade-export/internal/httpclient"
	"github.com/meshcapade/meshcapade-export/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	var logLevel string

	root := &cobra.Command{
		Use:           "meshcapade",
		Short:         "Export and download avatars from the Meshcapade API",
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.InitLoggerTo(stderr, logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL or info")

	root.AddCommand(export.NewExportCmd())
	root.AddCommand(config.NewConfigCmd())
	root.AddCommand(version.NewVersionCmd())

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	httpclient.UserAgent = version.UserAgent()

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", singleLine(err))
		return 1
	}
	return 0
}

// singleLine collapses all whitespace runs in the error message, so response
// bodies embedded in errors cannot spill onto extra lines.
func singleLine(err error) string {
	return strings.Join(strings.Fields(err.Error()), " ")
}
