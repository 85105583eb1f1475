package config

import (
	"fmt"
	"io"
	"strings"

	internalconfig "github.com/meshcapade/meshcapade-export/internal/config"
	"github.com/spf13/cobra"
)

// NewConfigCmd returns a cobra command that displays current configuration.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show effective configuration",
		Long:  "Shows the current configuration values as ENV_VAR: value pairs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := internalconfig.LoadSettings()
			if err != nil {
				return err
			}

			displaySettings(cmd.OutOrStdout(), settings)
			return nil
		},
	}

	return cmd
}

// displaySettings prints each setting as "ENV_VAR: value"; durations are whole seconds.
func displaySettings(w io.Writer, s *internalconfig.Settings) {
	fmt.Fprintf(w, "%s: %s\n", internalconfig.TokenEnvVar, redactToken(s.APIToken))
	fmt.Fprintf(w, "MESHCAPADE_API_URL: %s\n", s.APIBaseURL)
	fmt.Fprintf(w, "POLL_INTERVAL: %d\n", int(s.PollInterval.Seconds()))
	fmt.Fprintf(w, "MAX_WAIT: %d\n", int(s.MaxWait.Seconds()))
	fmt.Fprintf(w, "HTTP_TIMEOUT: %d\n", int(s.HTTPTimeout.Seconds()))
	fmt.Fprintf(w, "HTTP_MAX_BODY_SIZE: %d\n", s.HTTPMaxBodySize)
}

// redactToken shows the first and last 4 characters of tokens of 12 or more
// characters and stars out shorter ones.
func redactToken(token string) string {
	switch n := len(token); {
	case n == 0:
		return "(not set)"
	case n < 12:
		return strings.Repeat("*", n)
	default:
		return token[:4] + "..." + token[n-4:]
	}
}
