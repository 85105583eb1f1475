package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/meshcapade/meshcapade-export/internal/config"
	"github.com/meshcapade/meshcapade-export/internal/httpclient"
	"github.com/meshcapade/meshcapade-export/internal/logging"
	"github.com/meshcapade/meshcapade-export/internal/meshcapade"
	"github.com/meshcapade/meshcapade-export/internal/storage"
	"github.com/spf13/cobra"
)

// ErrEmptyAssetID is returned when the asset ID argument is blank.
var ErrEmptyAssetID = errors.New("asset ID must not be empty")

// HTTPClient is what the workflow needs from the network layer.
type HTTPClient interface {
	PostJSON(ctx context.Context, url string, payload any) (*http.Response, error)
	Get(ctx context.Context, url string) (*http.Response, error)
}

// Deps holds the collaborators of Run so tests can replace them.
type Deps struct {
	LoadSettings  func() (*config.Settings, error)
	NewHTTPClient func(settings *config.Settings) HTTPClient
	Clock         meshcapade.Clock
	Stdout        io.Writer
}

// DefaultDeps wires the real settings loader, HTTP client and wall clock.
func DefaultDeps(stdout io.Writer) Deps {
	return Deps{
		LoadSettings: config.LoadSettings,
		NewHTTPClient: func(s *config.Settings) HTTPClient {
			return httpclient.New(s.APIToken, s.HTTPTimeout)
		},
		Clock:  meshcapade.RealClock{},
		Stdout: stdout,
	}
}

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <asset_id>",
		Short: "Export an avatar as GLB and download it to <asset_id>.glb",
		Long: "Requests a GLB export of the avatar, waits for the export job to finish " +
			"and saves the file to <asset_id>.glb in the current directory.\n\n" +
			"Requires " + config.TokenEnvVar + " to be set (environment or .env file).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			_, err := Run(cmd.Context(), args[0], DefaultDeps(cmd.OutOrStdout()))
			return err
		},
	}
}

// Run exports assetID, waits for the job and downloads the result. It returns
// the path of the saved file.
func Run(ctx context.Context, assetID string, deps Deps) (string, error) {
	out := deps.Stdout
	if out == nil {
		out = io.Discard
	}

	if strings.TrimSpace(assetID) == "" {
		return "", ErrEmptyAssetID
	}
	outputPath := storage.OutputPath(assetID)

	fmt.Fprintln(out, "Step 1: Getting API token...")
	settings, err := deps.LoadSettings()
	if err != nil {
		return "", err
	}

	client := deps.NewHTTPClient(settings)

	fmt.Fprintln(out, "Step 2: Exporting avatar...")
	logging.Logger.Debug("requesting export", "asset_id", assetID, "api", settings.APIBaseURL)
	poller := &meshcapade.Poller{
		Checker: &meshcapade.Client{
			HTTP:        client,
			BaseURL:     settings.APIBaseURL,
			MaxBodySize: settings.HTTPMaxBodySize,
		},
		Payload:  meshcapade.DefaultExportPayload,
		Interval: settings.PollInterval,
		MaxWait:  settings.MaxWait,
		Clock:    deps.Clock,
		Progress: out,
	}
	downloadURL, err := poller.ExportAndWait(ctx, assetID)
	if err != nil {
		return "", err
	}
	fmt.Fprintln(out, "Export completed!")

	fmt.Fprintln(out, "Step 3: Downloading avatar...")
	if _, err := storage.DownloadFile(ctx, client, downloadURL, outputPath, storage.DownloadOptions{Output: out}); err != nil {
		return "", err
	}

	fmt.Fprintf(out, "\nSuccess! Avatar downloaded and saved to: %s\n", outputPath)
	return outputPath, nil
}
