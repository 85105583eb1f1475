package meshcapade

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/meshcapade/meshcapade-export/internal/httpclient"
	"github.com/meshcapade/meshcapade-export/internal/logging"
)

const (
	StateReady = "READY"
	StateError = "ERROR"

	defaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// ExportPayload is the body sent to the export endpoint on every poll.
type ExportPayload struct {
	Format string `json:"format"`
	Anim   string `json:"anim"`
}

// DefaultExportPayload requests a GLB file with the scan animation.
var DefaultExportPayload = ExportPayload{Format: "GLB", Anim: "scan"}

// Poster sends an authenticated JSON POST. *httpclient.Client satisfies it.
type Poster interface {
	PostJSON(ctx context.Context, url string, payload any) (*http.Response, error)
}

// Client talks to the avatar export endpoint.
type Client struct {
	HTTP        Poster
	BaseURL     string // e.g. https://api.meshcapade.com/api/v1
	MaxBodySize int64  // cap on status bodies read, defaults to 10MB
}

// exportResponse mirrors the JSON:API envelope:
// {"data": {"attributes": {"state": "READY", "url": {"path": "https://..."}}}}
type exportResponse struct {
	Data struct {
		Attributes map[string]json.RawMessage `json:"attributes"`
	} `json:"data"`
}

type exportURL struct {
	Path string `json:"path"`
}

// ExportURL returns the export endpoint for assetID.
func (c *Client) ExportURL(assetID string) string {
	return fmt.Sprintf("%s/avatars/%s/export", c.BaseURL, url.PathEscape(assetID))
}

// CheckExport requests (or re-requests) an export of assetID and interprets
// the job state. It returns the download URL once the job is READY, an empty
// string while the job is still processing, and an error for anything else.
// A READY job without a download URL is reported as ErrMalformedResponse
// rather than pending, so it cannot turn into a silent poll until timeout.
func (c *Client) CheckExport(ctx context.Context, assetID string, payload ExportPayload) (string, error) {
	resp, err := c.HTTP.PostJSON(ctx, c.ExportURL(assetID), payload)
	if err != nil {
		return "", fmt.Errorf("export request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := httpclient.CheckStatus(resp); err != nil {
		return "", fmt.Errorf("export request failed: %w", err)
	}

	limit := c.MaxBodySize
	if limit <= 0 {
		limit = defaultMaxBodySize
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", fmt.Errorf("read export response: %w", err)
	}

	var parsed exportResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", malformed("could not decode export response: %v: %s", err, raw)
	}

	attrs := parsed.Data.Attributes
	if len(attrs) == 0 {
		return "", malformed("export response came back empty: %s", raw)
	}

	// A non-string state is treated like any other unknown state: pending.
	var state string
	_ = json.Unmarshal(attrs["state"], &state)

	switch state {
	case StateReady:
		var u exportURL
		if rawURL, ok := attrs["url"]; ok {
			_ = json.Unmarshal(rawURL, &u)
		}
		if u.Path == "" {
			return "", malformed("export is READY but has no download URL: %s", raw)
		}
		logging.Logger.Debug("export ready", "asset_id", assetID)
		return u.Path, nil
	case StateError:
		return "", &ExportFailedError{AssetID: assetID, Body: string(raw)}
	default:
		logging.Logger.Debug("export pending", "asset_id", assetID, "state", state)
		return "", nil
	}
}
