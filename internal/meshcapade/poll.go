package meshcapade

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/meshcapade/meshcapade-export/internal/logging"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxWait      = 600 * time.Second
)

// ExportChecker checks the state of one export job. *Client satisfies it.
type ExportChecker interface {
	CheckExport(ctx context.Context, assetID string, payload ExportPayload) (string, error)
}

// Clock abstracts time so the poll loop can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock uses the wall clock. Sleep returns early with ctx.Err() if ctx is done.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Poller repeatedly checks an export until it is ready, fails, or MaxWait elapses.
type Poller struct {
	Checker  ExportChecker
	Payload  ExportPayload
	Interval time.Duration
	MaxWait  time.Duration
	Clock    Clock
	Progress io.Writer // receives "Export processing..." lines; nil discards them
}

// NewPoller returns a Poller with the default payload, interval and deadline.
func NewPoller(checker ExportChecker) *Poller {
	return &Poller{
		Checker:  checker,
		Payload:  DefaultExportPayload,
		Interval: DefaultPollInterval,
		MaxWait:  DefaultMaxWait,
		Clock:    RealClock{},
		Progress: io.Discard,
	}
}

// ExportAndWait polls until the export of assetID is ready and returns its
// download URL. Errors from the checker end the loop immediately.
func (p *Poller) ExportAndWait(ctx context.Context, assetID string) (string, error) {
	clock := p.Clock
	if clock == nil {
		clock = RealClock{}
	}
	progress := p.Progress
	if progress == nil {
		progress = io.Discard
	}

	start := clock.Now()
	for attempt := 1; ; attempt++ {
		downloadURL, err := p.Checker.CheckExport(ctx, assetID, p.Payload)
		if err != nil {
			return "", err
		}
		if downloadURL != "" {
			logging.Logger.Debug("export completed", "asset_id", assetID, "attempts", attempt)
			return downloadURL, nil
		}

		elapsed := clock.Now().Sub(start)
		if elapsed > p.MaxWait {
			return "", &TimeoutError{AssetID: assetID, MaxWait: p.MaxWait}
		}

		fmt.Fprintf(progress, "Export processing... (elapsed: %ds)\n", int(elapsed.Seconds()))
		if err := clock.Sleep(ctx, p.Interval); err != nil {
			return "", err
		}
	}
}
