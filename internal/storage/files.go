package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/meshcapade/meshcapade-export/internal/httpclient"
	"github.com/meshcapade/meshcapade-export/internal/logging"
)

const (
	// ChunkSize is the read size used when streaming a download to disk.
	ChunkSize = 1024 * 1024 // 1MiB

	// OutputExtension is appended to the asset ID to form the output file name.
	OutputExtension = ".glb"
)

// Getter performs a GET request. *httpclient.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// DownloadError wraps a failure to fetch the exported file.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download file: %v", e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// DownloadOptions controls user-facing output of DownloadFile.
type DownloadOptions struct {
	// Output receives the confirmation line and, when it is a terminal, a
	// progress bar. nil discards both.
	Output io.Writer
}

// OutputPath returns the file an asset is saved to: <assetID>.glb in the
// current working directory.
func OutputPath(assetID string) string {
	return assetID + OutputExtension
}

// DownloadFile streams url into outputPath, creating parent directories and
// truncating any existing file. On an HTTP failure the destination is left on
// disk as-is (empty or partially written). Returns the number of bytes written.
func DownloadFile(ctx context.Context, client Getter, url, outputPath string, opts DownloadOptions) (int64, error) {
	out := opts.Output
	if out == nil {
		out = io.Discard
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	resp, err := client.Get(ctx, url)
	if err != nil {
		return 0, &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if err := httpclient.CheckStatus(resp); err != nil {
		return 0, &DownloadError{URL: url, Err: err}
	}

	var dst io.Writer = f
	bar := newProgressBar(out, resp.ContentLength)
	if bar != nil {
		dst = io.MultiWriter(f, bar)
	}

	written, err := copyChunks(dst, resp.Body)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return written, fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return written, fmt.Errorf("failed to close file: %w", err)
	}

	logging.Logger.Debug("download complete", "path", outputPath, "bytes", written)
	fmt.Fprintf(out, "  File downloaded to: %s (%s)\n", outputPath, humanize.Bytes(uint64(written)))
	return written, nil
}

// copyChunks copies src to dst reading at most ChunkSize bytes at a time and
// writing each chunk in order before the next read.
func copyChunks(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, ChunkSize)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			w, err := dst.Write(buf[:n])
			written += int64(w)
			if err != nil {
				return written, err
			}
			if w != n {
				return written, io.ErrShortWrite
			}
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// newProgressBar returns a byte progress bar when out is an interactive
// terminal, nil otherwise. A negative size renders a spinner.
func newProgressBar(out io.Writer, size int64) *progressbar.ProgressBar {
	f, ok := out.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return nil
	}
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(f),
		progressbar.OptionSetDescription("  downloading"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
