package meshcapade

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMalformedResponse is returned when an export status body cannot be interpreted.
	ErrMalformedResponse = errors.New("malformed export response")
	// ErrExportFailed is returned when the server reports the export job in ERROR state.
	ErrExportFailed = errors.New("export failed")
	// ErrTimeout is returned when polling exceeds the configured maximum wait.
	ErrTimeout = errors.New("export timed out")
)

// ExportFailedError carries the raw status body of a failed export job.
type ExportFailedError struct {
	AssetID string
	Body    string
}

func (e *ExportFailedError) Error() string {
	return fmt.Sprintf("export finished with ERROR state: %s", e.Body)
}

func (e *ExportFailedError) Is(target error) bool {
	return target == ErrExportFailed
}

// TimeoutError reports that an export did not become ready within MaxWait.
type TimeoutError struct {
	AssetID string
	MaxWait time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("export timed out after %d seconds", int(e.MaxWait.Seconds()))
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}
