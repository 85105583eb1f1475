package testsupport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// ExportAPI fakes the export endpoint and the file host in one server.
// Export requests answer with StatusBodies in order, repeating the last one;
// GET /files/<name> serves Files[name].
type ExportAPI struct {
	*httptest.Server

	mu             sync.Mutex
	StatusBodies   []string
	Files          map[string][]byte
	ExportRequests int
	Downloads      int
	AuthHeaders    []string
}

// NewExportAPI starts an ExportAPI that is closed on test cleanup.
func NewExportAPI(t testing.TB, statusBodies ...string) *ExportAPI {
	t.Helper()

	api := &ExportAPI{StatusBodies: statusBodies, Files: map[string][]byte{}}
	api.Server = httptest.NewServer(http.HandlerFunc(api.handle))
	t.Cleanup(api.Close)
	return api
}

// FileURL returns the download URL for a file served by the fake.
func (a *ExportAPI) FileURL(name string) string {
	return a.URL + "/files/" + name
}

// Counts returns the number of export and download requests seen so far.
func (a *ExportAPI) Counts() (exports, downloads int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ExportRequests, a.Downloads
}

func (a *ExportAPI) handle(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/export"):
		a.AuthHeaders = append(a.AuthHeaders, r.Header.Get("Authorization"))
		i := a.ExportRequests
		if i >= len(a.StatusBodies) {
			i = len(a.StatusBodies) - 1
		}
		a.ExportRequests++
		if i < 0 {
			http.Error(w, "no status configured", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.api+json")
		w.Write([]byte(a.StatusBodies[i]))
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/files/"):
		a.Downloads++
		data, ok := a.Files[strings.TrimPrefix(r.URL.Path, "/files/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	default:
		http.NotFound(w, r)
	}
}
