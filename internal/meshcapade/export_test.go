package meshcapade

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshcapade/meshcapade-export/internal/httpclient"
	"github.com/meshcapade/meshcapade-export/internal/testsupport"
)

// newTestClient serves body with status for every export request.
func newTestClient(t *testing.T, status int, body string) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return &Client{HTTP: httpclient.New("tok", time.Second), BaseURL: server.URL}
}

func TestClient_CheckExport_Request(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload ExportPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(testsupport.ExportStatusBody("PROCESSING", "")))
	}))
	defer server.Close()

	client := &Client{HTTP: httpclient.New("secret", time.Second), BaseURL: server.URL + "/api/v1"}
	_, err := client.CheckExport(context.Background(), "7fae7513-9860", DefaultExportPayload)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/avatars/7fae7513-9860/export", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, ExportPayload{Format: "GLB", Anim: "scan"}, gotPayload)
}

func TestClient_ExportURL_EscapesAssetID(t *testing.T) {
	client := &Client{BaseURL: "https://api.example.com/api/v1"}
	assert.Equal(t, "https://api.example.com/api/v1/avatars/a%2Fb/export", client.ExportURL("a/b"))
}

func TestClient_CheckExport_Ready(t *testing.T) {
	client := newTestClient(t, http.StatusOK, testsupport.ExportStatusBody(StateReady, "https://cdn.example/x.glb"))

	got, err := client.CheckExport(context.Background(), "abc", DefaultExportPayload)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/x.glb", got)
}

func TestClient_CheckExport_ReadyWithoutURL(t *testing.T) {
	tests := map[string]string{
		"url missing":     `{"data":{"attributes":{"state":"READY"}}}`,
		"url null":        `{"data":{"attributes":{"state":"READY","url":null}}}`,
		"path empty":      `{"data":{"attributes":{"state":"READY","url":{"path":""}}}}`,
		"path wrong type": `{"data":{"attributes":{"state":"READY","url":{"path":42}}}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, http.StatusOK, body)

			_, err := client.CheckExport(context.Background(), "abc", DefaultExportPayload)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Contains(t, err.Error(), body)
		})
	}
}

func TestClient_CheckExport_ErrorState(t *testing.T) {
	body := `{"data":{"attributes":{"state":"ERROR","reason":"mesh invalid"}}}`
	client := newTestClient(t, http.StatusOK, body)

	_, err := client.CheckExport(context.Background(), "abc", DefaultExportPayload)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExportFailed)

	var failed *ExportFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "abc", failed.AssetID)
	assert.Equal(t, body, failed.Body)
	assert.Contains(t, err.Error(), "mesh invalid")
}

func TestClient_CheckExport_Pending(t *testing.T) {
	tests := map[string]string{
		"processing":       testsupport.ExportStatusBody("PROCESSING", ""),
		"queued":           testsupport.ExportStatusBody("QUEUED", ""),
		"pending with url": testsupport.ExportStatusBody("PENDING", "https://cdn.example/stale.glb"),
		"state missing":    `{"data":{"attributes":{"name":"avatar"}}}`,
		"state not string": `{"data":{"attributes":{"state":3}}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, http.StatusOK, body)

			got, err := client.CheckExport(context.Background(), "abc", DefaultExportPayload)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestClient_CheckExport_Malformed(t *testing.T) {
	tests := map[string]string{
		"attributes missing": `{"data":{"id":"abc"}}`,
		"attributes empty":   `{"data":{"attributes":{}}}`,
		"attributes null":    `{"data":{"attributes":null}}`,
		"data missing":       `{}`,
		"not json":           `<html>oops</html>`,
		"data wrong type":    `{"data":[1,2,3]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, http.StatusOK, body)

			_, err := client.CheckExport(context.Background(), "abc", DefaultExportPayload)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Contains(t, err.Error(), body)
		})
	}
}

func TestClient_CheckExport_HTTPError(t *testing.T) {
	client := newTestClient(t, http.StatusUnauthorized, `{"errors":[{"detail":"invalid token"}]}`)

	_, err := client.CheckExport(context.Background(), "abc", DefaultExportPayload)
	require.Error(t, err)

	var statusErr *httpclient.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.True(t, strings.Contains(err.Error(), "invalid token"))
	assert.False(t, errors.Is(err, ErrMalformedResponse))
}

func TestClient_CheckExport_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := &Client{HTTP: httpclient.New("tok", time.Second), BaseURL: baseURL}
	_, err := client.CheckExport(context.Background(), "abc", DefaultExportPayload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export request failed")
}
