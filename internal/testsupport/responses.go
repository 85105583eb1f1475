package testsupport

import (
	"encoding/json"
)

// ExportStatusBody renders an export status response in the API's envelope.
// An empty downloadURL omits the url object.
func ExportStatusBody(state, downloadURL string) string {
	attrs := map[string]any{"state": state}
	if downloadURL != "" {
		attrs["url"] = map[string]string{"path": downloadURL}
	}
	body, err := json.Marshal(map[string]any{
		"data": map[string]any{
			"type":       "asset",
			"attributes": attrs,
		},
	})
	if err != nil {
		panic(err)
	}
	return string(body)
}
