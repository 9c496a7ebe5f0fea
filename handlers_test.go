package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwv/orthotrace/ortho"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app := NewApp()
	require.NoError(t, app.ApplyOptions(AppOptions{ConfigFile: defaultConfigFile}))
	return app
}

func TestHealthEndpoint(t *testing.T) {
	server := httptest.NewServer(newHTTPServer(newTestApp(t)))
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var status struct {
		Status      string `json:"status"`
		Strategy    string `json:"strategy"`
		HasDocument bool   `json:"hasDocument"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "simplify-fit", status.Strategy)
	assert.False(t, status.HasDocument)
}

func TestOrthogonalizeEndpoint(t *testing.T) {
	server := httptest.NewServer(newHTTPServer(newTestApp(t)))
	defer server.Close()

	body, err := json.Marshal(&ortho.Job{
		ID:     "req-1",
		Points: noisySquare,
		Closed: true,
	})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/orthogonalize", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result ortho.JobResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "req-1", result.ID)
	assert.True(t, result.Processed)
	assert.Len(t, result.Points, 4)
}

func TestOrthogonalizeEndpoint_MethodNotAllowed(t *testing.T) {
	server := httptest.NewServer(newHTTPServer(newTestApp(t)))
	defer server.Close()

	resp, err := http.Get(server.URL + "/orthogonalize")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestOrthogonalizeEndpoint_BadJSON(t *testing.T) {
	server := httptest.NewServer(newHTTPServer(newTestApp(t)))
	defer server.Close()

	resp, err := http.Post(server.URL+"/orthogonalize", "application/json",
		strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPreviewEndpoints_NoDocument(t *testing.T) {
	server := httptest.NewServer(newHTTPServer(newTestApp(t)))
	defer server.Close()

	for _, path := range []string{"/preview.svg", "/preview.png"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}
}

func TestPreviewEndpoints_WithDocument(t *testing.T) {
	app := newTestApp(t)

	input := &ortho.Document{
		Entities: []ortho.Entity{{ID: "room", Closed: true, Points: noisySquare}},
	}
	output := &ortho.Document{
		Entities: []ortho.Entity{{ID: "room", Closed: true, Points: ortho.Polyline{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
		}}},
	}
	app.setPreviewDocuments(input, output)

	server := httptest.NewServer(newHTTPServer(app))
	defer server.Close()

	t.Run("svg", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/preview.svg")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	})

	t.Run("png", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/preview.png")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

		buf := make([]byte, 4)
		_, err = io.ReadFull(resp.Body, buf)
		require.NoError(t, err)
		assert.Equal(t, []byte("\x89PNG"), buf)
	})
}
