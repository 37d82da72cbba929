package books

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestClient_Lookup(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes/abc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"volumeInfo": map[string]any{
				"title":       "Frontier Tales",
				"description": "A collection of westerns.",
				"categories":  []string{"Fiction / Westerns"},
			},
		})
	})

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: time.Second}, nil)
	require.NoError(t, err)

	meta, err := client.Lookup(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Frontier Tales", meta.Title)
	assert.Equal(t, "A collection of westerns.", meta.Description)
	assert.Equal(t, []string{"Fiction / Westerns"}, meta.LooseCategories)
}

func TestClient_LookupNotFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = client.Lookup(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClient_LookupServerError(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = client.Lookup(context.Background(), "abc123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_RequiresBaseURLAndVolumeID(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{}, nil)
	require.Error(t, err)

	client, err := NewClient(Config{BaseURL: "http://localhost:0"}, nil)
	require.NoError(t, err)
	_, err = client.Lookup(context.Background(), "  ")
	require.Error(t, err)
}
