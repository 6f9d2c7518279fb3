// Package testutil provides shared test helpers: config files and fake caption and generation services.
package testutil

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestVideoID is the video served by NewYouTubeServer.
const TestVideoID = "dQw4w9WgXcQ"

type testConfig struct {
	cacheDriver       string
	captionsBaseURL   string
	generationBaseURL string
	apiKey            string
}

type ConfigOption func(*testConfig)

func WithCacheDriver(driver string) ConfigOption {
	return func(cfg *testConfig) { cfg.cacheDriver = driver }
}

// WithCaptionsServer points the caption provider at a fake YouTube server.
func WithCaptionsServer(baseURL string) ConfigOption {
	return func(cfg *testConfig) { cfg.captionsBaseURL = baseURL }
}

// WithGenerationServer points the generation client at a fake chat completions server.
func WithGenerationServer(baseURL string) ConfigOption {
	return func(cfg *testConfig) { cfg.generationBaseURL = baseURL }
}

// SetupTestConfig creates a config file whose cache and outputs live under tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, opts ...ConfigOption) string {
	t.Helper()

	cfg := testConfig{
		cacheDriver:       "file",
		captionsBaseURL:   "https://www.youtube.com",
		generationBaseURL: "https://openrouter.ai/api/v1",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, d := range []string{"cache", "outputs"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`captions:
  base_url: %s
generation:
  base_url: %s
  model: test-model
cache:
  driver: %s
  directory: %s
  sqlite_path: %s
outputs:
  directory: %s
`,
		cfg.captionsBaseURL,
		cfg.generationBaseURL,
		cfg.cacheDriver,
		filepath.Join(tmpDir, "cache", "notes"),
		filepath.Join(tmpDir, "cache", "notes.db"),
		filepath.Join(tmpDir, "outputs"),
	)
	if cfg.apiKey != "" {
		configContent = strings.Replace(configContent, "  model: test-model\n", "  model: test-model\n  api_key: "+cfg.apiKey+"\n", 1)
	}

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithAPIKey creates a config file with a fake generation API key.
func SetupTestConfigWithAPIKey(t *testing.T, tmpDir string, opts ...ConfigOption) string {
	t.Helper()
	opts = append(opts, func(cfg *testConfig) { cfg.apiKey = "fake-key-for-testing" })
	return SetupTestConfig(t, tmpDir, opts...)
}

// NewYouTubeServer serves a watch page for TestVideoID with one English caption track made of lines.
// Any other video has no captions.
func NewYouTubeServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()

	var serverURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		tracks := "[]"
		if r.URL.Query().Get("v") == TestVideoID {
			tracks = fmt.Sprintf(`[{"baseUrl":"%s/api/timedtext?v=%s&lang=en","vssId":".en"}]`, serverURL, TestVideoID)
		}
		_, _ = fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":%s}}};</script></html>`, tracks)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.WriteString(`<?xml version="1.0" encoding="utf-8" ?><transcript>`)
		for i, line := range lines {
			_, _ = fmt.Fprintf(&body, `<text start="%d" dur="1">`, i)
			_ = xml.EscapeText(&body, []byte(line))
			body.WriteString(`</text>`)
		}
		body.WriteString(`</transcript>`)
		_, _ = w.Write(body.Bytes())
	})

	server := httptest.NewServer(mux)
	serverURL = server.URL
	t.Cleanup(server.Close)
	return server
}

// GenerationServer is a fake chat completions service answering with canned replies.
type GenerationServer struct {
	*httptest.Server

	mu       sync.Mutex
	replies  []string
	requests []map[string]any
}

// NewGenerationServer answers each POST /chat/completions with the next reply; the last reply repeats.
func NewGenerationServer(t *testing.T, replies ...string) *GenerationServer {
	t.Helper()
	require.NotEmpty(t, replies)

	gs := &GenerationServer{replies: replies}
	gs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.Equal(t, "/chat/completions", r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		var request map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		gs.mu.Lock()
		gs.requests = append(gs.requests, request)
		reply := gs.replies[0]
		if len(gs.replies) > 1 {
			gs.replies = gs.replies[1:]
		}
		gs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "test",
			"object": "chat.completion",
			"model":  request["model"],
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(gs.Close)
	return gs
}

// Requests returns the decoded request bodies received so far.
func (gs *GenerationServer) Requests() []map[string]any {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return append([]map[string]any(nil), gs.requests...)
}
