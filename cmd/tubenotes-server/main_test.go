package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/tubenotes/internal/bootstrap"
	"github.com/at-ishikawa/tubenotes/internal/testutil"
)

func setConfigFile(t *testing.T, cfgPath string) {
	t.Helper()
	oldConfigFile := configFile
	configFile = cfgPath
	t.Cleanup(func() { configFile = oldConfigFile })
}

func TestNewServer(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	youtube := testutil.NewYouTubeServer(t, "hello", "world")
	generation := testutil.NewGenerationServer(t, "# Notes\nBody")
	setConfigFile(t, testutil.SetupTestConfigWithAPIKey(t, t.TempDir(),
		testutil.WithCaptionsServer(youtube.URL),
		testutil.WithGenerationServer(generation.URL),
	))

	cfg, err := loadConfig()
	require.NoError(t, err)
	app := bootstrap.New()
	t.Cleanup(func() {
		_ = app.Run(context.Background(), func(context.Context) error { return nil })
	})

	srv, err := newServer(context.Background(), app, cfg)
	require.NoError(t, err)
	assert.Equal(t, ":8080", srv.Addr)

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	t.Run("extract captions", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/extract-captions", strings.NewReader(`{"videoUrl":"https://youtu.be/`+testutil.TestVideoID+`"}`))
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:5173")
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer res.Body.Close()

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "http://localhost:5173", res.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("notes", func(t *testing.T) {
		res, err := http.Post(ts.URL+"/api/notes", "application/json", strings.NewReader(`{"videoUrl":"https://youtu.be/`+testutil.TestVideoID+`"}`))
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Len(t, generation.Requests(), 1)
	})

	t.Run("preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/notes", nil)
		require.NoError(t, err)
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusNoContent, res.StatusCode)
	})
}

func TestNewServer_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	setConfigFile(t, testutil.SetupTestConfig(t, t.TempDir()))

	cfg, err := loadConfig()
	require.NoError(t, err)
	_, err = newServer(context.Background(), bootstrap.New(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENROUTER_API_KEY")
}
