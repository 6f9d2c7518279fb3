package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

// setConfigFile sets the global configFile variable and registers a cleanup to restore it.
func setConfigFile(t *testing.T, cfgPath string) {
	t.Helper()
	oldConfigFile := configFile
	configFile = cfgPath
	t.Cleanup(func() { configFile = oldConfigFile })
}

// setupBrokenConfigFile creates a config file with invalid YAML that causes Load() to fail.
func setupBrokenConfigFile(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{invalid yaml content"), 0644))
	return cfgPath
}

// execute runs the root command with args, feeding input to stdin, and returns stdout.
func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	clearGenerationEnv(t)
	color.NoColor = true
	oldConfigFile, oldCacheDriver := configFile, cacheDriver
	t.Cleanup(func() {
		color.NoColor = false
		configFile, cacheDriver = oldConfigFile, oldCacheDriver
	})

	var out bytes.Buffer
	root := newRootCommand()
	root.SetIn(strings.NewReader(input))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func clearGenerationEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"OPENROUTER_API_KEY", "OPENAI_API_KEY", "GENERATION_MODEL", "GENERATION_PROVIDER", "GENERATION_BASE_URL", "TUBENOTES_CACHE_DRIVER"} {
		t.Setenv(env, "")
	}
}
