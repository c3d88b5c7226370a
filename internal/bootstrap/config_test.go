package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetForTest clears key for the duration of the test and restores it afterwards.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadConfig_ReadsDotenvFile(t *testing.T) {
	unsetForTest(t, "PROVIDER_API_KEY")
	unsetForTest(t, "SERVICES")

	path := filepath.Join(t.TempDir(), "poller.env")
	require.NoError(t, os.WriteFile(path, []byte("PROVIDER_API_KEY=from-file\nSERVICES=scheduler\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Provider.APIKey)
	assert.Equal(t, []string{"scheduler"}, GetEnabledServices(&cfg))
}

func TestLoadConfig_EnvironmentWinsOverFile(t *testing.T) {
	t.Setenv("PROVIDER_API_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "poller.env")
	require.NoError(t, os.WriteFile(path, []byte("PROVIDER_API_KEY=from-file\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Provider.APIKey)
}

func TestLoadConfig_MissingFileIsSkipped(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.env")
	require.NoError(t, os.WriteFile(path, []byte("BAD-KEY=1\n"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.env")
}

func TestNewLogHandler_Levels(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	assert.False(t, newLogHandler(&buf, false).Enabled(ctx, slog.LevelDebug))
	assert.True(t, newLogHandler(&buf, true).Enabled(ctx, slog.LevelDebug))

	slog.New(newLogHandler(&buf, true)).Debug("hello")
	assert.Contains(t, buf.String(), `"source"`)
}
