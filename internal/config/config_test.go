package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urbanflow/client/internal/storage"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultBaseURL, cfg.GetBaseURL())
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, DefaultStoragePath, cfg.Storage.Path)
	assert.Empty(t, cfg.Storage.Secret)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, OutputFormatJSON, cfg.GetOutputFormat())

	timeout, err := cfg.GetTimeout()
	require.NoError(t, err)
	assert.Zero(t, timeout)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://api.urbanflow.example/api/
  timeout: PT30S
storage:
  driver: sqlite
  path: /var/lib/urbanflow
logging:
  level: debug
  format: json
output:
  format: yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	t.Cleanup(func() { logrus.SetLevel(logrus.InfoLevel) })

	assert.Equal(t, "https://api.urbanflow.example/api", cfg.GetBaseURL())
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/urbanflow", cfg.GetStoragePath())
	assert.Equal(t, OutputFormatYAML, cfg.GetOutputFormat())
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	timeout, err := cfg.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://from-file.example/api
`)

	t.Setenv("URBANFLOW_API_BASE_URL", "https://from-env.example/api")
	t.Setenv("URBANFLOW_API_TIMEOUT", "5s")
	t.Setenv("URBANFLOW_STORAGE_DRIVER", "redis")
	t.Setenv("URBANFLOW_STORAGE_REDIS_DB", "3")
	t.Setenv("URBANFLOW_STORAGE_SECRET", "hunter2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://from-env.example/api", cfg.GetBaseURL())
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Storage.Redis.DB)
	assert.Equal(t, "hunter2", cfg.Storage.Secret)

	timeout, err := cfg.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: chatty
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "log level")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadLogOutputFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "urbanflow.log")
	path := writeConfig(t, "logging:\n  output: "+logFile+"\n")

	_, err := Load(path)
	require.NoError(t, err)
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	logrus.Warnln("written to file")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestInvalidTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.Timeout = "soon"

	_, err := cfg.GetTimeout()
	assert.Error(t, err)
}

func TestStorageOptions(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.SetBaseURL("http://LOCALHOST:8000/api")
	cfg.Storage.Driver = "Redis"
	cfg.Storage.Secret = "s3cret"

	opts := cfg.StorageOptions()

	assert.Equal(t, storage.DriverRedis, opts.Driver)
	assert.Equal(t, "localhost_8000", opts.Namespace)
	assert.Equal(t, filepath.Join(home, ".config", "urbanflow", "sessions"), opts.Path)
	assert.Equal(t, "s3cret", opts.Secret)
	assert.Equal(t, DefaultSalt, opts.Salt)
	assert.Equal(t, "urbanflow:localhost_8000:", opts.Redis.Prefix)
	assert.Equal(t, "localhost:6379", opts.Redis.Addr)
}

func TestGetBaseURLEmpty(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultBaseURL, cfg.GetBaseURL())
}
