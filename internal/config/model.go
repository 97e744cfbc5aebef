package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urbanflow/client/internal/common"
	"github.com/urbanflow/client/internal/storage"
)

const (
	DefaultBaseURL     = "http://localhost:8000/api"
	DefaultStoragePath = "~/.config/urbanflow/sessions"
	DefaultSalt        = "urbanflow"
	DefaultRedisPrefix = "urbanflow:"

	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// Timeout accepts Go durations ("30s") or ISO 8601 ("PT30S"). Zero
	// leaves the transport default.
	Timeout string `mapstructure:"timeout"`
}

type StorageConfig struct {
	Driver string      `mapstructure:"driver"`
	Path   string      `mapstructure:"path"`
	Secret string      `mapstructure:"secret"`
	Salt   string      `mapstructure:"salt"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

func (c *Config) GetBaseURL() string {
	if len(c.API.BaseURL) == 0 {
		return DefaultBaseURL
	}
	return strings.TrimSuffix(c.API.BaseURL, "/")
}

// SetBaseURL overrides the configured base URL, typically from a flag.
func (c *Config) SetBaseURL(baseURL string) {
	c.API.BaseURL = baseURL
}

func (c *Config) GetTimeout() (time.Duration, error) {
	return common.ParseDuration(c.API.Timeout)
}

func (c *Config) GetOutputFormat() string {
	format := strings.ToLower(c.Output.Format)
	if format == OutputFormatYAML {
		return OutputFormatYAML
	}
	return OutputFormatJSON
}

// GetStoragePath returns the storage directory with a leading "~"
// expanded to the user's home directory.
func (c *Config) GetStoragePath() string {
	return expandHome(c.Storage.Path)
}

// StorageOptions builds the options for opening the token store. The
// namespace is derived from the base URL so that tokens for different
// backends never collide.
func (c *Config) StorageOptions() storage.Options {

	namespace := storage.Namespace(c.GetBaseURL())

	return storage.Options{
		Driver:    storage.Driver(strings.ToLower(c.Storage.Driver)),
		Path:      c.GetStoragePath(),
		Namespace: namespace,
		Secret:    c.Storage.Secret,
		Salt:      c.Storage.Salt,
		Redis: storage.RedisOptions{
			Addr:     c.Storage.Redis.Addr,
			Password: c.Storage.Redis.Password,
			DB:       c.Storage.Redis.DB,
			Prefix:   c.Storage.Redis.Prefix + namespace + ":",
		},
	}
}

func expandHome(path string) string {

	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		logrus.WithError(err).Warnln("Failed to resolve home directory")
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
