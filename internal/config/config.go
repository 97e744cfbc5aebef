package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

func DefaultConfig() *Config {

	v := viper.New()

	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("error unmarshaling default config: %v", err)
	}

	return &config
}

// Load reads configuration from the config file, the environment and a
// local .env file, then applies the logging settings.
func Load(configFile string) (*Config, error) {

	loadEnvFile()

	v := viper.New()

	setupViperConfig(v, configFile)
	bindEnvironmentVariables(v)

	config, err := readAndUnmarshalConfig(v)
	if err != nil {
		return nil, err
	}

	if err := setupLogging(config, v); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := gotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}
}

func setupViperConfig(v *viper.Viper, configFile string) {

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "urbanflow"))
	}

	if len(configFile) > 0 {
		v.SetConfigFile(configFile)
	}

	setDefaults(v)

	v.SetEnvPrefix("URBANFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
}

func bindEnvironmentVariables(v *viper.Viper) {

	v.BindEnv("api.base_url", "URBANFLOW_API_BASE_URL", "URBANFLOW_BASE_URL")
	v.BindEnv("api.timeout", "URBANFLOW_API_TIMEOUT")

	bindStorageEnvVars(v)
	bindLoggingEnvVars(v)

	v.BindEnv("output.format", "URBANFLOW_OUTPUT_FORMAT")
}

func bindStorageEnvVars(v *viper.Viper) {
	v.BindEnv("storage.driver", "URBANFLOW_STORAGE_DRIVER")
	v.BindEnv("storage.path", "URBANFLOW_STORAGE_PATH")
	v.BindEnv("storage.secret", "URBANFLOW_STORAGE_SECRET")
	v.BindEnv("storage.salt", "URBANFLOW_STORAGE_SALT")

	v.BindEnv("storage.redis.addr", "URBANFLOW_STORAGE_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("storage.redis.password", "URBANFLOW_STORAGE_REDIS_PASSWORD", "REDIS_PASSWORD")
	v.BindEnv("storage.redis.db", "URBANFLOW_STORAGE_REDIS_DB")
	v.BindEnv("storage.redis.prefix", "URBANFLOW_STORAGE_REDIS_PREFIX")
}

func bindLoggingEnvVars(v *viper.Viper) {
	v.BindEnv("logging.level", "URBANFLOW_LOGGING_LEVEL")
	v.BindEnv("logging.format", "URBANFLOW_LOGGING_FORMAT")
	v.BindEnv("logging.output", "URBANFLOW_LOGGING_OUTPUT")
}

func readAndUnmarshalConfig(v *viper.Viper) (*Config, error) {

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and environment only.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setupLogging(config *Config, v *viper.Viper) error {

	logrusLevel, err := logrus.ParseLevel(config.Logging.Level)
	if err != nil {
		return fmt.Errorf("error parsing log level: %w", err)
	}

	logrus.SetLevel(logrusLevel)

	switch strings.ToLower(config.Logging.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	default:
		logrus.WithFields(logrus.Fields{
			"format": config.Logging.Format,
		}).Warn("Unknown log format")
	}

	output, err := openLogOutput(config.Logging.Output)
	if err != nil {
		return err
	}
	logrus.SetOutput(output)

	if logrusLevel >= logrus.DebugLevel {
		for key, value := range v.AllSettings() {
			if key == "storage" {
				continue
			}
			logrus.Debugf("Config '%s': %v", key, value)
		}
	}

	return nil
}

func openLogOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}

	file, err := os.OpenFile(expandHome(output), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output %s: %w", output, err)
	}

	return file, nil
}

func setDefaults(v *viper.Viper) {

	// API defaults
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", "0")

	// Storage defaults
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", DefaultStoragePath)
	v.SetDefault("storage.secret", "")
	v.SetDefault("storage.salt", DefaultSalt)
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", DefaultRedisPrefix)

	// Logging defaults
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("output.format", OutputFormatJSON)
}
