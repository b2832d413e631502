// Package cfg loads service configuration from a YAML file and the
// environment. A CONFIG_FILE path selects the YAML form; otherwise
// everything comes from environment variables with sensible defaults.
// Environment variables always win over file values.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	ModelPath       string
	Port            int
	DataPath        string
	LogLevel        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type ConfigFile struct {
	Server struct {
		Port         int    `yaml:"port"`
		ReadTimeout  string `yaml:"readTimeout"`
		WriteTimeout string `yaml:"writeTimeout"`
	} `yaml:"server"`

	Model struct {
		Path string `yaml:"path"`
	} `yaml:"model"`

	System struct {
		DataPath        string `yaml:"dataPath"`
		LogLevel        string `yaml:"logLevel"`
		ShutdownTimeout string `yaml:"shutdownTimeout"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	settings := Settings{
		ModelPath:       getEnvOrDefault("MODEL_PATH", config.Model.Path),
		Port:            getIntFromEnvOrConfig("PORT", config.Server.Port, 8080),
		DataPath:        getEnvOrDefault("DATA_PATH", config.System.DataPath),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", defaultString(config.System.LogLevel, "info")),
		ReadTimeout:     parseDurationOr(config.Server.ReadTimeout, 10*time.Second),
		WriteTimeout:    parseDurationOr(config.Server.WriteTimeout, 10*time.Second),
		ShutdownTimeout: parseDurationOr(config.System.ShutdownTimeout, 10*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ModelPath:       getEnvOrDefault("MODEL_PATH", "model_parameters.json"),
		Port:            getIntOrDefault("PORT", 8080),
		DataPath:        os.Getenv("DATA_PATH"), // optional
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		ReadTimeout:     getDurationOrDefault("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationOrDefault("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func parseDurationOr(v string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultValue
}

func defaultString(v, defaultValue string) string {
	if v != "" {
		return v
	}
	return defaultValue
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

func validateSettings(settings *Settings) error {
	if settings.ModelPath == "" {
		return fmt.Errorf("model path cannot be empty")
	}
	if settings.Port < 1 || settings.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", settings.Port)
	}
	if !validLogLevels[settings.LogLevel] {
		return fmt.Errorf("unknown log level %q", settings.LogLevel)
	}
	if settings.ReadTimeout < time.Second || settings.ReadTimeout > time.Minute {
		return fmt.Errorf("read timeout must be between 1s and 1m, got %v", settings.ReadTimeout)
	}
	if settings.WriteTimeout < time.Second || settings.WriteTimeout > time.Minute {
		return fmt.Errorf("write timeout must be between 1s and 1m, got %v", settings.WriteTimeout)
	}
	if settings.ShutdownTimeout < time.Second || settings.ShutdownTimeout > 5*time.Minute {
		return fmt.Errorf("shutdown timeout must be between 1s and 5m, got %v", settings.ShutdownTimeout)
	}
	return nil
}
