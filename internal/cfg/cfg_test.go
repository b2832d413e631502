package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "MODEL_PATH", "PORT", "DATA_PATH", "LOG_LEVEL",
		"READ_TIMEOUT", "WRITE_TIMEOUT", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.ModelPath != "model_parameters.json" {
					t.Errorf("expected default model path, got %s", settings.ModelPath)
				}
				if settings.Port != 8080 {
					t.Errorf("expected default port 8080, got %d", settings.Port)
				}
				if settings.LogLevel != "info" {
					t.Errorf("expected default log level info, got %s", settings.LogLevel)
				}
				if settings.ReadTimeout != 10*time.Second {
					t.Errorf("expected default read timeout 10s, got %v", settings.ReadTimeout)
				}
				if settings.DataPath != "" {
					t.Errorf("expected empty data path, got %s", settings.DataPath)
				}
			},
		},
		{
			name: "custom values",
			envVars: map[string]string{
				"MODEL_PATH":       "/models/params.json",
				"PORT":             "9000",
				"DATA_PATH":        "/var/lib/riskserve",
				"LOG_LEVEL":        "debug",
				"READ_TIMEOUT":     "5s",
				"SHUTDOWN_TIMEOUT": "30s",
			},
			wantErr: false,
			validate: func(t *testing.T, settings Settings) {
				if settings.ModelPath != "/models/params.json" {
					t.Errorf("unexpected model path %s", settings.ModelPath)
				}
				if settings.Port != 9000 {
					t.Errorf("unexpected port %d", settings.Port)
				}
				if settings.DataPath != "/var/lib/riskserve" {
					t.Errorf("unexpected data path %s", settings.DataPath)
				}
				if settings.LogLevel != "debug" {
					t.Errorf("unexpected log level %s", settings.LogLevel)
				}
				if settings.ReadTimeout != 5*time.Second {
					t.Errorf("unexpected read timeout %v", settings.ReadTimeout)
				}
				if settings.ShutdownTimeout != 30*time.Second {
					t.Errorf("unexpected shutdown timeout %v", settings.ShutdownTimeout)
				}
			},
		},
		{
			name: "invalid port",
			envVars: map[string]string{
				"PORT": "70000",
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			envVars: map[string]string{
				"LOG_LEVEL": "verbose",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			settings, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearConfigEnv(t)

	configYAML := `
server:
  port: 9090
  readTimeout: 15s
  writeTimeout: 20s
model:
  path: /models/params.json
system:
  dataPath: /var/lib/riskserve
  logLevel: warn
  shutdownTimeout: 25s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if settings.Port != 9090 {
		t.Errorf("unexpected port %d", settings.Port)
	}
	if settings.ModelPath != "/models/params.json" {
		t.Errorf("unexpected model path %s", settings.ModelPath)
	}
	if settings.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout %v", settings.ReadTimeout)
	}
	if settings.WriteTimeout != 20*time.Second {
		t.Errorf("unexpected write timeout %v", settings.WriteTimeout)
	}
	if settings.LogLevel != "warn" {
		t.Errorf("unexpected log level %s", settings.LogLevel)
	}
	if settings.ShutdownTimeout != 25*time.Second {
		t.Errorf("unexpected shutdown timeout %v", settings.ShutdownTimeout)
	}
}

func TestLoadFromYAML_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)

	configYAML := `
server:
  port: 9090
model:
  path: /models/from-file.json
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MODEL_PATH", "/models/from-env.json")
	t.Setenv("PORT", "9100")

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.ModelPath != "/models/from-env.json" {
		t.Errorf("expected env override for model path, got %s", settings.ModelPath)
	}
	if settings.Port != 9100 {
		t.Errorf("expected env override for port, got %d", settings.Port)
	}
}

func TestLoadFromYAML_MissingFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadFromYAML_Malformed(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
