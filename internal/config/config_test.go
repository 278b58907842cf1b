package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable FromEnv reads so host settings do not leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvAPIKey, EnvEndpoint, EnvDeployment, EnvAPIVersion, EnvProvider,
		EnvGeminiAPIKey, EnvGeminiModel, EnvPort, EnvLogLevel,
		EnvRequestTimeout, EnvMaxUpload, EnvTempDir,
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secrets.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"api_key": "secret",
		"endpoint": "https://example.openai.azure.com",
		"deployment_name": "gpt-4o",
		"port": 9090
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "https://example.openai.azure.com", cfg.Endpoint)
	assert.Equal(t, "gpt-4o", cfg.DeploymentName)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{ invalid json }`)

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/secrets.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		"api_key": "from-file",
		"endpoint": "https://file.openai.azure.com",
		"deployment_name": "file-deployment"
	}`)
	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvPort, "7000")

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "https://file.openai.azure.com", cfg.Endpoint)
	assert.Equal(t, "file-deployment", cfg.DeploymentName)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, DefaultAPIVersion, cfg.APIVersion)
	assert.Equal(t, ProviderAzure, cfg.Provider)
}

func TestLoad_OptionalFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "k")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"), false)
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestLoad_RequiredFileMissing(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), true)
	assert.Error(t, err)
}

func TestFromEnv_GeminiKey(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvProvider, "GEMINI")
	t.Setenv(EnvGeminiAPIKey, "gemini-key")
	t.Setenv(EnvGeminiModel, "gemini-2.5-pro")

	cfg := FromEnv()
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-key", cfg.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
}

func TestFromEnv_IgnoresUnparsableNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPort, "not-a-port")

	cfg := FromEnv()
	assert.Equal(t, 0, cfg.Port)
}

func TestValidate(t *testing.T) {
	valid := Config{
		APIKey:         "k",
		Endpoint:       "https://example.openai.azure.com",
		DeploymentName: "d",
		Provider:       ProviderAzure,
		Port:           8080,
		LogLevel:       "info",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid azure config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.APIKey = "" },
			wantErr: "api_key",
		},
		{
			name:    "endpoint not a url",
			mutate:  func(c *Config) { c.Endpoint = "not a url" },
			wantErr: "endpoint",
		},
		{
			name:    "azure without endpoint",
			mutate:  func(c *Config) { c.Endpoint = "" },
			wantErr: "'endpoint' is required",
		},
		{
			name:    "azure without deployment",
			mutate:  func(c *Config) { c.DeploymentName = "" },
			wantErr: "deployment_name",
		},
		{
			name: "gemini without endpoint",
			mutate: func(c *Config) {
				c.Provider = ProviderGemini
				c.Endpoint = ""
				c.DeploymentName = ""
			},
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "other" },
			wantErr: "provider",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: "port",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "log_level",
		},
		{
			name:    "temp dir missing",
			mutate:  func(c *Config) { c.TempDir = "/nonexistent/dir" },
			wantErr: "temp_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		APIKey: "custom",
		Port:   9000,
	}

	merged := partial.MergeWithDefaults(Defaults())

	assert.Equal(t, "custom", merged.APIKey)
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, DefaultAPIVersion, merged.APIVersion)
	assert.Equal(t, DefaultLogLevel, merged.LogLevel)
	assert.Equal(t, int64(DefaultMaxUploadBytes), merged.MaxUploadBytes)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{APIKey: "k"}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "k", merged.APIKey)
	assert.Equal(t, 0, merged.Port)
}

func TestRequestTimeout(t *testing.T) {
	assert.Equal(t, 120*time.Second, (&Config{}).RequestTimeout())
	assert.Equal(t, 5*time.Second, (&Config{RequestTimeoutSeconds: 5}).RequestTimeout())
	assert.Equal(t, ":8080", (&Config{Port: 8080}).Addr())
}
