// Package config provides configuration loading and validation for the extractor.
//
// Settings come from three layers, lowest precedence first: a JSON secrets file,
// the process environment (optionally seeded from a .env file), and CLI flags.
// The resulting Config is built once at startup and treated as read-only.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Provider names accepted in the provider field.
const (
	ProviderAzure  = "azure"
	ProviderGemini = "gemini"
)

// Defaults for optional settings.
const (
	DefaultAPIVersion     = "2023-06-01-preview"
	DefaultPort           = 8080
	DefaultLogLevel       = "info"
	DefaultTimeoutSeconds = 120
	DefaultMaxUploadBytes = 20 << 20
	DefaultGeminiModel    = "gemini-2.5-flash"
)

// Config represents the process-wide configuration.
type Config struct {
	// Completion endpoint secrets. Endpoint is the resource base URL,
	// e.g. https://name.openai.azure.com; Model is only read by the gemini provider.
	APIKey         string `json:"api_key,omitempty" validate:"required"`
	Endpoint       string `json:"endpoint,omitempty" validate:"omitempty,url"`
	DeploymentName string `json:"deployment_name,omitempty"`
	APIVersion     string `json:"api_version,omitempty"`
	Provider       string `json:"provider,omitempty" validate:"omitempty,oneof=azure gemini"`
	Model          string `json:"model,omitempty"`

	// Server. TempDir holds scoped upload files; the OS default is used when empty.
	Port                  int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
	LogLevel              string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds,omitempty" validate:"gte=0"`
	MaxUploadBytes        int64  `json:"max_upload_bytes,omitempty" validate:"gte=0"`
	TempDir               string `json:"temp_dir,omitempty"`
}

// Defaults returns the configuration used to fill unset optional fields.
func Defaults() Config {
	return Config{
		APIVersion:            DefaultAPIVersion,
		Provider:              ProviderAzure,
		Model:                 DefaultGeminiModel,
		Port:                  DefaultPort,
		LogLevel:              DefaultLogLevel,
		RequestTimeoutSeconds: DefaultTimeoutSeconds,
		MaxUploadBytes:        DefaultMaxUploadBytes,
	}
}

// LoadConfig loads configuration from a JSON secrets file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load builds the effective configuration from the secrets file at path and the
// environment. A missing file is only an error when required is true.
func Load(path string, required bool) (*Config, error) {
	fileCfg := Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		switch {
		case err == nil:
			fileCfg = *loaded
		case !required && errors.Is(err, os.ErrNotExist):
			// optional secrets file
		default:
			return nil, err
		}
	}

	envCfg := FromEnv()
	merged := envCfg.MergeWithDefaults(fileCfg.MergeWithDefaults(Defaults()))
	return &merged, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' validation", jsonName(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.provider() == ProviderAzure {
		if c.Endpoint == "" {
			return fmt.Errorf("config error: 'endpoint' is required for the azure provider")
		}
		if c.DeploymentName == "" {
			return fmt.Errorf("config error: 'deployment_name' is required for the azure provider")
		}
	}

	if c.TempDir != "" {
		info, err := os.Stat(c.TempDir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("config error: temp_dir is not a directory: %s", c.TempDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Endpoint == "" {
		result.Endpoint = defaults.Endpoint
	}
	if result.DeploymentName == "" {
		result.DeploymentName = defaults.DeploymentName
	}
	if result.APIVersion == "" {
		result.APIVersion = defaults.APIVersion
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.TempDir == "" {
		result.TempDir = defaults.TempDir
	}

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RequestTimeoutSeconds == 0 {
		result.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}

	return result
}

// RequestTimeout returns the outbound HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) provider() string {
	if c.Provider == "" {
		return ProviderAzure
	}
	return strings.ToLower(c.Provider)
}

// jsonName maps struct field names to their JSON keys for error messages.
func jsonName(field string) string {
	switch field {
	case "APIKey":
		return "api_key"
	case "Endpoint":
		return "endpoint"
	case "Provider":
		return "provider"
	case "Port":
		return "port"
	case "LogLevel":
		return "log_level"
	case "RequestTimeoutSeconds":
		return "request_timeout_seconds"
	case "MaxUploadBytes":
		return "max_upload_bytes"
	default:
		return field
	}
}
