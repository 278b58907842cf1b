package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names read by FromEnv.
const (
	EnvAPIKey         = "AZURE_OPENAI_API_KEY"
	EnvEndpoint       = "AZURE_OPENAI_ENDPOINT"
	EnvDeployment     = "AZURE_OPENAI_DEPLOYMENT"
	EnvAPIVersion     = "AZURE_OPENAI_API_VERSION"
	EnvProvider       = "LLM_PROVIDER"
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvGeminiModel    = "GEMINI_MODEL"
	EnvPort           = "PORT"
	EnvLogLevel       = "LOG_LEVEL"
	EnvRequestTimeout = "REQUEST_TIMEOUT_SECONDS"
	EnvMaxUpload      = "MAX_UPLOAD_BYTES"
	EnvTempDir        = "UPLOAD_TEMP_DIR"
)

// FromEnv reads configuration from environment variables.
// Unset or unparsable values are left at their zero value.
func FromEnv() Config {
	cfg := Config{
		APIKey:                getEnvString(EnvAPIKey, ""),
		Endpoint:              getEnvString(EnvEndpoint, ""),
		DeploymentName:        getEnvString(EnvDeployment, ""),
		APIVersion:            getEnvString(EnvAPIVersion, ""),
		Provider:              strings.ToLower(getEnvString(EnvProvider, "")),
		Model:                 getEnvString(EnvGeminiModel, ""),
		Port:                  getEnvInt(EnvPort, 0),
		LogLevel:              strings.ToLower(getEnvString(EnvLogLevel, "")),
		RequestTimeoutSeconds: getEnvInt(EnvRequestTimeout, 0),
		MaxUploadBytes:        getEnvInt64(EnvMaxUpload, 0),
		TempDir:               getEnvString(EnvTempDir, ""),
	}

	if cfg.Provider == ProviderGemini {
		if key := getEnvString(EnvGeminiAPIKey, ""); key != "" {
			cfg.APIKey = key
		}
	}

	return cfg
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
