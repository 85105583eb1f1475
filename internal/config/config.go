package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// TokenEnvVar names the environment variable holding the bearer token.
	TokenEnvVar = "MESHCAPADE_API_TOKEN"

	DefaultAPIBaseURL = "https://api.meshcapade.com/api/v1"
)

// ErrMissingCredential is returned when the API token is not configured.
var ErrMissingCredential = errors.New("missing credential")

// Settings contains configuration for the Meshcapade API client and export polling.
type Settings struct {
	APIToken        string        // Required, Meshcapade API bearer token
	APIBaseURL      string        // API root, defaults to https://api.meshcapade.com/api/v1
	PollInterval    time.Duration // Delay between export status checks, defaults to 5 seconds
	MaxWait         time.Duration // Give up polling after this long, defaults to 600 seconds
	HTTPTimeout     time.Duration // Download request timeout, defaults to 60 seconds
	HTTPMaxBodySize int64         // Maximum export status body size in bytes, defaults to 10MB
}

// LoadSettings loads configuration from environment variables and optional .env file.
// Required environment variables: MESHCAPADE_API_TOKEN.
// Optional variables: MESHCAPADE_API_URL, POLL_INTERVAL, MAX_WAIT, HTTP_TIMEOUT, HTTP_MAX_BODY_SIZE.
func LoadSettings() (*Settings, error) {
	// If .env exists, try to load it
	if _, err := os.Stat(".env"); err == nil {
		err := godotenv.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	token, err := getEnvRequired(TokenEnvVar)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingCredential, err)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(getEnv("MESHCAPADE_API_URL", DefaultAPIBaseURL)), "/")

	return &Settings{
		APIToken:        token,
		APIBaseURL:      baseURL,
		PollInterval:    time.Duration(getEnvPositiveInt("POLL_INTERVAL", 5)) * time.Second,
		MaxWait:         time.Duration(getEnvPositiveInt("MAX_WAIT", 600)) * time.Second,
		HTTPTimeout:     time.Duration(getEnvInt("HTTP_TIMEOUT", 60)) * time.Second,
		HTTPMaxBodySize: int64(getEnvInt("HTTP_MAX_BODY_SIZE", 10*1024*1024)), // 10MB default
	}, nil
}

// get the env variable with a default
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// get the env variable or raise an error
func getEnvRequired(key string) (string, error) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%s environment variable must be set", key)
}

// getEnvInt returns an integer env var, defaulting when unset/empty or invalid.
func getEnvInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return i
	}
	return def
}

// getEnvPositiveInt is getEnvInt that also rejects zero and negative values.
func getEnvPositiveInt(key string, def int) int {
	if i := getEnvInt(key, def); i > 0 {
		return i
	}
	return def
}
