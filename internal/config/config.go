package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the enroll service.
type Config struct {
	Environment       string
	HTTPPort          int
	DatabaseURL       string
	DataStore         string
	LogLevel          string
	AllowedOrigins    []string
	KakaoAPIURL       string
	KakaoClientID     string
	KakaoClientSecret string
	KakaoRedirectURL  string
	ProviderTimeout   time.Duration
}

// Load reads configuration from environment variables with sensible defaults
// for local development.
func Load() (Config, error) {
	databaseURL, err := getEnvOrFile("DATABASE_URL", "/run/secrets/enroll_database_url")
	if err != nil {
		return Config{}, err
	}

	kakaoSecret, err := getEnvOrFile("KAKAO_CLIENT_SECRET", "/run/secrets/enroll_kakao_client_secret")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:       getEnv("APP_ENV", "development"),
		DatabaseURL:       databaseURL,
		DataStore:         strings.ToLower(getEnv("DATA_STORE", "memory")),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins:    parseCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:4200,http://localhost:8080")),
		KakaoAPIURL:       getEnv("KAKAO_API_URL", "https://kapi.kakao.com"),
		KakaoClientID:     strings.TrimSpace(os.Getenv("KAKAO_CLIENT_ID")),
		KakaoClientSecret: strings.TrimSpace(kakaoSecret),
		KakaoRedirectURL:  strings.TrimSpace(os.Getenv("KAKAO_REDIRECT_URL")),
	}

	portValue := getEnv("PORT", getEnv("HTTP_PORT", "8080"))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	timeoutValue := getEnv("PROVIDER_TIMEOUT_SECONDS", "10")
	timeoutSeconds, err := strconv.Atoi(timeoutValue)
	if err != nil || timeoutSeconds <= 0 {
		return Config{}, fmt.Errorf("invalid provider timeout %q", timeoutValue)
	}
	cfg.ProviderTimeout = time.Duration(timeoutSeconds) * time.Second

	if cfg.DataStore == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATA_STORE is postgres but DATABASE_URL is not set")
	}

	if cfg.KakaoClientID != "" {
		if cfg.KakaoClientSecret == "" {
			return Config{}, fmt.Errorf("KAKAO_CLIENT_ID is set but KAKAO_CLIENT_SECRET is not")
		}
		if cfg.KakaoRedirectURL == "" {
			return Config{}, fmt.Errorf("KAKAO_CLIENT_ID is set but KAKAO_REDIRECT_URL is not")
		}
	}

	return cfg, nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// UseInMemoryStore returns true if the in-memory repository should be used.
func (c Config) UseInMemoryStore() bool {
	return c.DataStore == "memory"
}

// CodeFlowEnabled reports whether the authorization-code flow endpoints
// should be mounted. Token-based signup works without them.
func (c Config) CodeFlowEnabled() bool {
	return c.KakaoClientID != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
