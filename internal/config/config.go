package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"datamodeler/internal/database"
)

type Config struct {
	HTTPAddr           string
	DefaultConnection  database.DatabaseConfig
	DBSchema           string
	DBTimeout          time.Duration
	AnthropicAPIKey    string
	AnthropicModel     string
	AnthropicMaxTokens int64
	AnthropicBaseURL   string
	LLMTimeout         time.Duration
	PromptTemplate     string
	CORSAllowedOrigins []string
}

// LoadConfig reads configPath (if it exists) into the environment and builds
// the process configuration. The default connection must be complete.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		if err := godotenv.Load(configPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading config file %s: %w", configPath, err)
		}
	}

	port, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	dbTimeout, err := getEnvDuration("DB_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	llmTimeout, err := getEnvDuration("LLM_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, err
	}
	maxTokens, err := getEnvInt("ANTHROPIC_MAX_TOKENS", 4096)
	if err != nil {
		return nil, err
	}

	config := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8000"),
		DefaultConnection: database.DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", ""),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		DBSchema:           getEnv("DB_SCHEMA", "public"),
		DBTimeout:          dbTimeout,
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:     getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
		AnthropicMaxTokens: int64(maxTokens),
		AnthropicBaseURL:   getEnv("ANTHROPIC_BASE_URL", ""),
		LLMTimeout:         llmTimeout,
		PromptTemplate:     getEnv("PROMPT_TEMPLATE", ""),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*"), ","),
	}

	var missing []string
	if config.DefaultConnection.Username == "" {
		missing = append(missing, "DB_USERNAME")
	}
	if config.DefaultConnection.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if config.DefaultConnection.Database == "" {
		missing = append(missing, "DB_NAME")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func splitAndTrim(str, sep string) []string {
	if str == "" {
		return []string{}
	}
	parts := strings.Split(str, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
