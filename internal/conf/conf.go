package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents process configuration loaded from the environment.
// Operator-editable runtime settings live in the database instead.
type Config struct {
	// Telegram configuration
	Telegram TelegramConfig

	// OpenAI configuration
	OpenAI OpenAIConfig

	// Storage configuration
	DBPath string

	// Prompts configuration
	PromptsPath string

	// HTTP API configuration
	APIPort int

	// Log level (debug, info, warn, error)
	LogLevel string
}

// TelegramConfig contains Telegram configuration.
type TelegramConfig struct {
	BotToken string
}

// OpenAIConfig contains OpenAI configuration.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join("data", "replydesk.db")
	}

	promptsPath := os.Getenv("PROMPTS_PATH")
	if promptsPath == "" {
		promptsPath = filepath.Join("configs", "prompts.yaml")
	}

	apiPort := 8080
	if val := os.Getenv("API_PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			apiPort = parsed
		}
	}

	timeoutSeconds := 30
	if val := os.Getenv("OPENAI_TIMEOUT_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			timeoutSeconds = parsed
		}
	}

	maxRetries := 2
	if val := os.Getenv("OPENAI_MAX_RETRIES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			maxRetries = parsed
		}
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		OpenAI: OpenAIConfig{
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			Model:      os.Getenv("OPENAI_MODEL"),
			Timeout:    time.Duration(timeoutSeconds) * time.Second,
			MaxRetries: maxRetries,
		},
		DBPath:      dbPath,
		PromptsPath: promptsPath,
		APIPort:     apiPort,
		LogLevel:    logLevel,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return &ConfigError{Field: "TELEGRAM_BOT_TOKEN", Message: "required"}
	}
	if c.OpenAI.APIKey == "" {
		return &ConfigError{Field: "OPENAI_API_KEY", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
