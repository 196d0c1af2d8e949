// Package config provides configuration for askbot.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the askbot configuration.
type Config struct {
	// Server settings
	HTTPPort     int
	InternalPort int

	// Audit log
	DatabaseURL string

	// Messaging platform
	PlatformAPIURL   string
	PlatformBotToken string
	PlatformAppToken string

	// Completion API
	OpenAIAPIKey  string
	OpenAIAPIURL  string
	OpenAIModel   string
	OpenAITimeout time.Duration

	// Policy
	PolicyFile      string
	BlockedChannels []string

	// Logging
	DebugMode bool
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:         getEnvInt("HTTP_PORT", 8080),
		InternalPort:     getEnvInt("INTERNAL_PORT", 8081),
		DatabaseURL:      getEnv("DATABASE_URL", "file:askbot.db?cache=shared&mode=rwc&_foreign_keys=on"),
		PlatformAPIURL:   getEnv("PLATFORM_API_URL", "https://slack.com/api"),
		PlatformBotToken: getEnv("PLATFORM_BOT_TOKEN", ""),
		PlatformAppToken: getEnv("PLATFORM_APP_TOKEN", ""),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIAPIURL:     getEnv("OPENAI_API_URL", "https://api.openai.com"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAITimeout:    time.Duration(getEnvPositiveInt("OPENAI_TIMEOUT_SECONDS", 30)) * time.Second,
		PolicyFile:       getEnv("POLICY_FILE", ""),
		BlockedChannels:  getEnvList("BLOCKED_CHANNELS"),
		DebugMode:        IsDebugMode(os.Getenv("DEBUG_MODE")),
	}
	return cfg
}

// IsDebugMode interprets DEBUG_MODE: debug logging stays on unless the
// variable is set to something other than "true".
func IsDebugMode(value string) bool {
	if value == "" {
		return true
	}
	return value == "true"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// getEnvPositiveInt is getEnvInt for values that must be greater than zero.
func getEnvPositiveInt(key string, defaultVal int) int {
	if val := getEnvInt(key, defaultVal); val > 0 {
		return val
	}
	return defaultVal
}

func getEnvList(key string) []string {
	items := []string{}
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
