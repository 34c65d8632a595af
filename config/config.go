package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Publish strategies. "repo" creates one repository per project; "subdir"
// keeps every project as a subdirectory of one fixed repository.
const (
	StrategyRepo   = "repo"
	StrategySubdir = "subdir"
)

// Config holds all configuration for the application.
// Mapstructure tags map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress string `mapstructure:"SERVER_ADDRESS"` // e.g., ":8080"

	// Logging
	LogLevel  string `mapstructure:"LOG_LEVEL"`  // debug, info, warn, error
	LogFormat string `mapstructure:"LOG_FORMAT"` // json or console

	// Generation service (OpenAI-compatible proxy)
	AIPipeToken string `mapstructure:"AI_PIPE_TOKEN"` // API key for the generation service
	AIPipeURL   string `mapstructure:"AI_PIPE_URL"`   // Base URL, e.g. "https://aipipe.org/openrouter/v1"
	AIModel     string `mapstructure:"AI_MODEL"`      // Chat model identifier

	// Remote host (GitHub)
	GitHubToken string `mapstructure:"GITHUB_TOKEN"` // Access token with repo scope
	GitHubOwner string `mapstructure:"GITHUB_OWNER"` // Account that owns generated repositories
	PagesDomain string `mapstructure:"PAGES_DOMAIN"` // e.g., "github.io"

	// Publish strategy
	PublishStrategy string `mapstructure:"PUBLISH_STRATEGY"` // "repo" or "subdir"
	BaseRepo        string `mapstructure:"BASE_REPO"`        // Fixed repository for the subdir strategy

	// Request authentication allow-list (single identity/secret pair)
	AllowedEmail  string `mapstructure:"ALLOWED_EMAIL"`
	AllowedSecret string `mapstructure:"ALLOWED_SECRET"`

	// Publication verification (best effort)
	VerifyMaxAttempts  int           `mapstructure:"VERIFY_MAX_ATTEMPTS"`
	VerifyPollInterval time.Duration `mapstructure:"VERIFY_POLL_INTERVAL"`

	// Evaluation callback delivery
	NotifyMaxAttempts  int           `mapstructure:"NOTIFY_MAX_ATTEMPTS"`
	NotifyInitialDelay time.Duration `mapstructure:"NOTIFY_INITIAL_DELAY"`
	NotifyTimeout      time.Duration `mapstructure:"NOTIFY_TIMEOUT"`

	// Overall wall-clock budget per request; verification is skipped when the
	// remaining budget would not cover a worst-case notification.
	RequestBudget time.Duration `mapstructure:"REQUEST_BUDGET"`
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("SERVER_ADDRESS", ":8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("AI_MODEL", "google/gemini-2.0-flash-lite-001")
	viper.SetDefault("PAGES_DOMAIN", "github.io")
	viper.SetDefault("PUBLISH_STRATEGY", StrategyRepo)
	viper.SetDefault("VERIFY_MAX_ATTEMPTS", 12)
	viper.SetDefault("VERIFY_POLL_INTERVAL", "5s")
	viper.SetDefault("NOTIFY_MAX_ATTEMPTS", 5)
	viper.SetDefault("NOTIFY_INITIAL_DELAY", "1s")
	viper.SetDefault("NOTIFY_TIMEOUT", "10s")
	viper.SetDefault("REQUEST_BUDGET", "5m")

	viper.AutomaticEnv() // Read environment variables that match keys

	err = viper.ReadInConfig()
	if err != nil {
		// A missing config file is fine as long as the environment is set.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file ('config.yaml') not found, relying solely on environment variables.")
		} else {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Printf("Using configuration file: %s", viper.ConfigFileUsed())
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}

	return
}

func (c Config) validate() error {
	required := map[string]string{
		"AI_PIPE_TOKEN":  c.AIPipeToken,
		"GITHUB_TOKEN":   c.GitHubToken,
		"GITHUB_OWNER":   c.GitHubOwner,
		"ALLOWED_EMAIL":  c.AllowedEmail,
		"ALLOWED_SECRET": c.AllowedSecret,
	}
	for key, val := range required {
		if val == "" {
			return fmt.Errorf("%s is required", key)
		}
	}

	switch c.PublishStrategy {
	case StrategyRepo:
	case StrategySubdir:
		if c.BaseRepo == "" {
			return fmt.Errorf("BASE_REPO is required when PUBLISH_STRATEGY is %q", StrategySubdir)
		}
	default:
		return fmt.Errorf("unknown PUBLISH_STRATEGY %q", c.PublishStrategy)
	}

	return nil
}

// Allowed returns the identity→secret allow-list, read-only after startup.
func (c Config) Allowed() map[string]string {
	return map[string]string{c.AllowedEmail: c.AllowedSecret}
}
