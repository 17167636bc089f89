// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSystemPrompt is the RA persona sent with every completion.
const DefaultSystemPrompt = `You are Robin AI, the virtual Residential Assistant (RA) for Robinson Dorm at Stanford University.

Your role:
- Provide clear, concise, and kind answers to students' questions
- Be friendly, helpful, and professional like a supportive residential assistant
- Help students navigate dorm life, answer questions about policies, facilities, and campus resources
- Maintain a warm and approachable tone while being informative

Remember to:
- Keep responses concise but complete
- Be empathetic and understanding
- Provide actionable advice when possible
- Maintain professionalism appropriate for a Stanford residential environment`

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	GroupMe  GroupMeConfig  `yaml:"groupme"`
	Bot      BotConfig      `yaml:"bot"`
	Budget   BudgetConfig   `yaml:"budget"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// OpenAIConfig configures the completion API client.
type OpenAIConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// GroupMeConfig configures the messaging platform client.
type GroupMeConfig struct {
	BotID   string        `yaml:"bot_id"`
	BotName string        `yaml:"bot_name"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// BotConfig configures reply behavior.
type BotConfig struct {
	SystemPrompt   string `yaml:"system_prompt"`
	RequireMention *bool  `yaml:"require_mention"` // Pointer so an explicit false survives defaulting
	LimitNotice    string `yaml:"limit_notice"`
	ErrorNotice    string `yaml:"error_notice"`
}

// BudgetConfig configures the daily token cap.
type BudgetConfig struct {
	DailyLimit     int64 `yaml:"daily_limit"`
	EstimateTokens int64 `yaml:"estimate_tokens"`
}

// DatabaseConfig configures the usage log database.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RequireMentionEnabled reports whether mention gating is on (default true).
func (c BotConfig) RequireMentionEnabled() bool {
	if c.RequireMention == nil {
		return true
	}
	return *c.RequireMention
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables referenced as ${VAR}
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// Useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	ROBINAI_OPENAI_API_KEY     - OpenAI API key (required)
//	ROBINAI_GROUPME_BOT_ID     - GroupMe bot ID (required)
//	ROBINAI_GROUPME_BOT_NAME   - Bot name for mention detection
//	ROBINAI_OPENAI_MODEL       - Completion model (default: gpt-4o)
//	ROBINAI_BUDGET_DAILY_LIMIT - Daily token cap (default: 50000)
//	ROBINAI_DATABASE_DSN       - Usage log path (default: robinai.db)
//	ROBINAI_SERVER_HOST        - Server host (default: 0.0.0.0)
//	ROBINAI_SERVER_PORT        - Server port (default: 8080)
//	ROBINAI_LOG_LEVEL          - Log level: debug, info, warn, error
//	ROBINAI_LOG_FORMAT         - Log format: json or console
//	ROBINAI_METRICS_ENABLED    - Enable /metrics endpoint
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables. This is the recommended method for Docker deployments.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	if HasEnvConfig() {
		return LoadFromEnv()
	}

	return nil, fmt.Errorf("no configuration found: provide config file or set ROBINAI_OPENAI_API_KEY and ROBINAI_GROUPME_BOT_ID")
}

// HasEnvConfig returns true if essential environment variables are set.
func HasEnvConfig() bool {
	return os.Getenv("ROBINAI_OPENAI_API_KEY") != "" && os.Getenv("ROBINAI_GROUPME_BOT_ID") != ""
}

// applyEnvOverrides applies ROBINAI_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ROBINAI_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("ROBINAI_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("ROBINAI_OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("ROBINAI_OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("ROBINAI_OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("ROBINAI_OPENAI_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.OpenAI.Timeout = d
		}
	}

	if v := os.Getenv("ROBINAI_GROUPME_BOT_ID"); v != "" {
		cfg.GroupMe.BotID = v
	}
	if v := os.Getenv("ROBINAI_GROUPME_BOT_NAME"); v != "" {
		cfg.GroupMe.BotName = v
	}
	if v := os.Getenv("ROBINAI_GROUPME_BASE_URL"); v != "" {
		cfg.GroupMe.BaseURL = v
	}

	if v := os.Getenv("ROBINAI_BOT_REQUIRE_MENTION"); v != "" {
		b := parseBool(v)
		cfg.Bot.RequireMention = &b
	}

	if v := os.Getenv("ROBINAI_BUDGET_DAILY_LIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Budget.DailyLimit = n
		}
	}
	if v := os.Getenv("ROBINAI_BUDGET_ESTIMATE_TOKENS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Budget.EstimateTokens = n
		}
	}

	if v := os.Getenv("ROBINAI_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if v := os.Getenv("ROBINAI_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ROBINAI_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("ROBINAI_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("ROBINAI_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o"
	}
	if cfg.OpenAI.MaxTokens == 0 {
		cfg.OpenAI.MaxTokens = 500
	}
	if cfg.OpenAI.Temperature == 0 {
		cfg.OpenAI.Temperature = 0.7
	}
	if cfg.OpenAI.Timeout == 0 {
		cfg.OpenAI.Timeout = 30 * time.Second
	}

	if cfg.GroupMe.BotName == "" {
		cfg.GroupMe.BotName = "Robin AI"
	}
	if cfg.GroupMe.Timeout == 0 {
		cfg.GroupMe.Timeout = 10 * time.Second
	}

	if cfg.Bot.SystemPrompt == "" {
		cfg.Bot.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Bot.LimitNotice == "" {
		cfg.Bot.LimitNotice = "I've reached my daily response limit. Please try again tomorrow!"
	}
	if cfg.Bot.ErrorNotice == "" {
		cfg.Bot.ErrorNotice = "I'm having trouble processing your message right now. Please try again in a moment!"
	}

	if cfg.Budget.DailyLimit == 0 {
		cfg.Budget.DailyLimit = 50000
	}
	if cfg.Budget.EstimateTokens == 0 {
		cfg.Budget.EstimateTokens = 600
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "robinai.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if cfg.GroupMe.BotID == "" {
		return fmt.Errorf("groupme.bot_id is required")
	}
	if cfg.Budget.DailyLimit < 0 {
		return fmt.Errorf("budget.daily_limit must be positive, got %d", cfg.Budget.DailyLimit)
	}
	if cfg.Budget.EstimateTokens < 0 {
		return fmt.Errorf("budget.estimate_tokens must be non-negative, got %d", cfg.Budget.EstimateTokens)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	return nil
}
