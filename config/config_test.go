package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robinsondorm/robinai/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "robinai.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
openai:
  api_key: sk-test
groupme:
  bot_id: bot123
`

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.MaxTokens != 500 {
		t.Errorf("MaxTokens = %d, want 500", cfg.OpenAI.MaxTokens)
	}
	if cfg.Budget.DailyLimit != 50000 {
		t.Errorf("DailyLimit = %d, want 50000", cfg.Budget.DailyLimit)
	}
	if cfg.Budget.EstimateTokens != 600 {
		t.Errorf("EstimateTokens = %d, want 600", cfg.Budget.EstimateTokens)
	}
	if !cfg.Bot.RequireMentionEnabled() {
		t.Error("mention gating should default to on")
	}
	if !strings.Contains(cfg.Bot.SystemPrompt, "Robin AI") {
		t.Error("default system prompt should carry the RA persona")
	}
	if cfg.Database.DSN != "robinai.db" {
		t.Errorf("DSN = %q, want robinai.db", cfg.Database.DSN)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %q/%q", cfg.Logging.Level, cfg.Logging.Format)
	}
}

func TestLoad_ExplicitValues(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `
server:
  port: 9090
openai:
  api_key: sk-test
  model: gpt-4-turbo
  timeout: 45s
groupme:
  bot_id: bot123
  bot_name: Dorm Bot
bot:
  require_mention: false
budget:
  daily_limit: 10000
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-4-turbo" {
		t.Errorf("Model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.OpenAI.Timeout)
	}
	if cfg.GroupMe.BotName != "Dorm Bot" {
		t.Errorf("BotName = %q", cfg.GroupMe.BotName)
	}
	if cfg.Bot.RequireMentionEnabled() {
		t.Error("explicit require_mention: false should stick")
	}
	if cfg.Budget.DailyLimit != 10000 {
		t.Errorf("DailyLimit = %d, want 10000", cfg.Budget.DailyLimit)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ROBINAI_BUDGET_DAILY_LIMIT", "25000")
	t.Setenv("ROBINAI_OPENAI_MODEL", "gpt-4o-mini")

	cfg, err := config.Load(writeConfig(t, minimalConfig+`
budget:
  daily_limit: 10000
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Budget.DailyLimit != 25000 {
		t.Errorf("DailyLimit = %d, env should override file", cfg.Budget.DailyLimit)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, env should override default", cfg.OpenAI.Model)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no api key", "groupme:\n  bot_id: bot123\n"},
		{"no bot id", "openai:\n  api_key: sk-test\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := config.Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load should fail for missing required field")
			}
		})
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	_, err := config.Load(writeConfig(t, minimalConfig+`
logging:
  level: verbose
`))
	if err == nil {
		t.Error("Load should reject unknown log levels")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ROBINAI_OPENAI_API_KEY", "sk-env")
	t.Setenv("ROBINAI_GROUPME_BOT_ID", "bot-env")
	t.Setenv("ROBINAI_SERVER_PORT", "7070")

	if !config.HasEnvConfig() {
		t.Fatal("HasEnvConfig should be true")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Errorf("APIKey = %q", cfg.OpenAI.APIKey)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
}

func TestLoadWithFallback_NoConfig(t *testing.T) {
	t.Setenv("ROBINAI_OPENAI_API_KEY", "")
	t.Setenv("ROBINAI_GROUPME_BOT_ID", "")

	if _, err := config.LoadWithFallback(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadWithFallback should fail with no file and no env")
	}
}
