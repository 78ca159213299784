package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_BOT_TOKEN", "test-token")
	t.Setenv("YOUTUBE_API_KEY", "test-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != 10000 {
		t.Errorf("expected default server port 10000, got %d", cfg.Server.Port)
	}
	if cfg.Schedule.TickInterval != time.Minute {
		t.Errorf("expected default tick interval 1m, got %v", cfg.Schedule.TickInterval)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadMissingBotToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	t.Setenv("YOUTUBE_API_KEY", "test-key")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DISCORD_BOT_TOKEN is missing")
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "test-token")
	t.Setenv("YOUTUBE_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when YOUTUBE_API_KEY is missing")
	}
}

func TestLoadRejectsSubSecondTick(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TICK_INTERVAL_SECONDS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for sub-second tick interval")
	}
}

func TestParseCommaSeparated(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"single", "https://a.example", 1},
		{"multiple with spaces", "https://a.example, https://b.example ,", 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseCommaSeparated(tc.input)
			if len(got) != tc.want {
				t.Errorf("parseCommaSeparated(%q) returned %d entries, want %d", tc.input, len(got), tc.want)
			}
		})
	}
}
