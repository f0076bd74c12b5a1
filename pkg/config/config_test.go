package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
)

var envKeys = []string{
	"TELEGRAM_TOKEN", "CHAT_ID", "OPENF1_BASE_URL", "POSITIONS_INTERVAL",
	"MESSAGE_INTERVAL", "HTTP_TIMEOUT", "DISPLAY_TIMEZONE", "MAX_OVERTAKES",
	"LEADERBOARD_STYLE", "LOG_LEVEL", "NOTIFY_SESSION_START",
}

// clearEnv isolates the test from the caller's environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	if v, ok := os.LookupEnv("WEBSERVER_ADDRESS"); ok {
		os.Unsetenv("WEBSERVER_ADDRESS")
		t.Cleanup(func() { os.Setenv("WEBSERVER_ADDRESS", v) })
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PositionsInterval != 5*time.Second || cfg.MessageInterval != 20*time.Minute {
		t.Errorf("intervals = %s/%s", cfg.PositionsInterval, cfg.MessageInterval)
	}
	if cfg.MaxOvertakes != 20 || cfg.LeaderboardStyle != "text" || cfg.WebserverAddress != ":8080" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.NotifySessionStart || cfg.LogLevel != log.InfoLevel {
		t.Errorf("cfg = %+v", cfg)
	}
	if err := cfg.ValidateTelegram(); err == nil {
		t.Error("expected missing credentials error")
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("CHAT_ID", "-1001234")
	t.Setenv("POSITIONS_INTERVAL", "2s")
	t.Setenv("DISPLAY_TIMEZONE", "Europe/Madrid")
	t.Setenv("LEADERBOARD_STYLE", "TABLE")
	t.Setenv("WEBSERVER_ADDRESS", "")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NOTIFY_SESSION_START", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.ValidateTelegram(); err != nil {
		t.Fatal(err)
	}
	if cfg.ChatID != -1001234 || cfg.PositionsInterval != 2*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LeaderboardStyle != "table" || cfg.WebserverAddress != "" || cfg.NotifySessionStart {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.LogLevel != log.DebugLevel {
		t.Errorf("level = %s", cfg.LogLevel)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Europe/Madrid" {
		t.Errorf("location = %v, %v", loc, err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "f1livebot.toml")
	content := `
log-level = "warn"

[telegram]
token = "from-file"
chat-id = 42

[openf1]
positions-interval = "10s"
http-timeout = "3s"

[leaderboard]
max-overtakes = 5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TELEGRAM_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TelegramToken != "from-env" {
		t.Errorf("token = %q, env should win", cfg.TelegramToken)
	}
	if cfg.ChatID != 42 || cfg.PositionsInterval != 10*time.Second || cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MaxOvertakes != 5 || cfg.LogLevel != log.WarnLevel {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err != nil {
		t.Errorf("missing file should use defaults, got %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"CHAT_ID":            "chat",
		"POSITIONS_INTERVAL": "soon",
		"MESSAGE_INTERVAL":   "0s",
		"MAX_OVERTAKES":      "-1",
		"LEADERBOARD_STYLE":  "html",
		"DISPLAY_TIMEZONE":   "Mars/Olympus",
		"LOG_LEVEL":          "loud",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := Load(""); err == nil {
				t.Errorf("%s=%q: expected error", key, value)
			}
		})
	}
}
