package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
)

// isolate runs the test from an empty directory so no config file or .env
// from the repository is picked up
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Platform != PlatformTelegram || cfg.StorageDriver != StorageDriverFile || cfg.Analyzer != AnalyzerKindFeed {
		t.Fatalf("unexpected enums %+v", cfg)
	}
	if cfg.HTTPPort != "8080" || cfg.DefaultTimezone != "Asia/Shanghai" || cfg.FeedLimit != 50 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.SendTimeout != 30*time.Second || cfg.InputTTL != 0 || cfg.SchedulerRefresh != "@daily" {
		t.Fatalf("unexpected durations %+v", cfg)
	}
	if cfg.AppEnv != AppEnvProduction {
		t.Fatalf("unexpected app env %q", cfg.AppEnv)
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "telegram without token", env: map[string]string{"PLATFORM": "telegram", "TELEGRAM_BOT_TOKEN": ""}},
		{name: "feishu without secret", env: map[string]string{"PLATFORM": "Feishu", "FEISHU_APP_ID": "cli_1", "FEISHU_APP_SECRET": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if !stderrors.Is(err, errors.ErrMissingCredentials) {
				t.Fatalf("expected ErrMissingCredentials, got %v", err)
			}
		})
	}
}

func TestLoadFileOverriddenByEnv(t *testing.T) {
	dir := isolate(t)
	yaml := "platform: feishu\nfeishu_app_id: cli_1\nfeishu_app_secret: s\nhttp_port: \"9000\"\ninput_ttl: 10m\nstorage_driver: SQLite\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HTTP_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Platform != PlatformFeishu || cfg.HTTPPort != "9100" || cfg.InputTTL != 10*time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.StorageDriver != StorageDriverSqlite || cfg.DatabaseDSN() != filepath.Join("data", "subscribers.db") {
		t.Fatalf("unexpected storage %q %q", cfg.StorageDriver, cfg.DatabaseDSN())
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TELEGRAM_BOT_TOKEN=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// registers cleanup of the variable godotenv sets
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	os.Unsetenv("TELEGRAM_BOT_TOKEN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TelegramBotToken != "from-dotenv" {
		t.Fatalf("unexpected token %q", cfg.TelegramBotToken)
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	base := Config{Platform: PlatformTelegram, TelegramBotToken: "t", DefaultTimezone: "UTC"}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "postgres without url", mutate: func(c *Config) { c.StorageDriver = StorageDriverPostgres }},
		{name: "command without command line", mutate: func(c *Config) { c.Analyzer = AnalyzerKindCommand }},
		{name: "bad timezone", mutate: func(c *Config) { c.DefaultTimezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
