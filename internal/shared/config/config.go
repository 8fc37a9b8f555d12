package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	AppEnv    AppEnv `koanf:"app_env"`
	LogLevel  string `koanf:"log_level"`
	HTTPPort  string `koanf:"http_port"`
	PublicURL string `koanf:"public_url"`

	Platform              Platform `koanf:"platform"`
	TelegramBotToken      string   `koanf:"telegram_bot_token"`
	TelegramAPIURL        string   `koanf:"telegram_api_url"`
	TelegramWebhookURL    string   `koanf:"telegram_webhook_url"`
	TelegramWebhookSecret string   `koanf:"telegram_webhook_secret"`
	FeishuAppID           string   `koanf:"feishu_app_id"`
	FeishuAppSecret       string   `koanf:"feishu_app_secret"`
	FeishuVerifyToken     string   `koanf:"feishu_verification_token"`
	FeishuAPIURL          string   `koanf:"feishu_api_url"`

	StorageDriver StorageDriver `koanf:"storage_driver"`
	StoragePath   string        `koanf:"storage_path"`
	DatabaseURL   string        `koanf:"database_url"`

	Analyzer        AnalyzerKind  `koanf:"analyzer"`
	AnalyzerCommand string        `koanf:"analyzer_command"`
	AnalyzeTimeout  time.Duration `koanf:"analyze_timeout"`
	SendTimeout     time.Duration `koanf:"send_timeout"`
	BaseTemplate    string        `koanf:"base_template"`

	DefaultTimezone  string        `koanf:"default_timezone"`
	SchedulerRefresh string        `koanf:"scheduler_refresh"`
	InputTTL         time.Duration `koanf:"input_ttl"`
	FeedLimit        int           `koanf:"feed_limit"`
}

var defaults = map[string]any{
	"app_env":           "production",
	"log_level":         "info",
	"http_port":         "8080",
	"platform":          "telegram",
	"telegram_api_url":  "https://api.telegram.org",
	"feishu_api_url":    "https://open.feishu.cn",
	"storage_driver":    "file",
	"storage_path":      "./data",
	"analyzer":          "feed",
	"analyze_timeout":   "5m",
	"send_timeout":      "30s",
	"default_timezone":  "Asia/Shanghai",
	"scheduler_refresh": "@daily",
	"input_ttl":         "0s",
	"feed_limit":        50,
}

func Load() (*Config, error) {
	// a missing .env file is fine; real environment variables win
	_ = godotenv.Load()

	k := koanf.New(".")

	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	if err := cfg.normalize(k); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// normalize parses the enumerated settings case-insensitively
func (c *Config) normalize(k *koanf.Koanf) error {
	appEnv, err := ParseAppEnv(k.String("app_env"))
	c.AppEnv = lo.Ternary(err == nil, appEnv, AppEnvProduction)

	if c.Platform, err = ParsePlatform(k.String("platform")); err != nil {
		return oops.With("platform", k.String("platform")).Wrap(err)
	}
	if c.StorageDriver, err = ParseStorageDriver(k.String("storage_driver")); err != nil {
		return oops.With("storage_driver", k.String("storage_driver")).Wrap(err)
	}
	if c.Analyzer, err = ParseAnalyzerKind(k.String("analyzer")); err != nil {
		return oops.With("analyzer", k.String("analyzer")).Wrap(err)
	}

	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	return nil
}

// Validate checks the settings the process cannot start without. Missing
// platform credentials wrap ErrMissingCredentials.
func (c *Config) Validate() error {
	switch c.Platform {
	case PlatformTelegram:
		if c.TelegramBotToken == "" {
			return oops.With("platform", c.Platform, "missing", "telegram_bot_token").Wrap(errors.ErrMissingCredentials)
		}
	case PlatformFeishu:
		var missing []string
		if c.FeishuAppID == "" {
			missing = append(missing, "feishu_app_id")
		}
		if c.FeishuAppSecret == "" {
			missing = append(missing, "feishu_app_secret")
		}
		if len(missing) > 0 {
			return oops.With("platform", c.Platform, "missing", strings.Join(missing, ",")).Wrap(errors.ErrMissingCredentials)
		}
	}

	if c.StorageDriver == StorageDriverPostgres && c.DatabaseURL == "" {
		return oops.With("storage_driver", c.StorageDriver).Errorf("database_url is required")
	}
	if c.Analyzer == AnalyzerKindCommand && strings.TrimSpace(c.AnalyzerCommand) == "" {
		return oops.With("analyzer", c.Analyzer).Errorf("analyzer_command is required")
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return oops.With("default_timezone", c.DefaultTimezone).Wrap(err)
	}

	return nil
}

// DatabaseDSN returns the data source for the SQL drivers. SQLite defaults to
// a file under storage_path.
func (c *Config) DatabaseDSN() string {
	if c.DatabaseURL != "" || c.StorageDriver != StorageDriverSqlite {
		return c.DatabaseURL
	}
	return filepath.Join(c.StoragePath, "subscribers.db")
}

// ScratchDir is where per-push snapshot files are written
func (c *Config) ScratchDir() string {
	return filepath.Join(c.StoragePath, "scratch")
}
