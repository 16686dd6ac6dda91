// Load envs from .env
// Load YAML config
// Apply env overrides
// Provide default values

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	//HTTP surface
	ListenAddr string `yaml:"listen_addr"`

	//Target site
	BaseURL   string `yaml:"base_url"`
	FetchMode string `yaml:"fetch_mode"` // "http" or "browser"
	Headful   bool   `yaml:"headful"`    // browser mode only; default headless

	//Paths
	CookiesPath   string `yaml:"cookies_path"`
	ScreenshotDir string `yaml:"screenshot_dir"`
	ResultsPath   string `yaml:"results_path"`

	//Store: when DATABASE_URL is set the postgres store wins over JSONL.
	//Env overrides are applied by hand in Load.
	DatabaseURL string `yaml:"database_url"`

	//Retry / rate limiting
	RetryAttempts         int `yaml:"retry_attempts"`
	BackoffBaseMS         int `yaml:"backoff_base_ms"`
	BackoffCeilingMS      int `yaml:"backoff_ceiling_ms"`
	BlockBackoffCeilingMS int `yaml:"block_backoff_ceiling_ms"`
	BlockBudget           int `yaml:"block_budget"`
	PageDelayMS           int `yaml:"page_delay_ms"`
	FetchTimeoutSec       int `yaml:"fetch_timeout_sec"`
	RunBudgetSec          int `yaml:"run_budget_sec"` // 0 = no budget

	//Default caps applied when a request leaves them unset
	MaxPages   int `yaml:"max_pages"`
	MaxResults int `yaml:"max_results"`

	//Notifications (optional)
	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("could not read %s: %w", path, err)
		}
		// no config file is fine, defaults + env carry it
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	}

	//Override with env vars
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	if v := os.Getenv("FETCH_MODE"); v != "" {
		cfg.FetchMode = v
	}

	//Set default values if not set
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.seek.com.au"
	}
	if cfg.FetchMode == "" {
		cfg.FetchMode = "browser"
	}
	if cfg.ResultsPath == "" {
		cfg.ResultsPath = "results/listings.jsonl"
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.BackoffBaseMS == 0 {
		cfg.BackoffBaseMS = 2000
	}
	if cfg.BackoffCeilingMS == 0 {
		cfg.BackoffCeilingMS = 30000
	}
	if cfg.BlockBackoffCeilingMS == 0 {
		cfg.BlockBackoffCeilingMS = 120000
	}
	if cfg.BlockBudget == 0 {
		cfg.BlockBudget = 2
	}
	if cfg.PageDelayMS == 0 {
		cfg.PageDelayMS = 2000
	}
	if cfg.FetchTimeoutSec == 0 {
		cfg.FetchTimeoutSec = 30
	}

	//Validate
	if cfg.FetchMode != "http" && cfg.FetchMode != "browser" {
		return nil, fmt.Errorf("fetch_mode must be \"http\" or \"browser\", got %q", cfg.FetchMode)
	}

	return cfg, nil
}

func (c *Config) PageDelay() time.Duration    { return time.Duration(c.PageDelayMS) * time.Millisecond }
func (c *Config) BackoffBase() time.Duration  { return time.Duration(c.BackoffBaseMS) * time.Millisecond }
func (c *Config) BackoffCeiling() time.Duration {
	return time.Duration(c.BackoffCeilingMS) * time.Millisecond
}
func (c *Config) BlockBackoffCeiling() time.Duration {
	return time.Duration(c.BlockBackoffCeilingMS) * time.Millisecond
}
func (c *Config) FetchTimeout() time.Duration { return time.Duration(c.FetchTimeoutSec) * time.Second }
func (c *Config) RunBudget() time.Duration    { return time.Duration(c.RunBudgetSec) * time.Second }
