// Package config loads the bot configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"CoinScout/internal/model"
)

// DefaultUniverse is the asset list analysed when none is configured.
var DefaultUniverse = []string{
	"STORJ", "XRP", "EIGEN", "ETH", "BTC", "RUNE", "AVAX", "AAVE", "ADA", "DOT",
	"RLC", "XLM", "AMP", "ETC", "FET", "ENJ", "ETHW", "ALGO", "SOL", "AXS",
	"TRX", "CHZ", "SKL", "ZRX", "OMG", "XTZ", "APE", "API3", "MANA", "NEO",
}

// Config holds all application configuration.
type Config struct {
	Universe []string `yaml:"universe" validate:"required,min=1,dive,required"`
	Quote    string   `yaml:"quote" default:"USDT" validate:"required"`

	DataSource struct {
		Provider       string        `yaml:"provider" default:"binance" validate:"oneof=binance yahoo mock"`
		BaseURL        string        `yaml:"base_url" validate:"omitempty,url"`
		RequestsPerSec int           `yaml:"requests_per_sec" default:"10" validate:"min=1"`
		MaxRetries     int           `yaml:"max_retries" default:"3" validate:"min=0"`
		Timeout        time.Duration `yaml:"timeout" default:"15s" validate:"gt=0"`
	} `yaml:"data_source"`

	News struct {
		Enabled bool          `yaml:"enabled" default:"true"`
		BaseURL string        `yaml:"base_url" default:"https://www.cryptocraft.com" validate:"omitempty,url"`
		Timeout time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	} `yaml:"news"`

	Analysis struct {
		Lookback    time.Duration `yaml:"lookback" default:"120h" validate:"gt=0"`
		Granularity time.Duration `yaml:"granularity" default:"1h" validate:"gt=0"`
		TopK        int           `yaml:"top_k" default:"4" validate:"min=1"`
		Markup      float64       `yaml:"markup" default:"0.15" validate:"gte=0"`
		Workers     int           `yaml:"workers" default:"4" validate:"min=1,max=32"`
	} `yaml:"analysis"`

	Schedule struct {
		Interval  time.Duration `yaml:"interval" default:"1h" validate:"gt=0"`
		Cron      string        `yaml:"cron"`
		Autostart bool          `yaml:"autostart" default:"true"`
	} `yaml:"schedule"`

	Notifier struct {
		Kind       string `yaml:"kind" default:"pushbullet" validate:"oneof=pushbullet telegram"`
		Title      string `yaml:"title" default:"pol"`
		MaxRetries int    `yaml:"max_retries" default:"3" validate:"min=0"`
		BaseURL    string `yaml:"base_url" validate:"omitempty,url"`
		Commands   bool   `yaml:"commands" default:"true"`

		PushbulletToken  string `yaml:"-" validate:"required_if=Kind pushbullet"`
		TelegramBotToken string `yaml:"-" validate:"required_if=Kind telegram"`
		TelegramChatID   int64  `yaml:"-" validate:"required_if=Kind telegram"`
	} `yaml:"notifier"`

	Server struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Host    string `yaml:"host" default:"0.0.0.0"`
		Port    int    `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	} `yaml:"server"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`

	Proxy string `yaml:"proxy"`
}

var validate = validator.New()

// Load reads config from a YAML file, then applies environment variable
// overrides and validates. A missing file is not an error. Every failure
// wraps model.ErrConfiguration.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("%w: defaults: %w", model.ErrConfiguration, err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: read config: %w", model.ErrConfiguration, err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse config: %w", model.ErrConfiguration, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if len(cfg.Universe) == 0 {
		cfg.Universe = append([]string(nil), DefaultUniverse...)
	}
	cfg.Universe = normalizeUniverse(cfg.Universe)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PB_TOKEN"); v != "" {
		c.Notifier.PushbulletToken = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Notifier.TelegramBotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: TELEGRAM_CHAT_ID %q: %w", model.ErrConfiguration, v, err)
		}
		c.Notifier.TelegramChatID = id
	}
	if v := os.Getenv("NOTIFIER"); v != "" {
		c.Notifier.Kind = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("UNIVERSE"); v != "" {
		c.Universe = strings.Split(v, ",")
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT %q: %w", model.ErrConfiguration, v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// normalizeUniverse upper-cases symbols and drops blanks and repeats, keeping order.
func normalizeUniverse(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", model.ErrConfiguration, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", model.ErrConfiguration, err)
	}
	return nil
}
