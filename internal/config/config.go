// Package config loads switchboard settings from a config file, the
// environment and command-line flags.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable: SWITCHBOARD_REDIS_ADDR sets redis.addr.
const EnvPrefix = "SWITCHBOARD"

const configName = "switchboard"

// Config holds every setting.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Content  ContentConfig  `mapstructure:"content"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Store    StoreConfig    `mapstructure:"store"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Export   ExportConfig   `mapstructure:"export"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type ContentConfig struct {
	// Path is a YAML or TOML content file. Empty selects the built-in content.
	Path string `mapstructure:"path"`
}

type TelegramConfig struct {
	Token         string `mapstructure:"token"`
	Mode          string `mapstructure:"mode"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	PollTimeout   int    `mapstructure:"poll_timeout"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	// Path is the session directory of the file driver.
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
	EncryptionKey string        `mapstructure:"encryption_key"`
	RedactFields  []string      `mapstructure:"redact_fields"`
}

type ExportConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// Telegram modes.
const (
	ModePoll    = "poll"
	ModeWebhook = "webhook"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

var defaults = map[string]any{
	"log.level":               "info",
	"log.json":                false,
	"content.path":            "",
	"telegram.token":          "",
	"telegram.mode":           ModePoll,
	"telegram.webhook_secret": "",
	"telegram.poll_timeout":   60,
	"http.addr":               ":8080",
	"store.driver":            DriverMemory,
	"store.path":              ".switchboard/sessions",
	"redis.addr":              "localhost:6379",
	"redis.password":          "",
	"redis.db":                0,
	"redis.prefix":            "switchboard:session:",
	"session.ttl":             "0s",
	"session.lock_ttl":        "30s",
	"session.encryption_key":  "",
	"session.redact_fields":   []string{},
	"export.webhook_url":      "",
}

// New returns a viper instance with defaults and environment binding in place.
// Flags are bound by the caller with BindPFlag.
func New() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file, or switchboard.{yaml,toml} from the working directory when
// file is empty, and decodes the merged settings. A missing default file is
// not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be decoded into something wrong silently.
func (c Config) Validate() error {
	switch c.Telegram.Mode {
	case ModePoll, ModeWebhook:
	default:
		return fmt.Errorf("telegram.mode must be %q or %q, got %q", ModePoll, ModeWebhook, c.Telegram.Mode)
	}
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		return fmt.Errorf("store.driver must be one of memory, file, redis; got %q", c.Store.Driver)
	}
	if c.Session.TTL < 0 {
		return errors.New("session.ttl must not be negative")
	}
	if _, err := c.Session.Key(); err != nil {
		return err
	}
	return nil
}

// Key decodes the hex encryption key. It returns nil when encryption is off.
func (s SessionConfig) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("session.encryption_key must be hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("session.encryption_key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
