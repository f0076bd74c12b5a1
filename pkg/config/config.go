// Package config loads the bot configuration from a .env file, an optional
// TOML file and the environment, in increasing order of precedence.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"f1livebot/pkg/openf1"
	"f1livebot/pkg/render"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultPositionsInterval = 5 * time.Second
	DefaultMessageInterval   = 20 * time.Minute
	DefaultHTTPTimeout       = 10 * time.Second
	DefaultWebserverAddress  = ":8080"
)

type Config struct {
	TelegramToken string
	ChatID        int64

	OpenF1BaseURL     string
	PositionsInterval time.Duration
	MessageInterval   time.Duration
	HTTPTimeout       time.Duration

	DisplayTimezone  string
	MaxOvertakes     int
	LeaderboardStyle string

	WebserverAddress   string
	LogLevel           log.Level
	NotifySessionStart bool
}

// FileConfig maps the TOML configuration file. Unset keys keep their defaults.
type FileConfig struct {
	Telegram struct {
		Token  *string `toml:"token"`
		ChatID *int64  `toml:"chat-id"`
	} `toml:"telegram"`
	OpenF1 struct {
		BaseURL           *string `toml:"base-url"`
		PositionsInterval *string `toml:"positions-interval"`
		MessageInterval   *string `toml:"message-interval"`
		HTTPTimeout       *string `toml:"http-timeout"`
	} `toml:"openf1"`
	Leaderboard struct {
		Timezone     *string `toml:"timezone"`
		MaxOvertakes *int    `toml:"max-overtakes"`
		Style        *string `toml:"style"`
	} `toml:"leaderboard"`
	Webserver struct {
		Address *string `toml:"address"`
	} `toml:"webserver"`
	LogLevel           *string `toml:"log-level"`
	NotifySessionStart *bool   `toml:"notify-session-start"`
}

func Default() *Config {
	return &Config{
		OpenF1BaseURL:      openf1.DefaultBaseURL,
		PositionsInterval:  DefaultPositionsInterval,
		MessageInterval:    DefaultMessageInterval,
		HTTPTimeout:        DefaultHTTPTimeout,
		DisplayTimezone:    "UTC",
		MaxOvertakes:       render.DefaultMaxOvertakes,
		LeaderboardStyle:   render.StyleText,
		WebserverAddress:   DefaultWebserverAddress,
		LogLevel:           log.InfoLevel,
		NotifySessionStart: true,
	}
}

// Load reads .env (if present), then the TOML file at path (if path is not
// empty), then the environment. Credentials are not required here; use
// ValidateTelegram before starting the bot.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		log.WithError(err).Warn("could not load .env file")
	}

	cfg := Default()
	if path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.applyFile(fc); err != nil {
			return nil, errors.Wrapf(err, "config file %s", path)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes the TOML file at path. A missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			log.WithField("path", path).Warn("config file not found, using defaults")
			return fc, nil
		}
		return fc, errors.Wrap(err, "failed to stat config")
	}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fc, errors.Wrap(err, "failed to decode config")
	}
	return fc, nil
}

func (c *Config) applyFile(fc FileConfig) error {
	if fc.Telegram.Token != nil {
		c.TelegramToken = *fc.Telegram.Token
	}
	if fc.Telegram.ChatID != nil {
		c.ChatID = *fc.Telegram.ChatID
	}
	if fc.OpenF1.BaseURL != nil {
		c.OpenF1BaseURL = *fc.OpenF1.BaseURL
	}
	for _, d := range []struct {
		name  string
		value *string
		dst   *time.Duration
	}{
		{"positions-interval", fc.OpenF1.PositionsInterval, &c.PositionsInterval},
		{"message-interval", fc.OpenF1.MessageInterval, &c.MessageInterval},
		{"http-timeout", fc.OpenF1.HTTPTimeout, &c.HTTPTimeout},
	} {
		if d.value == nil {
			continue
		}
		parsed, err := time.ParseDuration(*d.value)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", d.name)
		}
		*d.dst = parsed
	}
	if fc.Leaderboard.Timezone != nil {
		c.DisplayTimezone = *fc.Leaderboard.Timezone
	}
	if fc.Leaderboard.MaxOvertakes != nil {
		c.MaxOvertakes = *fc.Leaderboard.MaxOvertakes
	}
	if fc.Leaderboard.Style != nil {
		c.LeaderboardStyle = *fc.Leaderboard.Style
	}
	if fc.Webserver.Address != nil {
		c.WebserverAddress = *fc.Webserver.Address
	}
	if fc.LogLevel != nil {
		lvl, err := log.ParseLevel(*fc.LogLevel)
		if err != nil {
			return errors.Wrap(err, "invalid log-level")
		}
		c.LogLevel = lvl
	}
	if fc.NotifySessionStart != nil {
		c.NotifySessionStart = *fc.NotifySessionStart
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.TelegramToken = v
	}
	if v := os.Getenv("CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid CHAT_ID")
		}
		c.ChatID = id
	}
	if v := os.Getenv("OPENF1_BASE_URL"); v != "" {
		c.OpenF1BaseURL = v
	}
	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"POSITIONS_INTERVAL", &c.PositionsInterval},
		{"MESSAGE_INTERVAL", &c.MessageInterval},
		{"HTTP_TIMEOUT", &c.HTTPTimeout},
	} {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", d.key)
		}
		*d.dst = parsed
	}
	if v := os.Getenv("DISPLAY_TIMEZONE"); v != "" {
		c.DisplayTimezone = v
	}
	if v := os.Getenv("MAX_OVERTAKES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "invalid MAX_OVERTAKES")
		}
		c.MaxOvertakes = n
	}
	if v := os.Getenv("LEADERBOARD_STYLE"); v != "" {
		c.LeaderboardStyle = strings.ToLower(v)
	}
	// An empty WEBSERVER_ADDRESS disables the webserver.
	if v, ok := os.LookupEnv("WEBSERVER_ADDRESS"); ok {
		c.WebserverAddress = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		lvl, err := log.ParseLevel(v)
		if err != nil {
			return errors.Wrap(err, "invalid LOG_LEVEL")
		}
		c.LogLevel = lvl
	}
	if v := os.Getenv("NOTIFY_SESSION_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "invalid NOTIFY_SESSION_START")
		}
		c.NotifySessionStart = b
	}
	return nil
}

func (c *Config) validate() error {
	if c.PositionsInterval <= 0 {
		return errors.Errorf("positions interval must be positive, got %s", c.PositionsInterval)
	}
	if c.MessageInterval <= 0 {
		return errors.Errorf("message interval must be positive, got %s", c.MessageInterval)
	}
	if c.HTTPTimeout <= 0 {
		return errors.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.MaxOvertakes < 0 {
		return errors.Errorf("max overtakes must not be negative, got %d", c.MaxOvertakes)
	}
	switch c.LeaderboardStyle {
	case render.StyleText, render.StyleTable:
	default:
		return errors.Errorf("unknown leaderboard style %q", c.LeaderboardStyle)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ValidateTelegram checks the credentials needed to run the bot.
func (c *Config) ValidateTelegram() error {
	if c.TelegramToken == "" || c.ChatID == 0 {
		return errors.New("missing telegram env: require TELEGRAM_TOKEN and CHAT_ID")
	}
	return nil
}

// Location resolves DisplayTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid display timezone %q", c.DisplayTimezone)
	}
	return loc, nil
}
