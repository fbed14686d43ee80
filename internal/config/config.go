package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver      string `mapstructure:"db_driver"`
	DBHost        string `mapstructure:"db_host"`
	DBPort        string `mapstructure:"db_port"`
	DBUser        string `mapstructure:"db_user"`
	DBPassword    string `mapstructure:"db_password"`
	DBName        string `mapstructure:"db_name"`
	DBLogLevel    string `mapstructure:"db_log_level"`
	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     string `mapstructure:"redis_port"`
	SessionSecret string `mapstructure:"session_secret"`
	GinMode       string `mapstructure:"gin_mode"`
	ListenAddr    string `mapstructure:"listen_addr"`
	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	LogLevel      string `mapstructure:"log_level"`
	LogEncoding   string `mapstructure:"log_encoding"`

	// CronSecret authenticates the scheduler that triggers reminder sweeps.
	CronSecret string `mapstructure:"cron_secret"`
	AppURL     string `mapstructure:"app_url"`

	SMTPHost      string        `mapstructure:"smtp_host"`
	SMTPPort      string        `mapstructure:"smtp_port"`
	SMTPUsername  string        `mapstructure:"smtp_username"`
	SMTPPassword  string        `mapstructure:"smtp_password"`
	SMTPFromEmail string        `mapstructure:"smtp_from_email"`
	SMTPFromName  string        `mapstructure:"smtp_from_name"`
	SMTPTimeout   time.Duration `mapstructure:"smtp_timeout"`

	ReminderTimezone      string `mapstructure:"reminder_timezone"`
	ReminderLookaheadDays int    `mapstructure:"reminder_lookahead_days"`
	ReminderConcurrency   int    `mapstructure:"reminder_concurrency"`
}

var defaults = map[string]any{
	"db_driver":               "postgres",
	"db_host":                 "localhost",
	"db_port":                 "5432",
	"db_user":                 "sponsoruser",
	"db_password":             "sponsorpassword",
	"db_name":                 "sponsor_deliverables",
	"db_log_level":            "warn",
	"redis_host":              "localhost",
	"redis_port":              "6379",
	"session_secret":          "default-secret-key-change-me",
	"gin_mode":                "debug",
	"listen_addr":             ":8080",
	"openai_api_key":          "",
	"log_level":               "info",
	"log_encoding":            "console",
	"cron_secret":             "",
	"app_url":                 "http://localhost:3000",
	"smtp_host":               "",
	"smtp_port":               "587",
	"smtp_username":           "",
	"smtp_password":           "",
	"smtp_from_email":         "reminders@sponsorassure.com",
	"smtp_from_name":          "SponsorAssure",
	"smtp_timeout":            "15s",
	"reminder_timezone":       "UTC",
	"reminder_lookahead_days": 7,
	"reminder_concurrency":    4,
}

// Load reads configuration from environment variables, optionally layered over the
// YAML file named by CONFIG_FILE.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if cfg.ReminderLookaheadDays < 7 {
		// window must cover the 7-day cadence
		cfg.ReminderLookaheadDays = 7
	}
	if cfg.ReminderConcurrency < 1 {
		cfg.ReminderConcurrency = 1
	}

	return cfg, nil
}

// Location returns the reference timezone for calendar-day comparisons.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReminderTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_TIMEZONE %q: %w", c.ReminderTimezone, err)
	}
	return loc, nil
}

// SMTPConfigured reports whether outgoing mail can be delivered over SMTP.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != ""
}
