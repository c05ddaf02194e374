package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	PatheBaseURL    string  `mapstructure:"PATHE_BASE_URL"`
	IMDBBaseURL     string  `mapstructure:"IMDB_BASE_URL"`
	ListingWorkers  int     `mapstructure:"LISTING_WORKERS"`
	DetailWorkers   int     `mapstructure:"DETAIL_WORKERS"`
	RatingThreshold float64 `mapstructure:"RATING_THRESHOLD"`
	HTTPTimeout     int     `mapstructure:"HTTP_TIMEOUT"` // seconds, per attempt
	MaxRetries      int     `mapstructure:"MAX_RETRIES"`
	RetryBackoffMS  int     `mapstructure:"RETRY_BACKOFF_MS"`
	MetricsAddr     string  `mapstructure:"METRICS_ADDR"` // empty disables the listener

	MailFrom     string `mapstructure:"MAIL_FROM"`
	MailTo       string `mapstructure:"MAIL_TO"`
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
}

// Load reads configuration from file or environment variables.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ".env"
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the file, but don't fail if it's not present; in
	// that case everything comes from the environment.
	_ = viper.ReadInConfig()

	viper.SetDefault("PATHE_BASE_URL", "https://www.pathe.nl")
	viper.SetDefault("IMDB_BASE_URL", "https://www.imdb.com")
	viper.SetDefault("LISTING_WORKERS", 3)
	viper.SetDefault("DETAIL_WORKERS", 18)
	viper.SetDefault("RATING_THRESHOLD", 8.0)
	viper.SetDefault("HTTP_TIMEOUT", 30) // in seconds
	viper.SetDefault("MAX_RETRIES", 2)
	viper.SetDefault("RETRY_BACKOFF_MS", 500)
	viper.SetDefault("SMTP_PORT", 465)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MailConfigured reports whether the report should be emailed rather than
// only logged.
func (c *Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.MailFrom != "" && c.MailTo != ""
}
