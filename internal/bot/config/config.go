package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Config holds the application configuration parameters.
// Each field corresponds to an expected environment variable.
type Config struct {
	EnvBotToken     string   `env:"BOT_TOKEN,required"`                      // Telegram Bot Token for authentication with the Telegram API
	EnvAdmins       []string `env:"ADMINS" envSeparator:","`                 // Telegram usernames allowed into the admin panel
	EnvDatabasePath string   `env:"DATABASE_PATH" envDefault:"school_bot.db"` // Path to the sqlite database file
	EnvLogsLevel    string   `env:"LOG_LEVEL" envDefault:"info"`             // Log level for the application (e.g., DEBUG, INFO)
	EnvLogFileName  string   `env:"LOG_FILE_NAME" envDefault:"schoolBot.log"` // File's name for log
	EnvHTTPAddr     string   `env:"HTTP_ADDR"`                               // Address of the ops HTTP server, empty disables it
	EnvStateTTL     int      `env:"STATE_TTL_MINUTES" envDefault:"30"`       // Idle minutes before an admin dialog is dropped
}

// NewConfig initializes a new Config instance by loading environment variables
// from a bot.env file when present and then from the process environment.
func NewConfig() (*Config, error) {
	if err := godotenv.Load("bot.env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("new load .env: %w", err)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return config, nil
}

// StateTTL returns the dialog expiry as a duration.
func (c *Config) StateTTL() time.Duration {
	return time.Duration(c.EnvStateTTL) * time.Minute
}
