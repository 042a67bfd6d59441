package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/scorekeeper/internal/database"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// getEnv returns the value of key, or fallback when it is unset or empty.
	getEnv := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		return fallback
	}

	maxRetries, err := strconv.ParseUint(getEnv("REGISTER_MAX_RETRIES", "5"), 10, 64)
	if err != nil {
		log.Fatalf("Error: REGISTER_MAX_RETRIES must be a non-negative integer: %s", err)
	}

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		DBName:        getEnv("DB_NAME", "scorekeeper.db"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN", ""),
		},
		Log: LogConfig{
			Format: getEnv("LOG_FORMAT", "json"),
			Level:  getEnv("LOG_LEVEL", "info"),
		},
		Slack: SlackConfig{
			Token:     getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID: getEnv("SLACK_CHANNEL_ID", ""),
		},
		ProjectID: getEnv("GCP_PROJECT", ""),
		Registrar: RegistrarConfig{
			MaxRetries: maxRetries,
		},
	}
	return cfg
}

// Database returns the options used to open the configured database.
func (c Config) Database() database.Options {
	return database.Options{
		DBName:        c.DBName,
		PrimaryURL:    c.Turso.PrimaryURL,
		AuthToken:     c.Turso.AuthToken,
		PostgresURL:   c.DatabaseURL,
		MigrationsDir: c.MigrationsDir,
	}
}

// SlackEnabled reports whether match results should be posted to Slack.
func (c Config) SlackEnabled() bool {
	return c.Slack.Token != "" && c.Slack.ChannelID != ""
}

// Apply configures the package-level logger.
func (c LogConfig) Apply() {
	if strings.EqualFold(c.Format, "text") {
		log.SetFormatter(log.TextFormatter)
	} else {
		log.SetFormatter(log.JSONFormatter)
	}
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		log.Warn("Unknown log level, using info", "level", c.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
