// Package config handles configuration loading from environment variables and an optional YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Google   GoogleConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Display  DisplayConfig
	Sessions SessionsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string
}

// GoogleConfig holds Google Calendar / OAuth environment fallbacks.
// Values entered through the admin panel live in the database; these
// are the env-sourced fallbacks resolved per field.
type GoogleConfig struct {
	CalendarID   string
	APIKey       string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// AuthConfig holds admin authentication settings.
type AuthConfig struct {
	// PasswordHash is a bcrypt hash of the admin password.
	PasswordHash     string
	LoginMaxAttempts int
	LoginWindow      time.Duration
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	// Timezone is the deployment's local zone, used for the schedule
	// month window and event payloads.
	Timezone string
}

// SessionsConfig holds admin session settings.
type SessionsConfig struct {
	Duration        time.Duration
	CleanupInterval time.Duration
}

// Load reads configuration from the optional config file and environment
// variables. Environment variables win over file values.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Server = ServerConfig{
		Host:         DefaultHost,
		Port:         DefaultPort,
		BaseURL:      DefaultBaseURL,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}

	cfg.Database = DatabaseConfig{
		Path: DefaultDataDir + "/portfolio.db",
	}

	cfg.Google = GoogleConfig{
		Scopes: []string{
			"https://www.googleapis.com/auth/calendar",
			"https://www.googleapis.com/auth/calendar.events",
		},
	}

	cfg.Auth = AuthConfig{
		LoginMaxAttempts: DefaultLoginMaxAttempts,
		LoginWindow:      DefaultLoginWindow,
	}

	cfg.Logging = LoggingConfig{
		Level:  DefaultLogLevel,
		Format: DefaultLogFormat,
	}

	cfg.Display = DisplayConfig{
		Timezone: DefaultTimezone,
	}

	cfg.Sessions = SessionsConfig{
		Duration:        DefaultSessionDuration,
		CleanupInterval: DefaultSessionCleanupInterval,
	}

	// File values override defaults
	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}

	// Environment values override file values
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Server.BaseURL = strings.TrimRight(getEnv("BASE_URL", cfg.Server.BaseURL), "/")
	cfg.Server.ReadTimeout = getEnvDuration("READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("WRITE_TIMEOUT", cfg.Server.WriteTimeout)

	if dir, ok := os.LookupEnv("DATA_DIR"); ok {
		cfg.Database.Path = dir + "/portfolio.db"
	}
	cfg.Database.Path = getEnv("DATABASE_PATH", cfg.Database.Path)

	cfg.Google.CalendarID = getEnv("GOOGLE_CALENDAR_ID", cfg.Google.CalendarID)
	cfg.Google.APIKey = getEnv("GOOGLE_API_KEY", cfg.Google.APIKey)
	cfg.Google.ClientID = getEnv("GOOGLE_CLIENT_ID", cfg.Google.ClientID)
	cfg.Google.ClientSecret = getEnv("GOOGLE_CLIENT_SECRET", cfg.Google.ClientSecret)

	cfg.Auth.PasswordHash = getEnv("ADMIN_PASSWORD_HASH", cfg.Auth.PasswordHash)
	cfg.Auth.LoginMaxAttempts = getEnvInt("LOGIN_MAX_ATTEMPTS", cfg.Auth.LoginMaxAttempts)
	cfg.Auth.LoginWindow = getEnvDuration("LOGIN_WINDOW", cfg.Auth.LoginWindow)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Display.Timezone = getEnv("DISPLAY_TIMEZONE", cfg.Display.Timezone)

	cfg.Sessions.Duration = getEnvDuration("SESSION_DURATION", cfg.Sessions.Duration)
}

// Validate checks that required configuration fields are set.
func (c *Config) Validate() error {
	if c.Auth.PasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required (run: server hash-password \"...\")")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("BASE_URL must not be empty")
	}
	if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		return fmt.Errorf("BASE_URL must be an absolute http(s) URL, got %q", c.Server.BaseURL)
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
