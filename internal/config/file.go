package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// configFileEnv names the env var pointing at the YAML config file.
const configFileEnv = "CONFIG_FILE"

type fileDuration time.Duration

func (d *fileDuration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!int" {
			var seconds int64
			if err := value.Decode(&seconds); err != nil {
				return err
			}
			*d = fileDuration(time.Duration(seconds) * time.Second)
			return nil
		}
		var raw string
		if err := value.Decode(&raw); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		*d = fileDuration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration type")
	}
}

// configFile mirrors Config with pointer fields so absent keys leave the
// defaults untouched.
type configFile struct {
	Server   *serverConfigFile   `yaml:"server"`
	Database *databaseConfigFile `yaml:"database"`
	Google   *googleConfigFile   `yaml:"google"`
	Auth     *authConfigFile     `yaml:"auth"`
	Logging  *loggingConfigFile  `yaml:"logging"`
	Display  *displayConfigFile  `yaml:"display"`
	Sessions *sessionsConfigFile `yaml:"sessions"`
}

type serverConfigFile struct {
	Host         *string       `yaml:"host"`
	Port         *int          `yaml:"port"`
	BaseURL      *string       `yaml:"base_url"`
	ReadTimeout  *fileDuration `yaml:"read_timeout"`
	WriteTimeout *fileDuration `yaml:"write_timeout"`
}

type databaseConfigFile struct {
	Path *string `yaml:"path"`
}

type googleConfigFile struct {
	CalendarID   *string   `yaml:"calendar_id"`
	APIKey       *string   `yaml:"api_key"`
	ClientID     *string   `yaml:"client_id"`
	ClientSecret *string   `yaml:"client_secret"`
	Scopes       *[]string `yaml:"scopes"`
}

type authConfigFile struct {
	PasswordHash     *string       `yaml:"password_hash"`
	LoginMaxAttempts *int          `yaml:"login_max_attempts"`
	LoginWindow      *fileDuration `yaml:"login_window"`
}

type loggingConfigFile struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
}

type displayConfigFile struct {
	Timezone *string `yaml:"timezone"`
}

type sessionsConfigFile struct {
	Duration        *fileDuration `yaml:"duration"`
	CleanupInterval *fileDuration `yaml:"cleanup_interval"`
}

// applyConfigFile overlays values from the YAML config file, if one is
// configured and exists.
func applyConfigFile(cfg *Config) error {
	path := os.Getenv(configFileEnv)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if f := file.Server; f != nil {
		setString(&cfg.Server.Host, f.Host)
		setInt(&cfg.Server.Port, f.Port)
		setString(&cfg.Server.BaseURL, f.BaseURL)
		setDuration(&cfg.Server.ReadTimeout, f.ReadTimeout)
		setDuration(&cfg.Server.WriteTimeout, f.WriteTimeout)
	}
	if f := file.Database; f != nil {
		setString(&cfg.Database.Path, f.Path)
	}
	if f := file.Google; f != nil {
		setString(&cfg.Google.CalendarID, f.CalendarID)
		setString(&cfg.Google.APIKey, f.APIKey)
		setString(&cfg.Google.ClientID, f.ClientID)
		setString(&cfg.Google.ClientSecret, f.ClientSecret)
		if f.Scopes != nil && len(*f.Scopes) > 0 {
			cfg.Google.Scopes = *f.Scopes
		}
	}
	if f := file.Auth; f != nil {
		setString(&cfg.Auth.PasswordHash, f.PasswordHash)
		setInt(&cfg.Auth.LoginMaxAttempts, f.LoginMaxAttempts)
		setDuration(&cfg.Auth.LoginWindow, f.LoginWindow)
	}
	if f := file.Logging; f != nil {
		setString(&cfg.Logging.Level, f.Level)
		setString(&cfg.Logging.Format, f.Format)
	}
	if f := file.Display; f != nil {
		setString(&cfg.Display.Timezone, f.Timezone)
	}
	if f := file.Sessions; f != nil {
		setDuration(&cfg.Sessions.Duration, f.Duration)
		setDuration(&cfg.Sessions.CleanupInterval, f.CleanupInterval)
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *fileDuration) {
	if src != nil {
		*dst = time.Duration(*src)
	}
}
