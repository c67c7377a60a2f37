// Package config provides default values for configuration.
package config

import "time"

// Server defaults
const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 8080
	DefaultBaseURL      = "http://localhost:8080"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
)

// Database defaults
const (
	DefaultDataDir = "/data"
)

// Auth defaults
const (
	DefaultLoginMaxAttempts = 5
	DefaultLoginWindow      = 10 * time.Minute
)

// Logging defaults
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Display defaults
const (
	DefaultTimezone = "Asia/Seoul"
)

// Session defaults
const (
	DefaultSessionDuration        = 24 * time.Hour
	DefaultSessionCleanupInterval = 1 * time.Hour
)
