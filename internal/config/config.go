// Package config loads iolib settings from the environment.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// DefaultBatchSize is the warehouse write batch size when IOLIB_BATCH_SIZE is unset.
const DefaultBatchSize = 1000

// Config holds credentials and defaults shared by every command.
type Config struct {
	KeyFile   string // GOOGLE_APPLICATION_CREDENTIALS; empty means application default credentials
	Project   string // IOLIB_PROJECT; overrides the project implied by the credentials
	LogLevel  string // debug, info, warn, error (default "info")
	LogFormat string // text or json (default "text")
	Output    string // IOLIB_OUTPUT; CLI output format, empty means auto
	BatchSize int

	// S3 fields are optional, nil when not configured.
	S3KeyID    *string
	S3Secret   *string
	S3Region   *string
	S3Endpoint *string

	// Azure fields are optional, nil when not configured.
	AzureAccount *string
	AzureKey     *string

	FTPHost     string
	FTPUser     string
	FTPPassword string

	// Warnings collects non-fatal problems found while loading. The caller
	// logs them once its logger exists.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// HasS3Config returns true if the S3 region and keys are set. The endpoint
// is optional.
func (c *Config) HasS3Config() bool {
	return c.S3KeyID != nil && c.S3Secret != nil && c.S3Region != nil
}

// HasAzureConfig returns true if both the account and its key are set.
func (c *Config) HasAzureConfig() bool {
	return c.AzureAccount != nil && c.AzureKey != nil
}

// LoadFromEnv loads configuration from environment variables. Storage
// credentials are optional.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		KeyFile:     os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		Project:     os.Getenv("IOLIB_PROJECT"),
		LogLevel:    os.Getenv("IOLIB_LOG_LEVEL"),
		LogFormat:   strings.ToLower(os.Getenv("IOLIB_LOG_FORMAT")),
		Output:      os.Getenv("IOLIB_OUTPUT"),
		FTPHost:     os.Getenv("FTP_HOST"),
		FTPUser:     os.Getenv("FTP_USER"),
		FTPPassword: os.Getenv("FTP_PASSWORD"),
	}

	if v := os.Getenv("IOLIB_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("IOLIB_BATCH_SIZE must be a positive integer, got %q", v)
		}
		cfg.BatchSize = n
	}

	cfg.S3KeyID = optional("AWS_ACCESS_KEY_ID")
	cfg.S3Secret = optional("AWS_SECRET_ACCESS_KEY")
	cfg.S3Region = optional("AWS_REGION")
	cfg.S3Endpoint = optional("S3_ENDPOINT")
	cfg.AzureAccount = optional("AZURE_STORAGE_ACCOUNT")
	cfg.AzureKey = optional("AZURE_STORAGE_KEY")

	// Defaults
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown IOLIB_LOG_FORMAT %q, using text", cfg.LogFormat))
		cfg.LogFormat = "text"
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	if cfg.KeyFile != "" {
		if _, err := os.Stat(cfg.KeyFile); err != nil {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("GOOGLE_APPLICATION_CREDENTIALS points to an unreadable file: %v", err))
		}
	}
	if (cfg.S3KeyID == nil) != (cfg.S3Secret == nil) {
		cfg.Warnings = append(cfg.Warnings, "AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together; S3 disabled")
	}
	if (cfg.AzureAccount == nil) != (cfg.AzureKey == nil) {
		cfg.Warnings = append(cfg.Warnings, "AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together; Azure disabled")
	}

	return cfg, nil
}

func optional(key string) *string {
	if v := os.Getenv(key); v != "" {
		return &v
	}
	return nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(strings.TrimPrefix(line, "export "), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		if _, set := os.LookupEnv(key); !set {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
