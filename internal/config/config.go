package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every tunable part of the application.
type Config struct {
	App     AppConfig
	Store   StoreConfig
	Log     LogConfig
	Auth    AuthConfig
	Ledger  LedgerConfig
	Receipt ReceiptConfig
	Backup  BackupConfig
}

// AppConfig contains settings related to the HTTP server.
type AppConfig struct {
	Port string
	Env  string
}

// StoreConfig locates the SQLite database file.
type StoreConfig struct {
	Path string
}

// LogConfig controls logger behavior.
type LogConfig struct {
	Level string
}

// AuthConfig controls the PIN session tokens.
type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
}

// LedgerConfig holds payment-policy switches.
type LedgerConfig struct {
	// AllowCancelled permits registering payments for cancelled members.
	// The desktop flow only warned the operator; the default here rejects.
	AllowCancelled bool
}

// ReceiptConfig locates generated receipt files.
type ReceiptConfig struct {
	OutputDir string
}

// BackupConfig locates database backup files.
type BackupConfig struct {
	Dir string
}

// Load reads environment variables and validates the final configuration.
func Load() (Config, error) {
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "12h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SESSION_TTL: %w", err)
	}

	allowCancelled, err := strconv.ParseBool(getEnv("ALLOW_CANCELLED_PAYMENTS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ALLOW_CANCELLED_PAYMENTS: %w", err)
	}

	cfg := Config{
		App: AppConfig{
			Port: getEnv("APP_PORT", "8080"),
			Env:  getEnv("APP_ENV", "dev"),
		},
		Store: StoreConfig{
			Path: getEnv("DB_PATH", "comite_agua.db"),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			SessionTTL: ttl,
		},
		Ledger: LedgerConfig{
			AllowCancelled: allowCancelled,
		},
		Receipt: ReceiptConfig{
			OutputDir: getEnv("RECEIPTS_DIR", "recibos"),
		},
		Backup: BackupConfig{
			Dir: getEnv("BACKUPS_DIR", "respaldos"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (cfg Config) validate() error {
	var missing []string

	if cfg.Store.Path == "" {
		missing = append(missing, "DB_PATH")
	}
	if cfg.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}
