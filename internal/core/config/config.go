// Package config provides configuration management for denco-notify services.
package config

import (
	"fmt"
	"os"
	"time"
)

// EngineConfig holds the notification engine and host service configuration.
type EngineConfig struct {
	MaxConcurrentSends int
	DedupTTL           time.Duration
	MaxSendAttempts    int
	InitialBackoff     time.Duration
	AttemptTimeout     time.Duration
	SnapshotRefresh    time.Duration

	SMTP     SMTPConfig
	Telegram TelegramConfig
}

// SMTPConfig configures the email channel transport.
// Password comes from the environment only (DN_SMTP_PASSWORD), never from
// config files.
type SMTPConfig struct {
	Server   string
	Port     int
	Username string
	From     string
	Password string
}

// TelegramConfig configures the chat channel transport.
// Token comes from the environment only (DN_TELEGRAM_TOKEN).
type TelegramConfig struct {
	Token string
}

// DefaultEngineConfig returns configuration with default values.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		MaxConcurrentSends: 8,
		DedupTTL:           5 * time.Minute,
		MaxSendAttempts:    3,
		InitialBackoff:     time.Second,
		AttemptTimeout:     30 * time.Second,
		SnapshotRefresh:    30 * time.Second,
		SMTP: SMTPConfig{
			Port: 587,
		},
	}
}

// Secrets extracts channel transport secrets from environment variables.
// Environment-only per 12-factor principles; config files carrying secrets
// are rejected at load time.
func Secrets() (smtpPassword, telegramToken string) {
	return os.Getenv("DN_SMTP_PASSWORD"), os.Getenv("DN_TELEGRAM_TOKEN")
}

// validateConfig checks positive values for all engine limits.
func validateConfig(cfg *EngineConfig) error {
	if cfg.MaxConcurrentSends <= 0 {
		return fmt.Errorf("max_concurrent_sends must be positive, got %d", cfg.MaxConcurrentSends)
	}
	if cfg.DedupTTL <= 0 {
		return fmt.Errorf("dedup_ttl must be positive, got %v", cfg.DedupTTL)
	}
	if cfg.MaxSendAttempts <= 0 {
		return fmt.Errorf("max_send_attempts must be positive, got %d", cfg.MaxSendAttempts)
	}
	if cfg.InitialBackoff <= 0 {
		return fmt.Errorf("initial_backoff must be positive, got %v", cfg.InitialBackoff)
	}
	if cfg.AttemptTimeout <= 0 {
		return fmt.Errorf("attempt_timeout must be positive, got %v", cfg.AttemptTimeout)
	}
	if cfg.SnapshotRefresh <= 0 {
		return fmt.Errorf("snapshot_refresh must be positive, got %v", cfg.SnapshotRefresh)
	}
	if cfg.SMTP.Port <= 0 || cfg.SMTP.Port > 65535 {
		return fmt.Errorf("smtp port must be between 1 and 65535, got %d", cfg.SMTP.Port)
	}
	return nil
}
