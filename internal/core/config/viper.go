package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*EngineConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultEngineConfig
	v.SetDefault("engine.max_concurrent_sends", 8)
	v.SetDefault("engine.dedup_ttl", "5m")
	v.SetDefault("engine.max_send_attempts", 3)
	v.SetDefault("engine.initial_backoff", "1s")
	v.SetDefault("engine.attempt_timeout", "30s")
	v.SetDefault("engine.snapshot_refresh", "30s")
	v.SetDefault("smtp.server", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.from", "")

	// Bind environment variables with DN_ prefix
	v.SetEnvPrefix("DN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject secrets in config files
	// Secrets must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	smtpPassword, telegramToken := Secrets()

	cfg := &EngineConfig{
		MaxConcurrentSends: v.GetInt("engine.max_concurrent_sends"),
		DedupTTL:           v.GetDuration("engine.dedup_ttl"),
		MaxSendAttempts:    v.GetInt("engine.max_send_attempts"),
		InitialBackoff:     v.GetDuration("engine.initial_backoff"),
		AttemptTimeout:     v.GetDuration("engine.attempt_timeout"),
		SnapshotRefresh:    v.GetDuration("engine.snapshot_refresh"),
		SMTP: SMTPConfig{
			Server:   v.GetString("smtp.server"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			From:     v.GetString("smtp.from"),
			Password: smtpPassword,
		},
		Telegram: TelegramConfig{
			Token: telegramToken,
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.InConfig("smtp.password") {
		return fmt.Errorf("SMTP password not allowed in config files (use DN_SMTP_PASSWORD environment variable)")
	}
	if v.InConfig("telegram.token") {
		return fmt.Errorf("Telegram token not allowed in config files (use DN_TELEGRAM_TOKEN environment variable)")
	}
	return nil
}
