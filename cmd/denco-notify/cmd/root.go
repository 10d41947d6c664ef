package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "denco-notify",
	Short: "denco-notify telephony notification rule engine",
	Long:  `denco-notify matches inbound calls and faxes against configured notification rules and fans matched rules out to email, chat, messaging and voice channels.`,
}

func init() {
	// Local development convenience; a missing .env file is not an error.
	cobra.OnInitialize(func() { _ = godotenv.Load() })

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
}

func Execute() error {
	return rootCmd.Execute()
}
