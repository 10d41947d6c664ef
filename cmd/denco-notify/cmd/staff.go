package cmd

import (
	"fmt"

	"github.com/aiba-2502/denco-notify/internal/core/db"
	"github.com/aiba-2502/denco-notify/internal/core/logging"
	"github.com/spf13/cobra"
)

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "List staff directory contacts",
	Long: `Prints every staff record with its per-channel contact fields. An empty
field means the staff member cannot receive notifications on that channel.`,
	RunE: runStaff,
}

func init() {
	rootCmd.AddCommand(staffCmd)
}

func runStaff(cmd *cobra.Command, args []string) error {
	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}
	store, err := db.NewStore(queries, logging.New(logLevel, logFormat))
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	records, err := store.ListStaff(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("%-36s  %-10s  %-28s  %-12s  %-14s  %s\n",
		"ID", "NAME", "EMAIL", "CHAT", "MESSAGING", "PHONE")
	for _, r := range records {
		fmt.Printf("%-36s  %-10s  %-28s  %-12s  %-14s  %s\n",
			r.ID, r.Name, r.Email, r.ChatID, r.MessagingID, r.Phone)
	}
	return nil
}
