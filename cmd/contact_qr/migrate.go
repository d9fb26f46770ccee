package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/contact-qr/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations for hosted cards",
	Long: `Creates or updates the hosted card tables in the database named by
DATABASE_URL (or database_url in the config).`,
	RunE: runMigrate,
}

var migrateList bool

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&migrateList, "list", false, "List migrations without applying them")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migrateList {
		names, err := db.MigrationNames()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	url := databaseURL(settings)
	if url == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	store, err := openStore(cmd.Context(), url, true)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Fprintln(cmd.ErrOrStderr(), "Migrations applied")
	return nil
}
