package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nuber-eats/nuber/config"
	"github.com/nuber-eats/nuber/database/seeders"
	"github.com/nuber-eats/nuber/pkg/database"
	"github.com/nuber-eats/nuber/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// nuber migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		n, err := migration.New(database.DB, os.Stdout).Run()
		if err != nil {
			return err
		}
		fmt.Printf("%d migration(s) applied.\n", n)
		return nil
	},
}

// nuber migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()

		n, err := migration.New(database.DB, os.Stdout).Rollback()
		if err != nil {
			return err
		}
		fmt.Printf("%d migration(s) rolled back.\n", n)
		return nil
	},
}

// nuber migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()
		return migration.New(database.DB, os.Stdout).Status()
	},
}

// nuber seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo accounts and a demo restaurant",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		defer database.Close()
		return seeders.RunAll(cmd.Context(), database.DB, os.Stdout)
	},
}
