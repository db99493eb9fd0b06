// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/spf13/cobra"

	"github.com/autobrr/grabarr/internal/config"
	"github.com/autobrr/grabarr/internal/database"
)

func RunDBCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database operations",
	}

	cmd.AddCommand(runDBMigrateCommand(configPath))
	return cmd
}

func runDBMigrateCommand(configPath *string) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations offline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := dbPath
			if path == "" {
				cfg, err := config.New(*configPath)
				if err != nil {
					return err
				}
				path = cfg.GetDatabasePath()
			}

			// New applies any pending migrations on open.
			db, err := database.New(path)
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := db.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("Database: %s\n", path)
			cmd.Printf("Schema version: %d\n", version)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to the database file (defaults to the configured location)")

	return cmd
}
