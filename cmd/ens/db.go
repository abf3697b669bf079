package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/ensemble/internal/config"
	"github.com/zulandar/ensemble/internal/db"
	"github.com/zulandar/ensemble/internal/ensemble"
	"github.com/zulandar/ensemble/internal/settings"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Ensemble database",
		Long:  "Creates the database (MySQL only), migrates all tables and seeds the default roster and welcome message.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(out, "Loaded config from %s\n", configPath)

	if cfg.Database.Driver == "mysql" {
		adminDB, err := db.ConnectAdmin(cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to MySQL at %s:%d: %w", cfg.Database.Host, cfg.Database.Port, err)
		}
		fmt.Fprintf(out, "Connected to MySQL at %s:%d\n", cfg.Database.Host, cfg.Database.Port)

		if err := db.CreateDatabase(adminDB, cfg.Database.Name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Database %s ready\n", cfg.Database.Name)
	}

	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	st, err := settings.New(settings.Opts{DB: gormDB})
	if err != nil {
		return err
	}
	store, err := ensemble.Open(cmd.Context(), ensemble.StoreOpts{Settings: st})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Roster has %d agents, history has %d messages\n", len(store.Agents()), len(store.Messages()))

	fmt.Fprintln(out, "\nEnsemble database initialized successfully.")
	return nil
}
