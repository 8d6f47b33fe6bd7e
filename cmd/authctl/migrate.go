package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ErlanBelekov/auth-service/internal/infrastructure/postgres"
)

// migrator is the part of *postgres.Migrator the subcommands drive.
type migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Close() error
}

// newMigrator is swapped in tests.
var newMigrator = func(databaseURL string) (migrator, error) {
	return postgres.NewMigrator(databaseURL)
}

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(cmd, m)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops the users table)",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m migrator) error {
			if err := m.Down(); err != nil {
				return err
			}
			return printVersion(cmd, m)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE:  withMigrator(printVersion),
	})

	return cmd
}

func withMigrator(run func(cmd *cobra.Command, m migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		m, err := newMigrator(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				cmd.PrintErrln("close migrator:", err)
			}
		}()

		return run(cmd, m)
	}
}

func printVersion(cmd *cobra.Command, m migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("schema version %d (dirty)\n", version)
		return fmt.Errorf("schema version %d is dirty", version)
	}
	cmd.Printf("schema version %d\n", version)
	return nil
}
