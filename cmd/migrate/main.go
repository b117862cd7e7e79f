package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/liamcoop/drills/internal/config"
	"github.com/liamcoop/drills/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	databaseURL    string
	migrationsPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or inspect the drills database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.databaseURL, "database", "", "Database URL (default $DATABASE_URL)")
	root.PersistentFlags().StringVar(&opts.migrationsPath, "path", "", "Path to migrations directory (default $MIGRATIONS_PATH or migrations)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.with(runUp)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.with(runDown)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.with(func(m *migrate.Migrate) error {
					version, dirty, err := m.Version()
					if err != nil {
						return fmt.Errorf("failed to get version: %w", err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", version, dirty)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the migration version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := parseVersion(args[0])
				if err != nil {
					return err
				}
				return opts.with(func(m *migrate.Migrate) error {
					if err := m.Force(version); err != nil {
						return fmt.Errorf("failed to force version: %w", err)
					}
					logger.Info("forced migration version", "version", version)
					return nil
				})
			},
		},
	)

	return root
}

// resolve fills unset flags from the environment and checks that a database
// is known.
func (o *options) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Setup(cmd.Context(), logger.Options{Level: cfg.LogLevel}); err != nil {
		return err
	}

	if o.databaseURL == "" {
		o.databaseURL = cfg.DatabaseURL
	}
	if o.migrationsPath == "" {
		o.migrationsPath = cfg.MigrationsPath
	}
	if o.databaseURL == "" {
		return errors.New("database URL is required, use --database or DATABASE_URL")
	}
	return nil
}

func (o *options) with(fn func(*migrate.Migrate) error) error {
	logger.Info("connecting to database", "migrations", o.migrationsPath)

	m, err := migrate.New("file://"+o.migrationsPath, o.databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	return fn(m)
}

func runUp(m *migrate.Migrate) error {
	err := m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run, database is up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("migrations completed")
	return nil
}

func runDown(m *migrate.Migrate) error {
	err := m.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	logger.Info("rollback completed")
	return nil
}

func parseVersion(s string) (int, error) {
	version, err := strconv.Atoi(s)
	if err != nil || version < -1 {
		return 0, fmt.Errorf("invalid version number %q", s)
	}
	return version, nil
}
