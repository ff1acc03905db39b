package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/asakaida/datastore/internal/infrastructure/config"
	"github.com/asakaida/datastore/internal/infrastructure/database"
	"github.com/asakaida/datastore/internal/infrastructure/logger"
)

// app holds what the subcommands share once the root command has connected
type app struct {
	env    string
	db     *database.Database
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the data store database schema",
		Long: `Applies the embedded PostgreSQL or SQLite migrations with golang-migrate.
The database is selected by the .env.{env} file and DB_* environment variables.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.connect,
		PersistentPostRunE: a.close,
	}
	root.PersistentFlags().StringVarP(&a.env, "env", "e", "dev", "environment whose .env file is loaded (dev, test, prod)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE:  a.up,
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1, 0 rolls back everything)",
			Args:  cobra.MaximumNArgs(1),
			RunE:  a.down,
		},
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate up or down to the given version",
			Args:  cobra.ExactArgs(1),
			RunE:  a.gotoVersion,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied migration version",
			Args:  cobra.NoArgs,
			RunE:  a.version,
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Record a version without running migrations, clearing the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE:  a.force,
		},
	)
	return root
}

func (a *app) connect(cmd *cobra.Command, _ []string) error {
	if err := config.InitConfig(a.env); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if a.logger, err = logger.New(&cfg.Log); err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	if a.db, err = database.Open(&cfg.Database); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	fields := []zap.Field{zap.String("env", a.env), zap.String("driver", cfg.Database.Driver)}
	if cfg.Database.Driver == "sqlite" {
		fields = append(fields, zap.String("path", cfg.Database.Path))
	} else {
		fields = append(fields,
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Database))
	}
	a.logger.Info("connected to database", fields...)
	return nil
}

func (a *app) close(*cobra.Command, []string) error {
	defer func() { _ = a.logger.Sync() }()
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func (a *app) up(*cobra.Command, []string) error {
	before, _, err := a.db.MigrationVersion()
	if err != nil {
		return err
	}
	if err := a.db.RunMigrations(); err != nil {
		return err
	}
	after, _, err := a.db.MigrationVersion()
	if err != nil {
		return err
	}

	if before == after {
		a.logger.Info("no migrations to apply", zap.Uint("version", after))
		return nil
	}
	a.logger.Info("migrated up", zap.Uint("from", before), zap.Uint("to", after))
	return nil
}

func (a *app) down(_ *cobra.Command, args []string) error {
	steps := 1
	if len(args) == 1 {
		n, err := parseVersion(args[0])
		if err != nil {
			return err
		}
		steps = n
	}

	if err := a.db.RollbackMigrations(steps); err != nil {
		return err
	}
	a.logger.Info("migrated down", zap.Int("steps", steps))
	return nil
}

func (a *app) gotoVersion(_ *cobra.Command, args []string) error {
	v, err := parseVersion(args[0])
	if err != nil {
		return err
	}
	if err := a.db.MigrateTo(uint(v)); err != nil {
		return err
	}
	a.logger.Info("migrated to version", zap.Int("version", v))
	return nil
}

func (a *app) version(cmd *cobra.Command, _ []string) error {
	v, dirty, err := a.db.MigrationVersion()
	if err != nil {
		return err
	}

	switch {
	case v == 0:
		fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
	case dirty:
		fmt.Fprintf(cmd.OutOrStdout(), "%d (dirty)\n", v)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", v)
	}
	return nil
}

func (a *app) force(_ *cobra.Command, args []string) error {
	v, err := parseVersion(args[0])
	if err != nil {
		return err
	}
	if err := a.db.ForceVersion(v); err != nil {
		return err
	}
	a.logger.Warn("forced migration version", zap.Int("version", v))
	return nil
}

func parseVersion(arg string) (int, error) {
	v, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", arg, err)
	}
	if v < 0 {
		return 0, errors.New("version must not be negative")
	}
	return v, nil
}
