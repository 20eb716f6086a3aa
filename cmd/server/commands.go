package main

import (
	"fmt"
	"io"

	"github.com/phrazzld/taskhub-api/internal/config"
	"github.com/phrazzld/taskhub-api/internal/platform/database"
	"github.com/spf13/cobra"
)

// rootCommand carries the persistent flags shared by every subcommand.
type rootCommand struct {
	cmd        *cobra.Command
	profile    string
	configFile string
}

func newRootCommand() *cobra.Command {
	root := &rootCommand{}

	root.cmd = &cobra.Command{
		Use:   "taskhub",
		Short: "REST API for clients and their tasks",
		Long: `taskhub serves CRUD endpoints for clients and tasks over a PostgreSQL or
SQLite datastore.

PROFILES:
  dev         local PostgreSQL, text logs at debug level (default)
  dev-remote  remote PostgreSQL, database.url must be supplied
  prod        JSON logs at warn level, also written to ../logs/taskhub.log
  test        in-memory SQLite, migrated on start

CONFIGURATION:
  Profile defaults < config.yaml < config.<profile>.yaml < TASKHUB_* environment
  variables, e.g. TASKHUB_DATABASE_URL overrides database.url.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runServe(cmd)
		},
	}

	flags := root.cmd.PersistentFlags()
	flags.StringVar(&root.profile, "profile", "", "configuration profile (overrides "+config.ProfileEnvVar+")")
	flags.StringVar(&root.configFile, "config", "", "explicit YAML configuration file")

	root.cmd.AddCommand(root.serveCommand(), root.migrateCommand())
	return root.cmd
}

func (r *rootCommand) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		Profile:    r.profile,
		ConfigFile: r.configFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func (r *rootCommand) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runServe(cmd)
		},
	}
}

func (r *rootCommand) runServe(cmd *cobra.Command) error {
	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}

	app, err := newApplication(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return app.Run(cmd.Context())
}

func (r *rootCommand) migrateCommand() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return r.withDatabase(cmd, func(app *application) error {
					return app.db.MigrateUp(cmd.Context(), app.logger)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return r.withDatabase(cmd, func(app *application) error {
					return app.db.MigrateDown(cmd.Context(), app.logger)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return r.withDatabase(cmd, func(app *application) error {
					statuses, err := app.db.MigrationStatus(cmd.Context())
					if err != nil {
						return err
					}
					printMigrationStatus(cmd.OutOrStdout(), statuses)
					return nil
				})
			},
		},
	)
	return migrate
}

// withDatabase runs fn against an application whose database is open but
// not auto-migrated.
func (r *rootCommand) withDatabase(cmd *cobra.Command, fn func(app *application) error) error {
	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}
	cfg.Database.AutoMigrate = false

	app, err := newApplication(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.cleanup()

	return fn(app)
}

func printMigrationStatus(w io.Writer, statuses []database.MigrationStatus) {
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		_, _ = fmt.Fprintf(w, "%-8s %05d %s\n", state, s.Version, s.Source)
	}
}
