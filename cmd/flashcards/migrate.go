package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/flashcards/internal/bootstrap"
	"github.com/at-ishikawa/flashcards/internal/config"
	"github.com/at-ishikawa/flashcards/internal/database"
	"github.com/at-ishikawa/flashcards/internal/datasync"
	"github.com/at-ishikawa/flashcards/internal/store"
)

// DriverFlag is a storage driver name given on the command line.
type DriverFlag string

// Set implements pflag.Value.
func (d *DriverFlag) Set(v string) error {
	switch v {
	case config.DriverYAML, config.DriverBolt, config.DriverMySQL, config.DriverSQLite:
		*d = DriverFlag(v)
	default:
		return fmt.Errorf("invalid value %q, valid values are %q, %q, %q or %q",
			v, config.DriverYAML, config.DriverBolt, config.DriverMySQL, config.DriverSQLite)
	}
	return nil
}

// String implements pflag.Value.
func (d *DriverFlag) String() string {
	if d == nil {
		return ""
	}
	return string(*d)
}

// Type implements pflag.Value.
func (d *DriverFlag) Type() string {
	return "DriverFlag"
}

var (
	_ pflag.Value = (*DriverFlag)(nil)
)

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migration commands",
	}

	migrateCmd.AddCommand(newMigrateSchemaCommand())
	migrateCmd.AddCommand(newMigrateImportCommand())

	return migrateCmd
}

func newMigrateSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Apply database migrations for the mysql and sqlite drivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			switch cfg.Storage.Driver {
			case config.DriverMySQL, config.DriverSQLite:
			default:
				return fmt.Errorf("storage driver %s has no migrations", cfg.Storage.Driver)
			}
			if err := database.Migrate(cfg.Storage.Driver, cfg.Database); err != nil {
				return fmt.Errorf("database.Migrate() > %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}

func newMigrateImportCommand() *cobra.Command {
	from := DriverFlag(config.DriverYAML)
	var dryRun bool
	var updateExisting bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy decks and cards from another storage driver into the configured one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if string(from) == cfg.Storage.Driver {
				return fmt.Errorf("source and destination are both %s", from)
			}
			sourceCfg := *cfg
			sourceCfg.Storage.Driver = string(from)

			app := bootstrap.New()
			return app.Run(cmd.Context(), func(ctx context.Context) error {
				source, err := store.Open(&sourceCfg, slog.Default())
				if err != nil {
					return fmt.Errorf("open %s store: %w", from, err)
				}
				app.AddCloser("source store", source)
				dest, err := openStore(app, cfg)
				if err != nil {
					return err
				}

				data, err := datasync.NewExporter(source).Export(ctx)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}

				out := cmd.OutOrStdout()
				opts := datasync.ImportOptions{
					DryRun:         dryRun,
					UpdateExisting: updateExisting,
				}
				result, err := datasync.NewImporter(dest, out).Import(ctx, data, opts)
				if err != nil {
					return fmt.Errorf("import: %w", err)
				}

				_, _ = fmt.Fprintln(out, "\nImport Summary:")
				if opts.DryRun {
					_, _ = fmt.Fprintln(out, "  (dry-run mode, no changes made)")
				}
				_, _ = fmt.Fprintf(out, "  Decks:  %d new, %d skipped, %d updated\n", result.DecksNew, result.DecksSkipped, result.DecksUpdated)
				_, _ = fmt.Fprintf(out, "  Cards:  %d new, %d skipped, %d updated, %d without a deck\n",
					result.CardsNew, result.CardsSkipped, result.CardsUpdated, result.CardsOrphaned)
				return nil
			})
		},
	}

	cmd.Flags().Var(&from, "from", "source storage driver. Options: yaml, bolt, mysql, sqlite")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without modifying the destination")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Overwrite records that already exist in the destination")
	return cmd
}
