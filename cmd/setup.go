package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/choirbook/internal/shared"
	"github.com/desertthunder/choirbook/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SetupDatabase writes a config file when none exists and runs migrations.
//
// With --rollback it reverts the most recent migration instead.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("rollback") {
		return r.rollbackDatabase()
	}

	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	r.logger.Info("initializing database", "path", r.cfg().Database.Path)
	if _, err := r.database(); err != nil {
		return err
	}

	version, err := shared.SchemaVersion(r.db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.cfg().Database.Path)
	r.writePlain("✓ Database ready at schema version %04d\n", version)
	return nil
}

// rollbackDatabase reverts one migration without applying pending ones first.
func (r *Runner) rollbackDatabase() error {
	db := r.db
	if db == nil {
		var err error
		if db, err = shared.NewDatabase(r.cfg().Database.Path); err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
	}

	m, err := shared.RollbackMigration(db)
	if err != nil {
		return err
	}

	r.logger.Warn("migration rolled back", "version", m.Version, "name", m.Name)
	r.writePlain("✓ Rolled back migration %04d (%s)\n", m.Version, m.Name)
	return nil
}

// SetupSeed imports categories and entries from a seed file or the bundled sample.
func (r *Runner) SetupSeed(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	sample := cmd.Bool("sample")

	if path == "" && !sample {
		return fmt.Errorf("%w: either --file or --sample must be provided", shared.ErrMissingArgument)
	}
	if path != "" && sample {
		return fmt.Errorf("%w: cannot specify both --file and --sample", shared.ErrInvalidArgument)
	}

	seed := tasks.SampleSeed()
	if path != "" {
		var err error
		if seed, err = tasks.LoadSeed(path); err != nil {
			return err
		}
	}

	service, err := r.catalog()
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.SeedLoaded, tasks.InvalidateCache:
				r.writePlain("%s\n", update.Message)
			default:
				r.writePlain("  %s\n", update.Message)
			}
		}
	}()

	importer := tasks.NewImporter(r.db, service, r.logger)
	result, err := importer.Import(ctx, progressCh, seed)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete!")
	r.writePlain("Categories created: %d\n", result.CategoriesCreated)
	r.writePlain("Entries created: %d\n", result.EntriesCreated)
	r.writePlain("Versions created: %d\n", result.VersionsCreated)

	if len(result.Failed) > 0 {
		r.writePlain("\nSkipped %d entries:\n", len(result.Failed))
		for _, failure := range result.Failed {
			r.writePlain("  - %s: %v\n", failure.Title, failure.Err)
		}
	}

	return nil
}
