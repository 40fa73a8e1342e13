package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/choirbook/internal/catalog"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/repositories"
	"github.com/desertthunder/choirbook/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and catalog service are opened on first use so that commands which never touch the
// catalog (e.g. help) do not create a database file.
type Runner struct {
	config  *shared.Config
	logger  *log.Logger
	output  io.Writer
	db      *sql.DB
	service *catalog.Service
	curator *catalog.Curator
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config // loaded from --config when nil
	DB     *sql.DB        // opened from Config.Database when nil
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		db:     opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, entriesCommand, categoriesCommand, adminCommand, serveCommand, browseCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app builds the root command. Each call returns a fresh command tree sharing r.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "choirbook",
		Usage:   "Browse and curate a songs and hymns catalog",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

// before resolves configuration and applies the log level.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil {
		config, err := shared.LoadOrDefault(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))
	return ctx, nil
}

// SetLogger replaces the logger, e.g. to keep log lines out of the TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) cfg() *shared.Config {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	return r.config
}

func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenCatalogDatabase(r.cfg().Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	return db, nil
}

// catalog returns the catalog service, wiring it to the database on first use.
func (r *Runner) catalog() (*catalog.Service, error) {
	if r.service != nil {
		return r.service, nil
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}

	cfg := r.cfg().Catalog
	adapter := repositories.NewCatalogAdapter(db, r.logger, cfg.FallbackCategory)
	r.service = catalog.NewService(adapter, catalog.Options{
		PreviewLimit: cfg.PreviewLimit,
		AllLabel:     cfg.AllLabel,
		Logger:       r.logger,
	})
	return r.service, nil
}

func (r *Runner) curation() (*catalog.Curator, error) {
	if r.curator != nil {
		return r.curator, nil
	}

	service, err := r.catalog()
	if err != nil {
		return nil, err
	}
	r.curator = catalog.NewCurator(r.db, service, r.logger)
	return r.curator, nil
}

// Close releases the database when the runner opened one.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// role reads the --role flag. An empty value is an anonymous reader.
func (r *Runner) role(cmd *cli.Command) (models.Role, error) {
	role, err := models.ParseRole(cmd.String("role"))
	if err != nil {
		return role, fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}
	return role, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
