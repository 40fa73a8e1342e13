package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/choirbook/internal/formatter"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/server"
	"github.com/desertthunder/choirbook/internal/shared"
	"github.com/desertthunder/choirbook/internal/tasks"
	"github.com/urfave/cli/v3"
)

// EntriesList prints the entries visible to --role for the selected category and query.
func (r *Runner) EntriesList(ctx context.Context, cmd *cli.Command) error {
	role, err := r.role(cmd)
	if err != nil {
		return err
	}

	service, err := r.catalog()
	if err != nil {
		return err
	}

	search := cmd.String("query")
	selector := cmd.String("category")
	result, err := service.ListEntries(ctx, search, selector, role)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]server.EntryView, len(result.Entries))
		for i, e := range result.Entries {
			views[i] = server.NewEntryView(e)
		}
		return r.writeJSON(map[string]any{
			"entries":        views,
			"truncated":      result.Truncated,
			"awaiting_query": result.AwaitingQuery,
		}, cmd.Bool("pretty"))
	}

	if result.AwaitingQuery {
		r.writePlain("Search for a hymn by number or English lyrics with --query.\n")
		return nil
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}

	export := &formatter.Export{
		Title:     listingTitle(selector, search),
		Entries:   result.Entries,
		Truncated: result.Truncated,
	}

	if output := cmd.String("output"); output != "" {
		if err := formatter.WriteExport(export, format, output); err != nil {
			return err
		}
		r.logger.Info("listing written", "path", output, "entries", len(result.Entries))
		return nil
	}

	data, err := formatter.Render(export, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// EntriesShow prints one entry with its verses.
func (r *Runner) EntriesShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: entry id is required", shared.ErrMissingArgument)
	}

	role, err := r.role(cmd)
	if err != nil {
		return err
	}

	service, err := r.catalog()
	if err != nil {
		return err
	}

	entry, err := service.Entry(ctx, id, role)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(server.NewEntryView(entry), cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.EntryToText(entry))
}

// EntriesExport writes one file per category, filtered for --role.
func (r *Runner) EntriesExport(ctx context.Context, cmd *cli.Command) error {
	role, err := r.role(cmd)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
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
			r.writePlain("%s\n", update.Message)
		}
	}()

	exporter := tasks.NewExporter(service, r.logger)
	result, err := exporter.ExportCategories(ctx, progressCh, tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		Role:       role,
		NumWorkers: int(cmd.Int("workers")),
	})
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d, failed: %d\n", result.SuccessCount, result.FailedCount)
	return nil
}

// CategoriesList prints the selectable categories, "all" first.
func (r *Runner) CategoriesList(ctx context.Context, cmd *cli.Command) error {
	service, err := r.catalog()
	if err != nil {
		return err
	}

	categories, err := service.ListCategories(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"categories": categories}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Categories (%d)", len(categories)))
	for _, c := range categories {
		if c.Description != "" {
			r.writePlain("%-20s %s\n", c.ID, c.Description)
		} else {
			r.writePlain("%s\n", c.ID)
		}
	}
	return nil
}

func listingTitle(selector, search string) string {
	title := "All entries"
	if s := strings.TrimSpace(selector); s != "" && !strings.EqualFold(s, models.AllCategoryID) {
		title = s
	}
	if s := strings.TrimSpace(search); s != "" {
		title = fmt.Sprintf("%s matching %q", title, s)
	}
	return title
}
