package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/choirbook/internal/catalog"
	"github.com/desertthunder/choirbook/internal/formatter"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Lister is the part of the catalog service an export reads from.
type Lister interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListEntries(ctx context.Context, search, selector string, role models.Role) (catalog.Result, error)
}

// ExportOpts configures [Exporter.ExportCategories].
type ExportOpts struct {
	Format     formatter.Format // text, markdown or csv
	OutputDir  string           // created if missing
	Role       models.Role      // listings are filtered for this role
	NumWorkers int              // concurrent category exports (default: 4)
}

// CategoryExportResult is the outcome for one category.
type CategoryExportResult struct {
	Category models.Category
	File     string
	Entries  int
	Err      error
}

// ExportResult summarizes a category export.
type ExportResult struct {
	OutputDirectory string
	Results         []CategoryExportResult
	SuccessCount    int
	FailedCount     int
}

// Exporter writes catalog listings to files.
type Exporter struct {
	catalog Lister
	logger  *log.Logger
}

// NewExporter creates an Exporter reading from c.
func NewExporter(c Lister, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Exporter{catalog: c, logger: logger}
}

// ExportCategories writes one file per stored category, as seen by opts.Role.
//
// The synthetic "all" category is skipped. A failing category is recorded and the others continue;
// only listing the categories themselves or creating the output directory fails the whole export.
// Guest roles are rejected since they only see search results, never a whole category.
func (e *Exporter) ExportCategories(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if opts.Role.IsGuest() {
		return nil, fmt.Errorf("%w: %s cannot export categories", shared.ErrInvalidInput, opts.Role)
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatText
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	categories, err := e.catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	var targets []models.Category
	for _, c := range categories {
		if !c.IsAll() {
			targets = append(targets, c)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		OutputDirectory: opts.OutputDir,
		Results:         make([]CategoryExportResult, len(targets)),
	}

	var (
		mu   sync.Mutex
		done int
	)
	total := len(targets)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.NumWorkers)

	for i, category := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				result.Results[i] = CategoryExportResult{Category: category, Err: err}
				return nil
			}

			sendProgress(progress, exportingCategoryUpdate(i+1, total, category.Name))
			res := e.exportOne(gctx, category, opts)
			result.Results[i] = res

			mu.Lock()
			done++
			step := done
			mu.Unlock()

			if res.Err != nil {
				e.logger.Warn("category export failed", "category", category.Name, "error", res.Err)
				sendProgress(progress, exportFailedUpdate(step, total, category.Name, res.Err))
			} else {
				sendProgress(progress, exportCompletedUpdate(step, total, category.Name, res.Entries))
			}
			return nil
		})
	}

	g.Wait()

	for _, r := range result.Results {
		if r.Err != nil {
			result.FailedCount++
		} else {
			result.SuccessCount++
		}
	}

	return result, ctx.Err()
}

func (e *Exporter) exportOne(ctx context.Context, category models.Category, opts ExportOpts) CategoryExportResult {
	res := CategoryExportResult{Category: category}

	listing, err := e.catalog.ListEntries(ctx, "", category.ID, opts.Role)
	if err != nil {
		res.Err = err
		return res
	}

	export := &formatter.Export{Title: category.Name, Entries: listing.Entries, Truncated: listing.Truncated}
	res.File = filepath.Join(opts.OutputDir, slug(category.Name)+extension(opts.Format))
	res.Entries = len(listing.Entries)

	if err := formatter.WriteExport(export, opts.Format, res.File); err != nil {
		res.Err = err
	}
	return res
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(name string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "category"
	}
	return s
}

func extension(format formatter.Format) string {
	switch format {
	case formatter.FormatCSV:
		return ".csv"
	case formatter.FormatMarkdown:
		return ".md"
	default:
		return ".txt"
	}
}
