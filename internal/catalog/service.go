package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
)

// Source provides normalized catalog data. [repositories.CatalogAdapter] is the production Source.
type Source interface {
	FetchActive(ctx context.Context) ([]models.Entry, error)
	FetchCategories(ctx context.Context) ([]models.Category, error)
}

// Options configures a [Service].
type Options struct {
	PreviewLimit int
	AllLabel     string
	Logger       *log.Logger
}

// Service answers catalog listings for a requester role.
type Service struct {
	source   Source
	filter   Filter
	cache    *Cache
	allLabel string
	logger   *log.Logger
}

// NewService creates a Service reading from source.
func NewService(source Source, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Service{
		source:   source,
		filter:   NewFilter(opts.PreviewLimit),
		cache:    NewCache(logger),
		allLabel: opts.AllLabel,
		logger:   logger,
	}
}

// ListEntries returns the entries role may see for search within the selected category.
//
// The selector is a category id or name, or "all". Results are memoized per (search, selector, role)
// until [Service.Invalidate]. Store failures wrap [shared.ErrFetchFailed].
//
// Coalesced callers share one fetch, which is not cancelled when the caller that started it goes away.
func (s *Service) ListEntries(ctx context.Context, search, selector string, role models.Role) (Result, error) {
	key := Key{
		Search:   strings.TrimSpace(search),
		Selector: strings.ToLower(strings.TrimSpace(selector)),
		Role:     role,
	}
	ctx = context.WithoutCancel(ctx)

	result, err := s.cache.Result(key, func() (Result, error) {
		query := Query{Search: key.Search, Role: role}

		if isAllSelector(key.Selector) {
			query.AllCategories = true
		} else {
			name, err := s.resolveCategory(ctx, selector)
			if err != nil {
				return Result{}, err
			}
			query.CategoryName = name
		}

		entries, err := s.entries(ctx)
		if err != nil {
			return Result{}, err
		}

		return s.filter.Apply(entries, query), nil
	})
	if err != nil {
		return Result{}, err
	}

	result.Entries = append(make([]models.Entry, 0, len(result.Entries)), result.Entries...)
	return result, nil
}

// ListCategories returns the synthetic "all" category followed by the stored categories by name.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx = context.WithoutCancel(ctx)
	categories, err := s.cache.Categories(func() ([]models.Category, error) {
		stored, err := s.source.FetchCategories(ctx)
		if err != nil {
			return nil, wrapFetch(err)
		}

		listing := make([]models.Category, 0, len(stored)+1)
		listing = append(listing, models.AllCategory(s.allLabel))
		return append(listing, stored...), nil
	})
	if err != nil {
		return nil, err
	}

	return append([]models.Category(nil), categories...), nil
}

// Entry returns a single entry by id if role may see it. Entries hidden from role are reported as not found.
func (s *Service) Entry(ctx context.Context, id string, role models.Role) (models.Entry, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return models.Entry{}, err
	}

	for _, e := range entries {
		if e.ID != id {
			continue
		}
		if role.IsGuest() && e.Kind != models.KindHymn {
			break
		}
		return e, nil
	}

	return models.Entry{}, fmt.Errorf("%w: entry %s", shared.ErrNotFound, id)
}

// Invalidate discards every memoized listing so the next call refetches.
func (s *Service) Invalidate() {
	s.cache.Invalidate()
}

func (s *Service) entries(ctx context.Context) ([]models.Entry, error) {
	ctx = context.WithoutCancel(ctx)
	return s.cache.Entries(func() ([]models.Entry, error) {
		entries, err := s.source.FetchActive(ctx)
		if err != nil {
			return nil, wrapFetch(err)
		}
		return entries, nil
	})
}

// resolveCategory maps a selector to a category name by listed id or name. Unknown selectors are used as names.
func (s *Service) resolveCategory(ctx context.Context, selector string) (string, error) {
	selector = strings.TrimSpace(selector)

	categories, err := s.ListCategories(ctx)
	if err != nil {
		return "", err
	}

	for _, c := range categories {
		if c.IsAll() {
			continue
		}
		if strings.EqualFold(c.ID, selector) || strings.EqualFold(c.Name, selector) {
			return c.Name, nil
		}
	}
	return selector, nil
}

func isAllSelector(selector string) bool {
	return selector == "" || strings.EqualFold(selector, models.AllCategoryID)
}

// wrapFetch marks store failures. Context errors are passed through unchanged.
func wrapFetch(err error) error {
	if errors.Is(err, shared.ErrFetchFailed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", shared.ErrFetchFailed, err)
}
