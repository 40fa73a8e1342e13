// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/choirbook/internal/catalog"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
)

// MockCatalog is an in-memory test double for [catalog.Service].
type MockCatalog struct {
	mu          sync.Mutex
	Entries     []models.Entry
	Categories  []models.Category
	Err         error
	Queries     []catalog.Query
	Invalidated int
}

// NewMockCatalog returns a catalog with one hymn, one song and one category.
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Entries: []models.Entry{
			{
				ID: "h42", Title: "Amazing Grace", Kind: models.KindHymn, Category: "traditional",
				Author: "John Newton", NumberLabel: intPtr(42), Tags: []string{},
				Lyrics: models.HymnLyrics{
					English: models.Verses{Lines: []string{"Amazing grace how sweet the sound"}, Valid: true},
				},
			},
			{
				ID: "s1", Title: "Victory", Kind: models.KindSong, Category: "traditional",
				Tags:   []string{"praise"},
				Lyrics: models.SongLyrics{Primary: []string{"We have the victory"}, Versions: []string{"We have the victory"}},
			},
		},
		Categories: []models.Category{{ID: "traditional", Name: "Traditional"}},
	}
}

func (m *MockCatalog) ListEntries(ctx context.Context, search, selector string, role models.Role) (catalog.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := catalog.Query{Search: search, CategoryName: selector, AllCategories: selector == "" || selector == models.AllCategoryID, Role: role}
	m.Queries = append(m.Queries, q)
	if m.Err != nil {
		return catalog.Result{}, m.Err
	}
	return catalog.NewFilter(catalog.DefaultPreviewLimit).Apply(m.Entries, q), nil
}

func (m *MockCatalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Category{models.AllCategory("")}, m.Categories...), nil
}

func (m *MockCatalog) Entry(ctx context.Context, id string, role models.Role) (models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return models.Entry{}, m.Err
	}
	for _, e := range m.Entries {
		if e.ID == id && (!role.IsGuest() || e.IsHymn()) {
			return e, nil
		}
	}
	return models.Entry{}, fmt.Errorf("%w: entry %s", shared.ErrNotFound, id)
}

func (m *MockCatalog) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invalidated++
}

// LastQuery returns the most recent listing request.
func (m *MockCatalog) LastQuery() (catalog.Query, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Queries) == 0 {
		return catalog.Query{}, false
	}
	return m.Queries[len(m.Queries)-1], true
}

func intPtr(n int) *int { return &n }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
