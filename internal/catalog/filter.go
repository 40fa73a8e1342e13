package catalog

import (
	"strings"

	"github.com/desertthunder/choirbook/internal/models"
)

// DefaultPreviewLimit is the number of entries shown on the unfiltered "all" view.
const DefaultPreviewLimit = 2

// Query is one filter request.
type Query struct {
	Search        string
	CategoryName  string // resolved category name, ignored when AllCategories is set
	AllCategories bool
	Role          models.Role
}

// Result is the ordered list a reader should see.
//
// Truncated is set when the default preview limit cut the list short. AwaitingQuery is set for
// guests who have not searched yet; their result is always empty.
type Result struct {
	Entries       []models.Entry `json:"entries"`
	Truncated     bool           `json:"truncated"`
	AwaitingQuery bool           `json:"awaiting_query"`
}

// Filter applies category, search, role visibility and preview truncation, in that order.
type Filter struct {
	PreviewLimit int
}

// NewFilter returns a Filter. A non-positive limit uses [DefaultPreviewLimit].
func NewFilter(previewLimit int) Filter {
	if previewLimit <= 0 {
		previewLimit = DefaultPreviewLimit
	}
	return Filter{PreviewLimit: previewLimit}
}

// Apply filters entries for q. The input slice is not modified.
func (f Filter) Apply(entries []models.Entry, q Query) Result {
	search := strings.TrimSpace(q.Search)
	guest := q.Role.IsGuest()

	if guest && search == "" {
		return Result{Entries: []models.Entry{}, AwaitingQuery: true}
	}

	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if !q.AllCategories && !strings.EqualFold(e.Category, q.CategoryName) {
			continue
		}
		if search != "" && !matches(e, search, guest) {
			continue
		}
		if guest && e.Kind != models.KindHymn {
			continue
		}
		out = append(out, e)
	}

	limit := f.PreviewLimit
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}

	result := Result{Entries: out}
	if q.AllCategories && search == "" && !guest && len(out) > limit {
		result.Entries = out[:limit:limit]
		result.Truncated = true
	}
	return result
}

// matches reports whether e satisfies the trimmed, non-empty search term.
//
// Guests may only find hymns, by exact number or by English verse text. Numbers are compared
// as decimal strings, so "007" does not match 7.
func matches(e models.Entry, search string, guest bool) bool {
	if search == e.Number() {
		return true
	}

	needle := strings.ToLower(search)
	contains := func(s string) bool {
		return s != "" && strings.Contains(strings.ToLower(s), needle)
	}

	switch l := e.Lyrics.(type) {
	case models.HymnLyrics:
		if contains(l.English.Text()) {
			return true
		}
		if guest {
			return false
		}
		if contains(l.Localized.Text()) {
			return true
		}
	case models.SongLyrics:
		if guest {
			return false
		}
		for _, blob := range l.Versions {
			if contains(blob) {
				return true
			}
		}
	default:
		if guest {
			return false
		}
	}

	return contains(e.Title) || contains(e.Author) || contains(e.Composer)
}
