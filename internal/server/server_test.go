package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/choirbook/internal/catalog"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
	"github.com/google/go-cmp/cmp"
)

type fakeCatalog struct {
	entries     []models.Entry
	categories  []models.Category
	err         error
	lastSearch  string
	lastSelect  string
	lastRole    models.Role
	invalidated int
}

func (f *fakeCatalog) ListEntries(ctx context.Context, search, selector string, role models.Role) (catalog.Result, error) {
	f.lastSearch, f.lastSelect, f.lastRole = search, selector, role
	if f.err != nil {
		return catalog.Result{}, f.err
	}
	return catalog.NewFilter(0).Apply(f.entries, catalog.Query{Search: search, AllCategories: true, Role: role}), nil
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Category{models.AllCategory("")}, f.categories...), nil
}

func (f *fakeCatalog) Entry(ctx context.Context, id string, role models.Role) (models.Entry, error) {
	if f.err != nil {
		return models.Entry{}, f.err
	}
	for _, e := range f.entries {
		if e.ID == id && (!role.IsGuest() || e.IsHymn()) {
			return e, nil
		}
	}
	return models.Entry{}, fmt.Errorf("%w: entry %s", shared.ErrNotFound, id)
}

func (f *fakeCatalog) Invalidate() { f.invalidated++ }

func newFakeCatalog() *fakeCatalog {
	number := 42
	return &fakeCatalog{
		entries: []models.Entry{
			{
				ID: "h42", Title: "Amazing Grace", Kind: models.KindHymn, Category: "traditional",
				NumberLabel: &number, Tags: []string{},
				Lyrics: models.HymnLyrics{
					English: models.Verses{Lines: []string{"Amazing grace"}, Valid: true},
				},
			},
			{
				ID: "s1", Title: "Victory", Kind: models.KindSong, Category: "seasonal", Tags: []string{"praise"},
				Lyrics: models.SongLyrics{Primary: []string{"V1", "V2"}, Versions: []string{"V1\n\nV2"}},
			},
		},
		categories: []models.Category{{ID: "seasonal", Name: "seasonal"}},
	}
}

func newTestRouter(c Catalog) *BasicRouter {
	return NewCatalogRouter(c, shared.ServerConfig{}, shared.NewLogger(nil))
}

func do(t *testing.T, h http.Handler, method, target, role string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if role != "" {
		req.Header.Set(RoleHeader, role)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var body T
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestCatalogHandler(t *testing.T) {
	t.Run("categories", func(t *testing.T) {
		rec := do(t, newTestRouter(newFakeCatalog()), http.MethodGet, "/api/categories", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		body := decode[map[string][]models.Category](t, rec)
		if len(body["categories"]) != 2 || body["categories"][0].ID != "all" {
			t.Errorf("unexpected categories %+v", body)
		}
	})

	t.Run("entries pass query and role through", func(t *testing.T) {
		fake := newFakeCatalog()
		rec := do(t, newTestRouter(fake), http.MethodGet, "/api/entries?q=victory&category=seasonal", "choir_member")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		if fake.lastSearch != "victory" || fake.lastSelect != "seasonal" || fake.lastRole != models.RoleChoirMember {
			t.Errorf("unexpected call %q %q %v", fake.lastSearch, fake.lastSelect, fake.lastRole)
		}

		body := decode[entriesBody](t, rec)
		if len(body.Entries) != 1 || body.Entries[0].ID != "s1" {
			t.Fatalf("unexpected entries %+v", body.Entries)
		}
		if diff := cmp.Diff([]string{"V1", "V2"}, body.Entries[0].Verses); diff != "" {
			t.Errorf("verses mismatch (-want +got):\n%s", diff)
		}
		if body.Entries[0].Kind != "song" {
			t.Errorf("expected kind song, got %q", body.Entries[0].Kind)
		}
	})

	t.Run("missing role header means unauthenticated", func(t *testing.T) {
		fake := newFakeCatalog()
		rec := do(t, newTestRouter(fake), http.MethodGet, "/api/entries", "")

		if fake.lastRole != models.RoleUnauthenticated {
			t.Errorf("expected unauthenticated role, got %v", fake.lastRole)
		}

		body := decode[entriesBody](t, rec)
		if !body.AwaitingQuery || body.Entries == nil || len(body.Entries) != 0 {
			t.Errorf("expected empty awaiting result, got %+v", body)
		}
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		rec := do(t, newTestRouter(newFakeCatalog()), http.MethodGet, "/api/entries", "pope")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("entry by id honors role", func(t *testing.T) {
		router := newTestRouter(newFakeCatalog())

		rec := do(t, router, http.MethodGet, "/api/entries/h42", "guest")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		view := decode[EntryView](t, rec)
		if view.Number == nil || *view.Number != 42 {
			t.Errorf("expected number 42, got %v", view.Number)
		}
		if view.Localized != nil {
			t.Errorf("expected absent localized verses, got %v", view.Localized)
		}

		rec = do(t, router, http.MethodGet, "/api/entries/s1", "guest")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for hidden song, got %d", rec.Code)
		}
	})

	t.Run("fetch failure is a bad gateway", func(t *testing.T) {
		fake := newFakeCatalog()
		fake.err = fmt.Errorf("%w: %w", shared.ErrFetchFailed, errors.New("connection refused"))

		rec := do(t, newTestRouter(fake), http.MethodGet, "/api/entries?q=x", "admin")
		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
		body := decode[errorBody](t, rec)
		if body.Error == "" {
			t.Error("expected error message")
		}
	})

	t.Run("invalidate requires a curator", func(t *testing.T) {
		fake := newFakeCatalog()
		router := newTestRouter(fake)

		rec := do(t, router, http.MethodPost, "/api/cache/invalidate", "choir_member")
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}

		rec = do(t, router, http.MethodPost, "/api/cache/invalidate", "admin")
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
		if fake.invalidated != 1 {
			t.Errorf("expected 1 invalidation, got %d", fake.invalidated)
		}
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := do(t, newTestRouter(newFakeCatalog()), http.MethodGet, "/api/cache/invalidate", "admin")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("health check", func(t *testing.T) {
		rec := do(t, newTestRouter(newFakeCatalog()), http.MethodGet, "/healthz", "")
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})
}

func TestRateLimit(t *testing.T) {
	router := NewCatalogRouter(newFakeCatalog(), shared.ServerConfig{RateLimit: 1, Burst: 2}, shared.NewLogger(nil))

	codes := []int{}
	for range 3 {
		codes = append(codes, do(t, router, http.MethodGet, "/api/categories", "").Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("status codes mismatch (-want +got):\n%s", diff)
	}
}

func TestRouterMiddlewareOrder(t *testing.T) {
	router := NewBasicRouter()
	var order []string

	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router.Use(mark("first"), mark("second"))
	router.Handle("get", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	do(t, router, http.MethodGet, "/ping", "")

	if diff := cmp.Diff([]string{"first", "second", "handler"}, order); diff != "" {
		t.Errorf("middleware order mismatch (-want +got):\n%s", diff)
	}
}

func TestBasicRouter(t *testing.T) {
	t.Run("unmatched routes pass through middleware", func(t *testing.T) {
		router := NewBasicRouter()
		calls := 0
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				next.ServeHTTP(w, r)
			})
		})
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := do(t, router, http.MethodGet, "/missing", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		rec = do(t, router, http.MethodPost, "/ping", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
		if calls != 2 {
			t.Errorf("expected middleware on both requests, got %d calls", calls)
		}
	})

	t.Run("routes are listed in registration order", func(t *testing.T) {
		router := newTestRouter(newFakeCatalog())
		want := []string{
			"GET /api/categories",
			"GET /api/entries",
			"GET /api/entries/{id}",
			"POST /api/cache/invalidate",
			"GET /healthz",
		}
		if diff := cmp.Diff(want, router.Routes()); diff != "" {
			t.Errorf("routes mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRoleContext(t *testing.T) {
	if got := RoleFromContext(context.Background()); got != models.RoleUnauthenticated {
		t.Errorf("expected unauthenticated default, got %v", got)
	}
	if got := RoleFromContext(WithRole(context.Background(), models.RoleAdmin)); got != models.RoleAdmin {
		t.Errorf("expected admin, got %v", got)
	}
}
