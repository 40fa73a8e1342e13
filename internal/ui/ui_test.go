package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/choirbook/internal/catalog"
	"github.com/desertthunder/choirbook/internal/models"
	tu "github.com/desertthunder/choirbook/internal/testing"
)

func newTestModel(t *testing.T, role models.Role) (*Model, *tu.MockCatalog) {
	t.Helper()
	mock := tu.NewMockCatalog()
	m := NewModel(context.Background(), mock, role, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, mock
}

// run executes cmd synchronously and feeds the resulting message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	m.Update(cmd())
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel(t *testing.T) {
	t.Run("loads categories and the preview listing", func(t *testing.T) {
		m, _ := newTestModel(t, models.RoleChoirMember)
		run(t, m, m.loadCategories())
		run(t, m, m.query())

		if len(m.categories) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(m.categories))
		}
		if got := len(m.entries.Items()); got != 2 {
			t.Errorf("expected 2 entries, got %d", got)
		}
		if m.loading {
			t.Error("expected loading to be cleared")
		}
	})

	t.Run("guests are asked for a query", func(t *testing.T) {
		m, _ := newTestModel(t, models.RoleGuest)
		run(t, m, m.query())

		if !m.result.AwaitingQuery {
			t.Fatal("expected AwaitingQuery for a blank guest search")
		}
		if !strings.Contains(m.View(), "Search for a hymn") {
			t.Error("expected the search prompt in the view")
		}
	})

	t.Run("search runs on enter", func(t *testing.T) {
		m, mock := newTestModel(t, models.RoleGuest)
		m.Update(keyRunes("/"))
		for _, r := range "42" {
			m.Update(keyRunes(string(r)))
		}
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		run(t, m, cmd)

		q, ok := mock.LastQuery()
		if !ok || q.Search != "42" {
			t.Fatalf("expected search 42, got %+v", q)
		}
		if len(m.result.Entries) != 1 || m.result.Entries[0].ID != "h42" {
			t.Errorf("expected hymn 42, got %+v", m.result.Entries)
		}
		if m.search.Focused() {
			t.Error("expected search to blur after enter")
		}
	})

	t.Run("tab cycles categories", func(t *testing.T) {
		m, mock := newTestModel(t, models.RoleAdmin)
		run(t, m, m.loadCategories())

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		run(t, m, cmd)
		if q, _ := mock.LastQuery(); q.CategoryName != "traditional" {
			t.Errorf("expected traditional selector, got %q", q.CategoryName)
		}

		_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
		run(t, m, cmd)
		if q, _ := mock.LastQuery(); !q.AllCategories {
			t.Error("expected wrap back to all")
		}
	})

	t.Run("stale responses are dropped", func(t *testing.T) {
		m, _ := newTestModel(t, models.RoleAdmin)
		stale := m.query()
		fresh := m.query()

		run(t, m, fresh)
		m.result = catalog.Result{}

		m.Update(stale())
		if m.result.Entries != nil {
			t.Error("expected stale response to be ignored")
		}
	})

	t.Run("enter opens the detail view and esc returns", func(t *testing.T) {
		m, _ := newTestModel(t, models.RoleChoirMember)
		run(t, m, m.query())

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != DetailView || m.selected == nil {
			t.Fatal("expected detail view")
		}
		if !strings.Contains(m.View(), m.selected.Title) {
			t.Error("expected title in detail view")
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != EntryListView {
			t.Error("expected list view after esc")
		}
	})

	t.Run("refresh invalidates the catalog", func(t *testing.T) {
		m, mock := newTestModel(t, models.RoleAdmin)
		_, cmd := m.Update(keyRunes("r"))
		if cmd == nil {
			t.Fatal("expected reload command")
		}
		if mock.Invalidated != 1 {
			t.Errorf("expected 1 invalidation, got %d", mock.Invalidated)
		}
	})

	t.Run("fetch errors are shown", func(t *testing.T) {
		m, mock := newTestModel(t, models.RoleAdmin)
		mock.Err = errors.New("database unavailable")
		run(t, m, m.query())

		if m.err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(m.View(), "database unavailable") {
			t.Error("expected error in view")
		}
	})

	t.Run("q quits from the list", func(t *testing.T) {
		m, _ := newTestModel(t, models.RoleAdmin)
		_, cmd := m.Update(keyRunes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestEntryItem(t *testing.T) {
	entry := tu.NewMockCatalog().Entries[0]
	item := entryItem{entry: entry}

	if got := item.Title(); got != "#42 Amazing Grace" {
		t.Errorf("Title() = %q", got)
	}
	if got := item.Description(); !strings.Contains(got, "1 verses") || !strings.Contains(got, "John Newton") {
		t.Errorf("Description() = %q", got)
	}
}
