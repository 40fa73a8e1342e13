package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/choirbook/internal/catalog"
	"github.com/desertthunder/choirbook/internal/formatter"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	EntryListView ViewState = iota
	DetailView
)

// Browser is the catalog surface the TUI reads. [catalog.Service] implements it.
type Browser interface {
	ListEntries(ctx context.Context, search, selector string, role models.Role) (catalog.Result, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	Invalidate()
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	browser    Browser
	role       models.Role
	logger     *log.Logger
	view       ViewState
	width      int
	height     int
	search     textinput.Model
	entries    list.Model
	detail     viewport.Model
	categories []models.Category
	category   int
	result     catalog.Result
	selected   *models.Entry
	request    int
	loading    bool
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model browsing b as role.
func NewModel(ctx context.Context, b Browser, role models.Role, logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	search := textinput.New()
	search.Placeholder = "Search titles, lyrics or numbers"
	if role.IsGuest() {
		search.Placeholder = "Search hymns by number or English lyrics"
	}
	search.Prompt = "/ "

	entries := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	entries.SetShowTitle(false)
	entries.SetShowHelp(false)
	entries.SetFilteringEnabled(false)
	entries.DisableQuitKeybindings()

	return &Model{
		ctx:        ctx,
		browser:    b,
		role:       role,
		logger:     logger,
		view:       EntryListView,
		search:     search,
		entries:    entries,
		detail:     viewport.New(0, 0),
		categories: []models.Category{models.AllCategory("")},
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init loads the category tabs and the default listing.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCategories(), m.query()}
	if m.role.IsGuest() {
		cmds = append(cmds, m.search.Focus())
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.entries.SetSize(msg.Width-4, msg.Height-10)
		m.detail.Width = msg.Width - 4
		m.detail.Height = msg.Height - 6
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case DetailView:
			return m.handleDetailKeys(msg)
		default:
			if m.search.Focused() {
				return m.handleSearchKeys(msg)
			}
			return m.handleListKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCategoriesLoaded:
		data := msg.data.(categoriesLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}

		current := m.selector()
		m.categories = data.categories
		m.category = 0
		for i, c := range m.categories {
			if c.ID == current {
				m.category = i
			}
		}
		return m, nil

	case MsgEntriesLoaded:
		data := msg.data.(entriesLoaded)
		if data.request != m.request {
			return m, nil
		}
		m.loading = false
		if data.err != nil {
			m.logger.Error("catalog query failed", "error", data.err)
			m.err = data.err
			return m, nil
		}

		m.err = nil
		m.result = data.result
		items := make([]list.Item, len(data.result.Entries))
		for i, e := range data.result.Entries {
			items[i] = entryItem{entry: e}
		}
		return m, m.entries.SetItems(items)
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case DetailView:
		return m.renderDetail()
	default:
		return m.renderList()
	}
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.search.Blur()
		return m, m.query()
	case "esc":
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.nextTab):
		m.category = (m.category + 1) % len(m.categories)
		return m, m.query()
	case key.Matches(msg, m.keys.prevTab):
		m.category = (m.category - 1 + len(m.categories)) % len(m.categories)
		return m, m.query()
	case key.Matches(msg, m.keys.refresh):
		m.browser.Invalidate()
		return m, tea.Batch(m.loadCategories(), m.query())
	case key.Matches(msg, m.keys.back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			return m, m.query()
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if selected, ok := m.entries.SelectedItem().(entryItem); ok {
			m.open(selected.entry)
		}
		return m, nil
	case msg.String() == "?":
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c", msg.String() == "q":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = EntryListView
		m.selected = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == DetailView:
		m.detail, cmd = m.detail.Update(msg)
	case m.search.Focused():
		m.search, cmd = m.search.Update(msg)
	default:
		m.entries, cmd = m.entries.Update(msg)
	}
	return m, cmd
}

func (m *Model) open(e models.Entry) {
	m.selected = &e
	m.detail.SetContent(formatter.EntryToText(e))
	m.detail.GotoTop()
	m.view = DetailView
}

func (m *Model) selector() string {
	if m.category < 0 || m.category >= len(m.categories) {
		return models.AllCategoryID
	}
	return m.categories[m.category].ID
}

func (m *Model) loadCategories() tea.Cmd {
	return func() tea.Msg {
		categories, err := m.browser.ListCategories(m.ctx)
		return categoriesLoadedMsg(categories, err)
	}
}

// query issues a listing for the current search and category. Older responses are dropped.
func (m *Model) query() tea.Cmd {
	m.request++
	m.loading = true

	request := m.request
	search := m.search.Value()
	selector := m.selector()

	return func() tea.Msg {
		result, err := m.browser.ListEntries(m.ctx, search, selector, m.role)
		return entriesLoadedMsg(request, result, err)
	}
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(m.categories))
	for i, c := range m.categories {
		if i == m.category {
			tabs[i] = styles.tabFocus.Render(c.Name)
		} else {
			tabs[i] = styles.tab.Render(c.Name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderList() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("choirbook · %s", m.role.Label())))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Could not load the catalog: %v", m.err)))
		b.WriteString("\n")
		b.WriteString(styles.help.Render("Press r to retry"))
	case m.loading && len(m.result.Entries) == 0:
		b.WriteString(styles.help.Render("Loading..."))
	case m.result.AwaitingQuery:
		b.WriteString(styles.help.Render("Search for a hymn by its number or a line of its English lyrics."))
	case len(m.result.Entries) == 0:
		b.WriteString(styles.warn.Render("No entries match."))
	default:
		b.WriteString(m.entries.View())
		if m.result.Truncated {
			b.WriteString("\n")
			b.WriteString(styles.help.Render("Showing a preview. Search or pick a category to see everything."))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}

	title := styles.title.Render(m.selected.Title)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.detail.View(), helpView)
}
