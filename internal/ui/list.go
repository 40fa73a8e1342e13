package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/choirbook/internal/models"
)

var (
	_ list.Item = entryItem{}
)

// entryItem wraps [models.Entry] to implement [list.Item].
type entryItem struct {
	entry models.Entry
}

func (i entryItem) FilterValue() string { return i.entry.Title }
func (i entryItem) Title() string {
	if n := i.entry.Number(); n != "" {
		return fmt.Sprintf("#%s %s", n, i.entry.Title)
	}
	return i.entry.Title
}

func (i entryItem) Description() string {
	parts := []string{i.entry.Kind.String(), i.entry.Category}
	if i.entry.Author != "" {
		parts = append(parts, i.entry.Author)
	}
	parts = append(parts, fmt.Sprintf("%d verses", i.entry.VerseCount()))
	return strings.Join(parts, " • ")
}
