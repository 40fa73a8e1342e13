package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/choirbook/internal/catalog"
	"github.com/desertthunder/choirbook/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCategoriesLoaded MsgKind = iota
	MsgEntriesLoaded
)

type categoriesLoaded struct {
	categories []models.Category
	err        error
}

type entriesLoaded struct {
	request int
	result  catalog.Result
	err     error
}

// categoriesLoadedMsg is the constructor for [MsgCategoriesLoaded]
func categoriesLoadedMsg(categories []models.Category, err error) Msg {
	return Msg{kind: MsgCategoriesLoaded, data: categoriesLoaded{categories, err}}
}

// entriesLoadedMsg is the constructor for [MsgEntriesLoaded]. request identifies the query that produced it.
func entriesLoadedMsg(request int, result catalog.Result, err error) Msg {
	return Msg{kind: MsgEntriesLoaded, data: entriesLoaded{request, result, err}}
}
