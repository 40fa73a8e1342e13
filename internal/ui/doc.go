// Package ui implements an interactive terminal catalog browser using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [EntryListView] : search box, category tabs and the filtered entry list
//  2. [DetailView] : one entry with its verses in a scrollable viewport
//
// The browser runs as a fixed requester role and only talks to the catalog through the [Browser]
// interface, so guests see exactly what the HTTP API would show them.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
