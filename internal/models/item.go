package models

import (
	"fmt"
	"strings"
)

// PersistedItem is a raw catalog row as curators write it.
//
// Songs keep their lyrics in [ItemVersion] rows. Hymns keep English and localized lyrics inline
// and are numbered by HymnNumber rather than Number.
type PersistedItem struct {
	record
	Kind            EntryKind
	Title           string
	Author          string
	Composer        string
	CategoryID      string
	Number          *int
	HymnNumber      *int
	EnglishLyrics   *string
	LocalizedLyrics *string
	YearWritten     *int
	Tags            []string
	SheetMusicURL   string
	AudioURL        string
	VideoURL        string
	KeySignature    string
	TimeSignature   string
	Tempo           string
	Active          bool
}

// NewPersistedItem creates an active item of the given kind.
func NewPersistedItem(sequence int, kind EntryKind, title string) *PersistedItem {
	return &PersistedItem{
		record: newRecord(sequence),
		Kind:   kind,
		Title:  title,
		Tags:   []string{},
		Active: true,
	}
}

// Validate checks required fields and that kind-specific columns are not mixed.
func (i *PersistedItem) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("title is required")
	}

	switch i.Kind {
	case KindSong:
		if i.EnglishLyrics != nil || i.LocalizedLyrics != nil {
			return fmt.Errorf("songs store lyrics in versions, not inline")
		}
		if i.HymnNumber != nil {
			return fmt.Errorf("songs cannot carry a hymn number")
		}
	case KindHymn:
		if i.Number != nil {
			return fmt.Errorf("hymns are numbered by hymn number")
		}
	default:
		return fmt.Errorf("unknown entry kind %v", i.Kind)
	}

	for _, n := range []*int{i.Number, i.HymnNumber} {
		if n != nil && *n < 0 {
			return fmt.Errorf("numbers must not be negative")
		}
	}

	return nil
}

// ItemVersion is one lyric version of an item.
type ItemVersion struct {
	record
	ItemID       string
	Title        string
	Lyrics       string
	LanguageCode string
	Notes        string
	Primary      bool
}

// NewItemVersion creates a version of the given item.
func NewItemVersion(sequence int, itemID, lyrics string, primary bool) *ItemVersion {
	return &ItemVersion{
		record:  newRecord(sequence),
		ItemID:  itemID,
		Lyrics:  lyrics,
		Primary: primary,
	}
}

// Validate checks that the version belongs to an item.
func (v *ItemVersion) Validate() error {
	if v.ItemID == "" {
		return fmt.Errorf("item id is required")
	}
	return nil
}
