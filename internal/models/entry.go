package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EntryKind tags an [Entry] as a song or a hymn.
//
// The kind decides which [Lyrics] implementation an entry carries and which number column labels it.
type EntryKind int

const (
	KindSong EntryKind = iota
	KindHymn
)

func (k EntryKind) String() string {
	switch k {
	case KindSong:
		return "song"
	case KindHymn:
		return "hymn"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseEntryKind converts a stored item type into an [EntryKind].
func ParseEntryKind(s string) (EntryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "song":
		return KindSong, nil
	case "hymn":
		return KindHymn, nil
	default:
		return KindSong, fmt.Errorf("unknown entry kind %q", s)
	}
}

// Lyrics is the kind-specific lyric payload of an [Entry].
//
// Implemented only by [SongLyrics] and [HymnLyrics].
type Lyrics interface {
	Kind() EntryKind
	sealed()
}

// SongLyrics holds the verses of a song's primary version.
type SongLyrics struct {
	Primary  []string // verses of the primary version, in order
	Versions []string // raw lyric text of every stored version
}

func (SongLyrics) Kind() EntryKind { return KindSong }
func (SongLyrics) sealed()         {}

// Verses is an optional verse sequence. Valid is false when the source text was absent,
// which is distinct from present text that yields zero verses.
type Verses struct {
	Lines []string
	Valid bool
}

// Len returns the number of verses, zero when absent.
func (v Verses) Len() int {
	return len(v.Lines)
}

// Text joins the verses back into a blank-line separated block.
func (v Verses) Text() string {
	return strings.Join(v.Lines, "\n\n")
}

// HymnLyrics holds a hymn's English and localized verses.
//
// The two sequences are expected to be verse-aligned by index, which is not verified.
type HymnLyrics struct {
	English   Verses
	Localized Verses
}

func (HymnLyrics) Kind() EntryKind { return KindHymn }
func (HymnLyrics) sealed()         {}

// Entry is a normalized catalog item as shown to readers.
//
// Entries are rebuilt from raw rows on every fetch and must not be mutated afterwards.
type Entry struct {
	ID            string
	Title         string
	Author        string
	Composer      string
	Kind          EntryKind
	Category      string
	Lyrics        Lyrics
	NumberLabel   *int // catalog number for songs, hymn number for hymns
	YearWritten   *int
	Tags          []string
	SheetMusicURL string
	AudioURL      string
	VideoURL      string
	KeySignature  string
	TimeSignature string
	Tempo         string
	CreatedAt     time.Time
}

// PrimaryLyrics returns the verses of a song's primary version, nil for hymns.
func (e Entry) PrimaryLyrics() []string {
	switch l := e.Lyrics.(type) {
	case SongLyrics:
		return l.Primary
	case HymnLyrics:
		return nil
	default:
		return nil
	}
}

// EnglishVerses returns a hymn's English verses, absent for songs.
func (e Entry) EnglishVerses() Verses {
	switch l := e.Lyrics.(type) {
	case HymnLyrics:
		return l.English
	case SongLyrics:
		return Verses{}
	default:
		return Verses{}
	}
}

// LocalizedVerses returns a hymn's localized verses, absent for songs.
func (e Entry) LocalizedVerses() Verses {
	switch l := e.Lyrics.(type) {
	case HymnLyrics:
		return l.Localized
	case SongLyrics:
		return Verses{}
	default:
		return Verses{}
	}
}

// VerseCount is the number of primary verses for songs and English verses for hymns.
func (e Entry) VerseCount() int {
	switch l := e.Lyrics.(type) {
	case SongLyrics:
		return len(l.Primary)
	case HymnLyrics:
		return l.English.Len()
	default:
		return 0
	}
}

// Verses returns the verses a reader sees first: primary verses for songs, English verses for hymns.
func (e Entry) Verses() []string {
	switch l := e.Lyrics.(type) {
	case SongLyrics:
		return l.Primary
	case HymnLyrics:
		return l.English.Lines
	default:
		return nil
	}
}

// Number returns the number label as text, or "" when the entry is unnumbered.
func (e Entry) Number() string {
	if e.NumberLabel == nil {
		return ""
	}
	return strconv.Itoa(*e.NumberLabel)
}

// IsHymn reports whether the entry is a hymn.
func (e Entry) IsHymn() bool {
	return e.Kind == KindHymn
}
