package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
)

// DefaultFallbackCategory labels entries whose category cannot be resolved.
const DefaultFallbackCategory = "traditional"

// RawVersion is a version sub-row as fetched for the read path.
type RawVersion struct {
	Lyrics  string
	Primary bool
}

// RawItem is an active item row joined with its category name and version sub-rows.
//
// Nil pointers are SQL NULLs.
type RawItem struct {
	ID              string
	Type            string
	Title           string
	Author          string
	Composer        string
	CategoryName    *string
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
	CreatedAt       time.Time
	Versions        []RawVersion
}

// SplitVerses divides a lyrics blob into verses on blank-line boundaries, dropping blank segments.
func SplitVerses(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	verses := []string{}
	for _, segment := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		verses = append(verses, segment)
	}
	return verses
}

// Normalize converts a raw row into an [models.Entry].
//
// The returned entry is always usable. A non-nil error wraps [shared.ErrMalformedRow] and describes
// the defaults that were substituted, so callers can log it and keep the entry.
func Normalize(raw RawItem, fallbackCategory string) (models.Entry, error) {
	if fallbackCategory == "" {
		fallbackCategory = DefaultFallbackCategory
	}

	var problems []error

	kind, err := models.ParseEntryKind(raw.Type)
	if err != nil {
		problems = append(problems, err)
	}

	entry := models.Entry{
		ID:            raw.ID,
		Title:         raw.Title,
		Author:        raw.Author,
		Composer:      raw.Composer,
		Kind:          kind,
		Category:      fallbackCategory,
		YearWritten:   raw.YearWritten,
		Tags:          raw.Tags,
		SheetMusicURL: raw.SheetMusicURL,
		AudioURL:      raw.AudioURL,
		VideoURL:      raw.VideoURL,
		KeySignature:  raw.KeySignature,
		TimeSignature: raw.TimeSignature,
		Tempo:         raw.Tempo,
		CreatedAt:     raw.CreatedAt,
	}

	if raw.CategoryName != nil && strings.TrimSpace(*raw.CategoryName) != "" {
		entry.Category = *raw.CategoryName
	}

	if entry.Tags == nil {
		entry.Tags = []string{}
	}

	if raw.ID == "" {
		problems = append(problems, fmt.Errorf("missing id"))
	}

	switch kind {
	case models.KindHymn:
		entry.NumberLabel = raw.HymnNumber
		entry.Lyrics = models.HymnLyrics{
			English:   optionalVerses(raw.EnglishLyrics),
			Localized: optionalVerses(raw.LocalizedLyrics),
		}
	case models.KindSong:
		entry.NumberLabel = raw.Number
		lyrics, err := songLyrics(raw.Versions)
		if err != nil {
			problems = append(problems, err)
		}
		entry.Lyrics = lyrics
	}

	if len(problems) > 0 {
		return entry, fmt.Errorf("%w: item %q: %w", shared.ErrMalformedRow, raw.ID, errors.Join(problems...))
	}

	return entry, nil
}

func optionalVerses(text *string) models.Verses {
	if text == nil {
		return models.Verses{}
	}
	return models.Verses{Lines: SplitVerses(*text), Valid: true}
}

// songLyrics splits the primary version, or the first version when none is flagged.
func songLyrics(versions []RawVersion) (models.SongLyrics, error) {
	lyrics := models.SongLyrics{Primary: []string{}, Versions: make([]string, 0, len(versions))}
	for _, v := range versions {
		lyrics.Versions = append(lyrics.Versions, v.Lyrics)
	}

	if len(versions) == 0 {
		return lyrics, fmt.Errorf("song has no versions")
	}

	chosen := versions[0]
	for _, v := range versions {
		if v.Primary {
			chosen = v
			break
		}
	}

	lyrics.Primary = SplitVerses(chosen.Lyrics)
	return lyrics, nil
}
