package repositories

import (
	"errors"
	"testing"

	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func TestSplitVerses(t *testing.T) {
	tc := []struct {
		name string
		text string
		want []string
	}{
		{name: "two verses", text: "V1\n\nV2", want: []string{"V1", "V2"}},
		{name: "multi-line verse", text: "a\nb\n\nc", want: []string{"a\nb", "c"}},
		{name: "crlf line endings", text: "V1\r\n\r\nV2", want: []string{"V1", "V2"}},
		{name: "leading and trailing blank lines", text: "\n\nV1\n\n", want: []string{"V1"}},
		{name: "blank segments dropped", text: "V1\n\n  \n\nV2", want: []string{"V1", "V2"}},
		{name: "empty text", text: "", want: []string{}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitVerses(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitVerses() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("song uses the primary version", func(t *testing.T) {
		raw := RawItem{
			ID:    "s1",
			Type:  "song",
			Title: "Victory",
			Versions: []RawVersion{
				{Lyrics: "Other\n\nWords", Primary: false},
				{Lyrics: "V1\n\nV2", Primary: true},
			},
		}

		entry, err := Normalize(raw, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if diff := cmp.Diff([]string{"V1", "V2"}, entry.PrimaryLyrics()); diff != "" {
			t.Errorf("primary lyrics mismatch (-want +got):\n%s", diff)
		}
		if entry.VerseCount() != 2 {
			t.Errorf("expected verse count 2, got %d", entry.VerseCount())
		}

		lyrics, ok := entry.Lyrics.(models.SongLyrics)
		if !ok {
			t.Fatalf("expected SongLyrics, got %T", entry.Lyrics)
		}
		if len(lyrics.Versions) != 2 {
			t.Errorf("expected both version blobs to be kept, got %d", len(lyrics.Versions))
		}
	})

	t.Run("song without a primary falls back to the first version", func(t *testing.T) {
		raw := RawItem{
			ID:   "s2",
			Type: "song",
			Versions: []RawVersion{
				{Lyrics: "First"},
				{Lyrics: "Second"},
			},
		}

		entry, err := Normalize(raw, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"First"}, entry.PrimaryLyrics()); diff != "" {
			t.Errorf("primary lyrics mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("song without versions is malformed but usable", func(t *testing.T) {
		entry, err := Normalize(RawItem{ID: "s3", Type: "song", Title: "Bare"}, "")
		if !errors.Is(err, shared.ErrMalformedRow) {
			t.Fatalf("expected ErrMalformedRow, got %v", err)
		}
		if entry.Title != "Bare" || entry.Kind != models.KindSong {
			t.Errorf("expected entry to be populated, got %+v", entry)
		}
		if entry.PrimaryLyrics() == nil || len(entry.PrimaryLyrics()) != 0 {
			t.Errorf("expected empty primary lyrics, got %#v", entry.PrimaryLyrics())
		}
	})

	t.Run("song takes its number from the catalog number", func(t *testing.T) {
		entry, _ := Normalize(RawItem{ID: "s4", Type: "song", Number: intPtr(7), HymnNumber: intPtr(99), Versions: []RawVersion{{Lyrics: "x"}}}, "")
		if entry.Number() != "7" {
			t.Errorf("expected number 7, got %q", entry.Number())
		}
	})

	t.Run("hymn splits both lyric blobs independently", func(t *testing.T) {
		raw := RawItem{
			ID:              "h1",
			Type:            "hymn",
			HymnNumber:      intPtr(42),
			EnglishLyrics:   strPtr("Amazing grace\n\nHow sweet"),
			LocalizedLyrics: strPtr("Oore ofe"),
		}

		entry, err := Normalize(raw, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if entry.Number() != "42" {
			t.Errorf("expected hymn number 42, got %q", entry.Number())
		}
		if got := entry.EnglishVerses(); !got.Valid || got.Len() != 2 {
			t.Errorf("unexpected English verses %+v", got)
		}
		if got := entry.LocalizedVerses(); !got.Valid || got.Len() != 1 {
			t.Errorf("unexpected localized verses %+v", got)
		}
		if entry.PrimaryLyrics() != nil {
			t.Error("hymns should not carry primary lyrics")
		}
	})

	t.Run("hymn distinguishes absent from empty lyrics", func(t *testing.T) {
		entry, err := Normalize(RawItem{ID: "h2", Type: "hymn", EnglishLyrics: strPtr("")}, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		english := entry.EnglishVerses()
		if !english.Valid || english.Len() != 0 {
			t.Errorf("expected present-but-empty English verses, got %+v", english)
		}
		if entry.LocalizedVerses().Valid {
			t.Error("expected absent localized verses")
		}
	})

	t.Run("category fallback and tag defaults", func(t *testing.T) {
		entry, _ := Normalize(RawItem{ID: "h3", Type: "hymn"}, "")
		if entry.Category != "traditional" {
			t.Errorf("expected fallback category traditional, got %q", entry.Category)
		}
		if entry.Tags == nil {
			t.Error("expected tags to normalize to an empty slice")
		}

		entry, _ = Normalize(RawItem{ID: "h4", Type: "hymn", CategoryName: strPtr("Psalms"), Tags: []string{"grace"}}, "custom")
		if entry.Category != "Psalms" {
			t.Errorf("expected category Psalms, got %q", entry.Category)
		}

		entry, _ = Normalize(RawItem{ID: "h5", Type: "hymn"}, "custom")
		if entry.Category != "custom" {
			t.Errorf("expected configured fallback, got %q", entry.Category)
		}
	})

	t.Run("unknown type is malformed and treated as a song", func(t *testing.T) {
		entry, err := Normalize(RawItem{ID: "x1", Type: "chant", Versions: []RawVersion{{Lyrics: "a"}}}, "")
		if !errors.Is(err, shared.ErrMalformedRow) {
			t.Fatalf("expected ErrMalformedRow, got %v", err)
		}
		if entry.Kind != models.KindSong {
			t.Errorf("expected song kind, got %v", entry.Kind)
		}
		if entry.Lyrics == nil {
			t.Error("expected lyrics to be set")
		}
	})
}
