package formatter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/choirbook/internal/models"
	"github.com/google/go-cmp/cmp"
)

func testExport() *Export {
	number, hymnNumber, year := 7, 42, 1779
	return &Export{
		Title: "All Songs",
		Entries: []models.Entry{
			{
				ID:          "s1",
				Title:       "Victory",
				Author:      "Ada",
				Composer:    "Bo",
				Kind:        models.KindSong,
				Category:    "seasonal",
				NumberLabel: &number,
				Tags:        []string{"praise", "upbeat"},
				Lyrics:      models.SongLyrics{Primary: []string{"V1", "V2"}, Versions: []string{"V1\n\nV2"}},
			},
			{
				ID:          "h42",
				Title:       "Amazing Grace",
				Author:      "John Newton",
				Kind:        models.KindHymn,
				Category:    "traditional",
				NumberLabel: &hymnNumber,
				YearWritten: &year,
				Tags:        []string{},
				Lyrics: models.HymnLyrics{
					English:   models.Verses{Lines: []string{"Amazing grace", "Twas grace"}, Valid: true},
					Localized: models.Verses{},
				},
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("failed to read CSV back: %v", err)
		}

		want := [][]string{
			{"ID", "Kind", "Number", "Title", "Author", "Composer", "Category", "Verses", "Tags"},
			{"s1", "song", "7", "Victory", "Ada", "Bo", "seasonal", "2", "praise;upbeat"},
			{"h42", "hymn", "42", "Amazing Grace", "John Newton", "", "traditional", "2", ""},
		}
		if diff := cmp.Diff(want, records); diff != "" {
			t.Errorf("CSV mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		export := testExport()
		export.Truncated = true

		data, err := ExportToMarkdown(export)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{
			"# All Songs",
			"**Entries**: 2",
			"**Preview**",
			"1. #7 Victory - Ada / Bo _(song, seasonal)_",
			"2. #42 Amazing Grace - John Newton _(hymn, traditional)_",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testExport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		output := string(data)

		if !strings.HasPrefix(output, "All Songs\nEntries: 2\n\n") {
			t.Errorf("unexpected header, got:\n%s", output)
		}
		if strings.Contains(output, "(preview)") {
			t.Error("untruncated export should not be marked as preview")
		}
		if !strings.Contains(output, "2. #42 Amazing Grace - John Newton\n") {
			t.Errorf("missing hymn line, got:\n%s", output)
		}
	})

	t.Run("empty export", func(t *testing.T) {
		data, err := ExportToCSV(&Export{Title: "Empty"})
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		if lines := strings.Count(string(data), "\n"); lines != 1 {
			t.Errorf("expected only the header line, got %d lines", lines)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "txt", want: FormatText},
		{in: "MD", want: FormatMarkdown},
		{in: "csv", want: FormatCSV},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.md")

	if err := WriteExport(testExport(), FormatMarkdown, path); err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "# All Songs") {
		t.Errorf("unexpected file contents:\n%s", data)
	}

	if err := WriteExport(testExport(), Format("xml"), path); err == nil {
		t.Error("expected unknown format to fail")
	}
}

func TestEntryToText(t *testing.T) {
	export := testExport()

	t.Run("song", func(t *testing.T) {
		got := EntryToText(export.Entries[0])
		want := "#7 Victory\nAda / Bo\nsong · seasonal\nTags: praise, upbeat\n\nV1\n\nV2\n"
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("hymn skips absent localized verses", func(t *testing.T) {
		got := EntryToText(export.Entries[1])
		if !strings.Contains(got, "hymn · traditional · 1779") {
			t.Errorf("missing metadata line, got:\n%s", got)
		}
		if !strings.Contains(got, "[English]\n\nAmazing grace\n\nTwas grace\n") {
			t.Errorf("missing English verses, got:\n%s", got)
		}
		if strings.Contains(got, "[Localized]") {
			t.Errorf("absent localized verses should not be shown, got:\n%s", got)
		}
	})

	t.Run("present but empty lyrics", func(t *testing.T) {
		e := models.Entry{
			Title:  "Silent",
			Kind:   models.KindHymn,
			Lyrics: models.HymnLyrics{English: models.Verses{Lines: []string{}, Valid: true}},
		}
		if got := EntryToText(e); !strings.Contains(got, "(no lyrics)") {
			t.Errorf("expected no-lyrics marker, got:\n%s", got)
		}
	})
}
