// package formatter renders catalog listings as CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/choirbook/internal/models"
)

// Format names an export format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// ParseFormat accepts text, txt, markdown, md and csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// Export is a titled list of entries, e.g. one category or one search result.
type Export struct {
	Title     string
	Entries   []models.Entry
	Truncated bool
}

// ExportToCSV converts an Export to CSV with columns: ID, Kind, Number, Title, Author, Composer, Category, Verses, Tags
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Kind", "Number", "Title", "Author", "Composer", "Category", "Verses", "Tags"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range export.Entries {
		record := []string{
			e.ID,
			e.Kind.String(),
			e.Number(),
			e.Title,
			e.Author,
			e.Composer,
			e.Category,
			strconv.Itoa(e.VerseCount()),
			strings.Join(e.Tags, ";"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an Export to a Markdown list
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Title)
	fmt.Fprintf(&buf, "**Entries**: %d\n", len(export.Entries))
	if export.Truncated {
		buf.WriteString("**Preview**: search or pick a category to see everything\n")
	}
	buf.WriteString("\n")

	for i, e := range export.Entries {
		fmt.Fprintf(&buf, "%d. %s%s", i+1, numberPrefix(e), e.Title)
		if by := byline(e); by != "" {
			fmt.Fprintf(&buf, " - %s", by)
		}
		fmt.Fprintf(&buf, " _(%s, %s)_\n", e.Kind, e.Category)
	}

	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", export.Title)
	fmt.Fprintf(&buf, "Entries: %d", len(export.Entries))
	if export.Truncated {
		buf.WriteString(" (preview)")
	}
	buf.WriteString("\n\n")

	for i, e := range export.Entries {
		fmt.Fprintf(&buf, "%d. %s%s", i+1, numberPrefix(e), e.Title)
		if by := byline(e); by != "" {
			fmt.Fprintf(&buf, " - %s", by)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// Render renders export in the given format.
func Render(export *Export, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// WriteExport renders export and writes it to path.
func WriteExport(export *Export, format Format, path string) error {
	data, err := Render(export, format)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	return nil
}

// EntryToText renders a single entry with its verses.
//
// Hymns show English verses followed by localized verses when present.
func EntryToText(e models.Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s%s\n", numberPrefix(e), e.Title)
	if by := byline(e); by != "" {
		fmt.Fprintf(&b, "%s\n", by)
	}
	fmt.Fprintf(&b, "%s · %s", e.Kind, e.Category)
	if e.YearWritten != nil {
		fmt.Fprintf(&b, " · %d", *e.YearWritten)
	}
	b.WriteString("\n")
	if len(e.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(e.Tags, ", "))
	}

	switch l := e.Lyrics.(type) {
	case models.SongLyrics:
		writeVerses(&b, "", l.Primary)
	case models.HymnLyrics:
		if l.English.Valid {
			writeVerses(&b, "English", l.English.Lines)
		}
		if l.Localized.Valid {
			writeVerses(&b, "Localized", l.Localized.Lines)
		}
	}

	return b.String()
}

func writeVerses(b *strings.Builder, heading string, verses []string) {
	b.WriteString("\n")
	if heading != "" {
		fmt.Fprintf(b, "[%s]\n\n", heading)
	}
	if len(verses) == 0 {
		b.WriteString("(no lyrics)\n")
		return
	}
	for i, verse := range verses {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "%s\n", verse)
	}
}

func numberPrefix(e models.Entry) string {
	if n := e.Number(); n != "" {
		return "#" + n + " "
	}
	return ""
}

func byline(e models.Entry) string {
	switch {
	case e.Author != "" && e.Composer != "" && e.Author != e.Composer:
		return e.Author + " / " + e.Composer
	case e.Author != "":
		return e.Author
	default:
		return e.Composer
	}
}
