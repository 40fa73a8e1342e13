package tasks

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/repositories"
	"github.com/desertthunder/choirbook/internal/shared"
)

//go:embed seed.example.toml
var sampleSeed []byte

// Seed is a catalog import file.
type Seed struct {
	Categories []SeedCategory `toml:"categories"`
	Entries    []SeedEntry    `toml:"entries"`
}

// SeedCategory is one [[categories]] table.
type SeedCategory struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// SeedEntry is one [[entries]] table. Songs list their lyrics as versions, hymns inline.
type SeedEntry struct {
	Type            string        `toml:"type"`
	Title           string        `toml:"title"`
	Author          string        `toml:"author"`
	Composer        string        `toml:"composer"`
	Category        string        `toml:"category"`
	Number          *int          `toml:"number"`
	HymnNumber      *int          `toml:"hymn_number"`
	EnglishLyrics   *string       `toml:"english_lyrics"`
	LocalizedLyrics *string       `toml:"localized_lyrics"`
	YearWritten     *int          `toml:"year_written"`
	Tags            []string      `toml:"tags"`
	SheetMusicURL   string        `toml:"sheet_music_url"`
	AudioURL        string        `toml:"audio_url"`
	VideoURL        string        `toml:"video_url"`
	KeySignature    string        `toml:"key_signature"`
	TimeSignature   string        `toml:"time_signature"`
	Tempo           string        `toml:"tempo"`
	Inactive        bool          `toml:"inactive"`
	Versions        []SeedVersion `toml:"versions"`
}

// SeedVersion is one [[entries.versions]] table.
type SeedVersion struct {
	Title        string `toml:"title"`
	Lyrics       string `toml:"lyrics"`
	LanguageCode string `toml:"language_code"`
	Notes        string `toml:"notes"`
	Primary      bool   `toml:"primary"`
}

// ParseSeed decodes a seed document.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := toml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse seed: %w", shared.ErrInvalidInput, err)
	}
	return &seed, nil
}

// LoadSeed reads and decodes the seed file at path.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(data)
}

// SampleSeed returns the built-in sample catalog.
func SampleSeed() *Seed {
	seed, err := ParseSeed(sampleSeed)
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded sample seed: %v", err))
	}
	return seed
}

// ImportFailure records an entry that could not be imported.
type ImportFailure struct {
	Title string
	Err   error
}

// ImportResult summarizes an import.
type ImportResult struct {
	CategoriesCreated int
	EntriesCreated    int
	VersionsCreated   int
	Failed            []ImportFailure
}

// Invalidator is notified once after an import changed the catalog.
type Invalidator interface {
	Invalidate()
}

// Importer writes seed data through the catalog repositories.
type Importer struct {
	categories  *repositories.CategoryRepository
	items       *repositories.ItemRepository
	versions    *repositories.VersionRepository
	invalidator Invalidator
	logger      *log.Logger
}

// NewImporter creates an Importer over db. inv may be nil.
func NewImporter(db *sql.DB, inv Invalidator, logger *log.Logger) *Importer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Importer{
		categories:  repositories.NewCategoryRepository(db),
		items:       repositories.NewItemRepository(db),
		versions:    repositories.NewVersionRepository(db),
		invalidator: inv,
		logger:      logger,
	}
}

// Import creates missing categories and inserts every entry of seed.
//
// A failing entry is recorded in the result and the import continues. Cancelling ctx stops the
// import between entries and returns what was imported so far with ctx.Err().
func (im *Importer) Import(ctx context.Context, progress chan<- ProgressUpdate, seed *Seed) (*ImportResult, error) {
	result := &ImportResult{Failed: []ImportFailure{}}
	sendProgress(progress, seedLoadedUpdate(len(seed.Categories), len(seed.Entries)))

	defer func() {
		if result.CategoriesCreated+result.EntriesCreated+result.VersionsCreated == 0 || im.invalidator == nil {
			return
		}
		im.invalidator.Invalidate()
		sendProgress(progress, invalidatedUpdate())
	}()

	categoryIDs := make(map[string]string)

	for i, sc := range seed.Categories {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		id, created, err := im.ensureCategory(sc.Name, sc.Description)
		if err != nil {
			return result, fmt.Errorf("category %q: %w", sc.Name, err)
		}
		if created {
			result.CategoriesCreated++
		}
		categoryIDs[strings.ToLower(strings.TrimSpace(sc.Name))] = id
		sendProgress(progress, categoryUpdate(i+1, len(seed.Categories), sc.Name, created))
	}

	total := len(seed.Entries)
	for i, entry := range seed.Entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		versions, err := im.importEntry(entry, categoryIDs, result)
		if err != nil {
			im.logger.Warn("skipped seed entry", "title", entry.Title, "error", err)
			result.Failed = append(result.Failed, ImportFailure{Title: entry.Title, Err: err})
			sendProgress(progress, entryFailedUpdate(i+1, total, entry.Title, err))
			continue
		}

		result.EntriesCreated++
		result.VersionsCreated += versions
		sendProgress(progress, entryImportedUpdate(i+1, total, entry.Title, versions))
	}

	im.logger.Info("import finished",
		"categories", result.CategoriesCreated,
		"entries", result.EntriesCreated,
		"versions", result.VersionsCreated,
		"failed", len(result.Failed),
	)
	return result, nil
}

// ensureCategory returns the id of the named category, creating it when missing.
func (im *Importer) ensureCategory(name, description string) (string, bool, error) {
	existing, err := im.categories.GetByName(strings.TrimSpace(name))
	if err == nil {
		return existing.ID(), false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return "", false, err
	}

	category := models.NewPersistedCategory(0, strings.TrimSpace(name), description)
	if err := im.categories.Create(category); err != nil {
		return "", false, err
	}
	return category.ID(), true, nil
}

func (im *Importer) importEntry(entry SeedEntry, categoryIDs map[string]string, result *ImportResult) (int, error) {
	kind, err := models.ParseEntryKind(entry.Type)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	if kind == models.KindHymn && len(entry.Versions) > 0 {
		return 0, fmt.Errorf("%w: hymns keep lyrics inline, not in versions", shared.ErrInvalidInput)
	}

	item := models.NewPersistedItem(0, kind, entry.Title)
	item.Author = entry.Author
	item.Composer = entry.Composer
	item.Number = entry.Number
	item.HymnNumber = entry.HymnNumber
	item.EnglishLyrics = entry.EnglishLyrics
	item.LocalizedLyrics = entry.LocalizedLyrics
	item.YearWritten = entry.YearWritten
	item.SheetMusicURL = entry.SheetMusicURL
	item.AudioURL = entry.AudioURL
	item.VideoURL = entry.VideoURL
	item.KeySignature = entry.KeySignature
	item.TimeSignature = entry.TimeSignature
	item.Tempo = entry.Tempo
	item.Active = !entry.Inactive
	if entry.Tags != nil {
		item.Tags = entry.Tags
	}

	if name := strings.TrimSpace(entry.Category); name != "" {
		key := strings.ToLower(name)
		id, ok := categoryIDs[key]
		if !ok {
			var created bool
			id, created, err = im.ensureCategory(name, "")
			if err != nil {
				return 0, fmt.Errorf("category %q: %w", name, err)
			}
			if created {
				result.CategoriesCreated++
			}
			categoryIDs[key] = id
		}
		item.CategoryID = id
	}

	if err := im.items.Create(item); err != nil {
		return 0, err
	}

	created := 0
	for _, sv := range entry.Versions {
		version := models.NewItemVersion(0, item.ID(), sv.Lyrics, sv.Primary)
		version.Title = sv.Title
		version.LanguageCode = sv.LanguageCode
		version.Notes = sv.Notes
		if err := im.versions.Create(version); err != nil {
			if derr := im.items.Delete(item.ID()); derr != nil {
				im.logger.Error("failed to remove partially imported entry", "id", item.ID(), "error", derr)
			}
			return 0, fmt.Errorf("version %d of %q: %w", created+1, entry.Title, err)
		}
		created++
	}

	return created, nil
}
