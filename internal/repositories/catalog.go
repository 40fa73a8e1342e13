package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
)

// CatalogAdapter is the read path of the catalog.
//
// It fetches every active item together with its category name and version sub-rows and normalizes
// them into [models.Entry] values. Each call works on a fresh snapshot; nothing is retained between calls.
type CatalogAdapter struct {
	db       *sql.DB
	logger   *log.Logger
	fallback string
}

// NewCatalogAdapter creates a CatalogAdapter. An empty fallback uses [DefaultFallbackCategory].
func NewCatalogAdapter(db *sql.DB, logger *log.Logger, fallback string) *CatalogAdapter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if fallback == "" {
		fallback = DefaultFallbackCategory
	}
	return &CatalogAdapter{db: db, logger: logger, fallback: fallback}
}

// FetchActive loads and normalizes all active entries, most recently created first.
//
// Any store error aborts the whole fetch and wraps [shared.ErrFetchFailed]. Malformed rows are
// logged and kept with defaults substituted.
func (a *CatalogAdapter) FetchActive(ctx context.Context) ([]models.Entry, error) {
	raws, err := a.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(raws))
	for _, raw := range raws {
		entry, err := Normalize(raw, a.fallback)
		if err != nil {
			a.logger.Warn("normalized malformed row with defaults", "id", raw.ID, "error", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// FetchRaw loads active item rows with their versions inside one transaction so both reads see the same snapshot.
func (a *CatalogAdapter) FetchRaw(ctx context.Context) ([]RawItem, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin read: %w", shared.ErrFetchFailed, err)
	}
	defer tx.Rollback()

	raws, index, err := a.queryItems(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := a.queryVersions(ctx, tx, raws, index); err != nil {
		return nil, err
	}

	return raws, nil
}

func (a *CatalogAdapter) queryItems(ctx context.Context, tx *sql.Tx) ([]RawItem, map[string]int, error) {
	query := `
		SELECT
			i.id, i.type, i.title, i.author, i.composer, c.name, i.number, i.hymn_number,
			i.english_lyrics, i.localized_lyrics, i.year_written, i.tags, i.sheet_music_url,
			i.audio_url, i.video_url, i.key_signature, i.time_signature, i.tempo, i.created_at
		FROM items i
		LEFT JOIN categories c ON c.id = i.category_id
		WHERE i.is_active = 1
		ORDER BY i.sequence DESC
	`

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to query items: %w", shared.ErrFetchFailed, err)
	}
	defer rows.Close()

	var raws []RawItem
	index := make(map[string]int)

	for rows.Next() {
		var (
			raw             RawItem
			author          sql.NullString
			composer        sql.NullString
			categoryName    sql.NullString
			number          sql.NullInt64
			hymnNumber      sql.NullInt64
			englishLyrics   sql.NullString
			localizedLyrics sql.NullString
			yearWritten     sql.NullInt64
			tags            sql.NullString
			sheetMusicURL   sql.NullString
			audioURL        sql.NullString
			videoURL        sql.NullString
			keySignature    sql.NullString
			timeSignature   sql.NullString
			tempo           sql.NullString
			createdAt       time.Time
		)

		err := rows.Scan(
			&raw.ID, &raw.Type, &raw.Title, &author, &composer, &categoryName, &number, &hymnNumber,
			&englishLyrics, &localizedLyrics, &yearWritten, &tags, &sheetMusicURL,
			&audioURL, &videoURL, &keySignature, &timeSignature, &tempo, &createdAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to scan item: %w", shared.ErrFetchFailed, err)
		}

		decoded, err := decodeTags(tags)
		if err != nil {
			a.logger.Warn("dropping unreadable tags", "id", raw.ID, "error", err)
			decoded = nil
		}

		raw.Author = author.String
		raw.Composer = composer.String
		raw.CategoryName = textFromNull(categoryName)
		raw.Number = intFromNull(number)
		raw.HymnNumber = intFromNull(hymnNumber)
		raw.EnglishLyrics = textFromNull(englishLyrics)
		raw.LocalizedLyrics = textFromNull(localizedLyrics)
		raw.YearWritten = intFromNull(yearWritten)
		raw.Tags = decoded
		raw.SheetMusicURL = sheetMusicURL.String
		raw.AudioURL = audioURL.String
		raw.VideoURL = videoURL.String
		raw.KeySignature = keySignature.String
		raw.TimeSignature = timeSignature.String
		raw.Tempo = tempo.String
		raw.CreatedAt = createdAt

		index[raw.ID] = len(raws)
		raws = append(raws, raw)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: row iteration error: %w", shared.ErrFetchFailed, err)
	}

	return raws, index, nil
}

func (a *CatalogAdapter) queryVersions(ctx context.Context, tx *sql.Tx, raws []RawItem, index map[string]int) error {
	query := `
		SELECT v.item_id, v.lyrics, v.is_primary
		FROM item_versions v
		JOIN items i ON i.id = v.item_id
		WHERE i.is_active = 1
		ORDER BY v.sequence ASC
	`

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: failed to query versions: %w", shared.ErrFetchFailed, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID  string
			version RawVersion
		)
		if err := rows.Scan(&itemID, &version.Lyrics, &version.Primary); err != nil {
			return fmt.Errorf("%w: failed to scan version: %w", shared.ErrFetchFailed, err)
		}

		i, ok := index[itemID]
		if !ok {
			continue
		}
		raws[i].Versions = append(raws[i].Versions, version)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: row iteration error: %w", shared.ErrFetchFailed, err)
	}

	return nil
}

// FetchCategories lists stored categories ordered by name, keyed by lowercased name.
//
// The synthetic "all" category is not added here.
func (a *CatalogAdapter) FetchCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT name, description FROM categories ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query categories: %w", shared.ErrFetchFailed, err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var (
			name        string
			description sql.NullString
		)
		if err := rows.Scan(&name, &description); err != nil {
			return nil, fmt.Errorf("%w: failed to scan category: %w", shared.ErrFetchFailed, err)
		}

		stored := models.PersistedCategory{Name: name, Description: description.String}
		categories = append(categories, stored.Listing())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %w", shared.ErrFetchFailed, err)
	}

	return categories, nil
}
