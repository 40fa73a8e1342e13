package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
)

const itemColumns = `
	id, sequence, type, title, author, composer, category_id, number, hymn_number,
	english_lyrics, localized_lyrics, year_written, tags, sheet_music_url, audio_url,
	video_url, key_signature, time_signature, tempo, is_active, created_at, updated_at
`

// ItemRepository implements models.Repository[*models.PersistedItem] for song and hymn rows.
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository with the given database connection
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts a new item with generated ID and sequence
func (r *ItemRepository) Create(item *models.PersistedItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	tags, err := encodeTags(item.Tags)
	if err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "items")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	item.SetID(id)
	item.SetSequence(sequence)

	query := `INSERT INTO items (` + itemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		id,
		sequence,
		item.Kind.String(),
		item.Title,
		nullString(item.Author),
		nullString(item.Composer),
		nullString(item.CategoryID),
		nullInt(item.Number),
		nullInt(item.HymnNumber),
		nullText(item.EnglishLyrics),
		nullText(item.LocalizedLyrics),
		nullInt(item.YearWritten),
		tags,
		nullString(item.SheetMusicURL),
		nullString(item.AudioURL),
		nullString(item.VideoURL),
		nullString(item.KeySignature),
		nullString(item.TimeSignature),
		nullString(item.Tempo),
		item.Active,
		item.CreatedAt(),
		item.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	return nil
}

// Get retrieves an item by ID, active or not
func (r *ItemRepository) Get(id string) (*models.PersistedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	return r.scan(r.db.QueryRow(query, id))
}

// Update modifies an existing item
func (r *ItemRepository) Update(item *models.PersistedItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	tags, err := encodeTags(item.Tags)
	if err != nil {
		return err
	}

	now := time.Now()
	item.SetUpdatedAt(now)

	query := `
		UPDATE items
		SET type = ?, title = ?, author = ?, composer = ?, category_id = ?, number = ?,
			hymn_number = ?, english_lyrics = ?, localized_lyrics = ?, year_written = ?, tags = ?,
			sheet_music_url = ?, audio_url = ?, video_url = ?, key_signature = ?,
			time_signature = ?, tempo = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		item.Kind.String(),
		item.Title,
		nullString(item.Author),
		nullString(item.Composer),
		nullString(item.CategoryID),
		nullInt(item.Number),
		nullInt(item.HymnNumber),
		nullText(item.EnglishLyrics),
		nullText(item.LocalizedLyrics),
		nullInt(item.YearWritten),
		tags,
		nullString(item.SheetMusicURL),
		nullString(item.AudioURL),
		nullString(item.VideoURL),
		nullString(item.KeySignature),
		nullString(item.TimeSignature),
		nullString(item.Tempo),
		item.Active,
		now,
		item.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	return checkAffected(result, "item", item.ID())
}

// SetActive flips an item's active flag. Inactive items never reach readers.
func (r *ItemRepository) SetActive(id string, active bool) error {
	result, err := r.db.Exec(`UPDATE items SET is_active = ?, updated_at = ? WHERE id = ?`, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	return checkAffected(result, "item", id)
}

// Delete removes an item and, by cascade, its versions
func (r *ItemRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return checkAffected(result, "item", id)
}

// List retrieves items matching the given criteria, newest first.
//
// Supported criteria: "kind" ([models.EntryKind]), "category_id" (string), "active" (bool).
func (r *ItemRepository) List(criteria map[string]any) ([]*models.PersistedItem, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1 = 1`
	args := []any{}

	if kind, ok := criteria["kind"].(models.EntryKind); ok {
		query += " AND type = ?"
		args = append(args, kind.String())
	}

	if categoryID, ok := criteria["category_id"].(string); ok && categoryID != "" {
		query += " AND category_id = ?"
		args = append(args, categoryID)
	}

	if active, ok := criteria["active"].(bool); ok {
		query += " AND is_active = ?"
		args = append(args, active)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.PersistedItem
	for rows.Next() {
		item, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// scan reads a single item from a [sql.Row] or [sql.Rows]
func (r *ItemRepository) scan(row scanner) (*models.PersistedItem, error) {
	var (
		id              string
		sequence        int
		kind            string
		title           string
		author          sql.NullString
		composer        sql.NullString
		categoryID      sql.NullString
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
		active          bool
		createdAt       time.Time
		updatedAt       time.Time
	)

	err := row.Scan(
		&id, &sequence, &kind, &title, &author, &composer, &categoryID, &number, &hymnNumber,
		&englishLyrics, &localizedLyrics, &yearWritten, &tags, &sheetMusicURL, &audioURL,
		&videoURL, &keySignature, &timeSignature, &tempo, &active, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: item", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}

	entryKind, err := models.ParseEntryKind(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: item %s: %w", shared.ErrMalformedRow, id, err)
	}

	decoded, err := decodeTags(tags)
	if err != nil {
		return nil, fmt.Errorf("%w: item %s: %w", shared.ErrMalformedRow, id, err)
	}
	if decoded == nil {
		decoded = []string{}
	}

	item := models.NewPersistedItem(sequence, entryKind, title)
	item.SetID(id)
	item.SetCreatedAt(createdAt)
	item.SetUpdatedAt(updatedAt)
	item.Author = author.String
	item.Composer = composer.String
	item.CategoryID = categoryID.String
	item.Number = intFromNull(number)
	item.HymnNumber = intFromNull(hymnNumber)
	item.EnglishLyrics = textFromNull(englishLyrics)
	item.LocalizedLyrics = textFromNull(localizedLyrics)
	item.YearWritten = intFromNull(yearWritten)
	item.Tags = decoded
	item.SheetMusicURL = sheetMusicURL.String
	item.AudioURL = audioURL.String
	item.VideoURL = videoURL.String
	item.KeySignature = keySignature.String
	item.TimeSignature = timeSignature.String
	item.Tempo = tempo.String
	item.Active = active

	return item, nil
}
