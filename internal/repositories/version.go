package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
)

// VersionRepository implements models.Repository[*models.ItemVersion].
//
// At most one version per item is flagged primary; flagging a version clears the flag on its siblings.
type VersionRepository struct {
	db *sql.DB
}

// NewVersionRepository creates a new VersionRepository with the given database connection
func NewVersionRepository(db *sql.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// Create inserts a new version with generated ID and sequence
func (r *VersionRepository) Create(version *models.ItemVersion) error {
	if err := version.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "item_versions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	version.SetID(id)
	version.SetSequence(sequence)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if version.Primary {
		if _, err := tx.Exec(`UPDATE item_versions SET is_primary = 0 WHERE item_id = ?`, version.ItemID); err != nil {
			return fmt.Errorf("failed to clear primary version: %w", err)
		}
	}

	query := `
		INSERT INTO item_versions (id, sequence, item_id, title, lyrics, language_code, notes, is_primary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		id,
		sequence,
		version.ItemID,
		nullString(version.Title),
		version.Lyrics,
		nullString(version.LanguageCode),
		nullString(version.Notes),
		version.Primary,
		version.CreatedAt(),
		version.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit version: %w", err)
	}

	return nil
}

// Get retrieves a version by ID
func (r *VersionRepository) Get(id string) (*models.ItemVersion, error) {
	query := `
		SELECT id, sequence, item_id, title, lyrics, language_code, notes, is_primary, created_at, updated_at
		FROM item_versions
		WHERE id = ?
	`

	return r.scan(r.db.QueryRow(query, id))
}

// Update modifies a version's text. The primary flag is changed through [VersionRepository.SetPrimary].
func (r *VersionRepository) Update(version *models.ItemVersion) error {
	if err := version.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	version.SetUpdatedAt(now)

	query := `
		UPDATE item_versions
		SET title = ?, lyrics = ?, language_code = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		nullString(version.Title),
		version.Lyrics,
		nullString(version.LanguageCode),
		nullString(version.Notes),
		now,
		version.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update version: %w", err)
	}

	return checkAffected(result, "version", version.ID())
}

// SetPrimary flags versionID as the primary version of itemID and clears the flag on every other version.
func (r *VersionRepository) SetPrimary(itemID, versionID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE item_versions SET is_primary = 1, updated_at = ? WHERE id = ? AND item_id = ?`,
		time.Now(), versionID, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to set primary version: %w", err)
	}
	if err := checkAffected(result, "version", versionID); err != nil {
		return err
	}

	if _, err := tx.Exec(`UPDATE item_versions SET is_primary = 0 WHERE item_id = ? AND id != ?`, itemID, versionID); err != nil {
		return fmt.Errorf("failed to clear primary version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit primary version: %w", err)
	}

	return nil
}

// Delete removes a version by ID
func (r *VersionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM item_versions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete version: %w", err)
	}

	return checkAffected(result, "version", id)
}

// List retrieves versions in insertion order. Supported criteria: "item_id" (string).
func (r *VersionRepository) List(criteria map[string]any) ([]*models.ItemVersion, error) {
	query := `
		SELECT id, sequence, item_id, title, lyrics, language_code, notes, is_primary, created_at, updated_at
		FROM item_versions
		WHERE 1 = 1
	`
	args := []any{}

	if itemID, ok := criteria["item_id"].(string); ok && itemID != "" {
		query += " AND item_id = ?"
		args = append(args, itemID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.ItemVersion
	for rows.Next() {
		version, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return versions, nil
}

// scan reads a single version from a [sql.Row] or [sql.Rows]
func (r *VersionRepository) scan(row scanner) (*models.ItemVersion, error) {
	var (
		id           string
		sequence     int
		itemID       string
		title        sql.NullString
		lyrics       string
		languageCode sql.NullString
		notes        sql.NullString
		primary      bool
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(&id, &sequence, &itemID, &title, &lyrics, &languageCode, &notes, &primary, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: version", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan version: %w", err)
	}

	version := models.NewItemVersion(sequence, itemID, lyrics, primary)
	version.SetID(id)
	version.SetCreatedAt(createdAt)
	version.SetUpdatedAt(updatedAt)
	version.Title = title.String
	version.LanguageCode = languageCode.String
	version.Notes = notes.String

	return version, nil
}
