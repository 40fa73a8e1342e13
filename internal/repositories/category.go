package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
)

// CategoryRepository implements models.Repository[*models.PersistedCategory].
//
// Deleting a category leaves its items in place with no category.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new CategoryRepository with the given database connection
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category with generated ID and sequence
func (r *CategoryRepository) Create(category *models.PersistedCategory) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "categories")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	category.SetID(id)
	category.SetSequence(sequence)

	query := `
		INSERT INTO categories (id, sequence, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		category.Name,
		nullString(category.Description),
		category.CreatedAt(),
		category.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	return nil
}

// Get retrieves a category by ID
func (r *CategoryRepository) Get(id string) (*models.PersistedCategory, error) {
	query := `
		SELECT id, sequence, name, description, created_at, updated_at
		FROM categories
		WHERE id = ?
	`

	return r.scan(r.db.QueryRow(query, id))
}

// GetByName retrieves a category by name, ignoring case
func (r *CategoryRepository) GetByName(name string) (*models.PersistedCategory, error) {
	query := `
		SELECT id, sequence, name, description, created_at, updated_at
		FROM categories
		WHERE name = ? COLLATE NOCASE
	`

	return r.scan(r.db.QueryRow(query, name))
}

// Update modifies an existing category
func (r *CategoryRepository) Update(category *models.PersistedCategory) error {
	if err := category.Validate(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	category.SetUpdatedAt(now)

	query := `
		UPDATE categories
		SET name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, category.Name, nullString(category.Description), now, category.ID())
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	return checkAffected(result, "category", category.ID())
}

// Delete removes a category by ID
func (r *CategoryRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return checkAffected(result, "category", id)
}

// List retrieves all categories ordered by name. No criteria are supported.
func (r *CategoryRepository) List(criteria map[string]any) ([]*models.PersistedCategory, error) {
	query := `
		SELECT id, sequence, name, description, created_at, updated_at
		FROM categories
		ORDER BY name COLLATE NOCASE ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.PersistedCategory
	for rows.Next() {
		category, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

// scan reads a single category from a [sql.Row] or [sql.Rows]
func (r *CategoryRepository) scan(row scanner) (*models.PersistedCategory, error) {
	var (
		id          string
		sequence    int
		name        string
		description sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&id, &sequence, &name, &description, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}

	category := models.NewPersistedCategory(sequence, name, description.String)
	category.SetID(id)
	category.SetCreatedAt(createdAt)
	category.SetUpdatedAt(updatedAt)

	return category, nil
}
