package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/repositories"
	"github.com/desertthunder/choirbook/internal/shared"
)

// Invalidator is notified after every successful catalog mutation.
type Invalidator interface {
	Invalidate()
}

// Curator performs administrative catalog mutations for curating roles.
type Curator struct {
	categories  *repositories.CategoryRepository
	items       *repositories.ItemRepository
	versions    *repositories.VersionRepository
	invalidator Invalidator
	logger      *log.Logger
}

// NewCurator creates a Curator writing to db and invalidating inv after each change.
func NewCurator(db *sql.DB, inv Invalidator, logger *log.Logger) *Curator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Curator{
		categories:  repositories.NewCategoryRepository(db),
		items:       repositories.NewItemRepository(db),
		versions:    repositories.NewVersionRepository(db),
		invalidator: inv,
		logger:      logger,
	}
}

func authorize(role models.Role) error {
	if !role.CanCurate() {
		return fmt.Errorf("%w: %s", shared.ErrForbidden, role)
	}
	return nil
}

// changed invalidates after a mutation and logs it.
func (c *Curator) changed(role models.Role, action, id string) {
	if c.invalidator != nil {
		c.invalidator.Invalidate()
	}
	c.logger.Info("catalog changed", "action", action, "id", id, "role", role)
}

// CreateCategory stores a new category.
func (c *Curator) CreateCategory(role models.Role, name, description string) (*models.PersistedCategory, error) {
	if err := authorize(role); err != nil {
		return nil, err
	}

	category := models.NewPersistedCategory(0, strings.TrimSpace(name), description)
	if err := c.categories.Create(category); err != nil {
		return nil, err
	}

	c.changed(role, "create category", category.ID())
	return category, nil
}

// DeleteCategory removes a category given by id or name. Its items keep existing without a category.
func (c *Curator) DeleteCategory(role models.Role, ref string) error {
	if err := authorize(role); err != nil {
		return err
	}

	category, err := c.FindCategory(ref)
	if err != nil {
		return err
	}

	if err := c.categories.Delete(category.ID()); err != nil {
		return err
	}

	c.changed(role, "delete category", category.ID())
	return nil
}

// FindCategory looks a category up by id, then by name.
func (c *Curator) FindCategory(ref string) (*models.PersistedCategory, error) {
	category, err := c.categories.Get(ref)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return c.categories.GetByName(strings.TrimSpace(ref))
}

// Item returns a stored item. Reads are not role-gated.
func (c *Curator) Item(id string) (*models.PersistedItem, error) {
	return c.items.Get(id)
}

// Versions lists an item's versions in insertion order.
func (c *Curator) Versions(itemID string) ([]*models.ItemVersion, error) {
	return c.versions.List(map[string]any{"item_id": itemID})
}

// CreateItem stores a new item. Songs created with lyrics get a primary version holding them.
func (c *Curator) CreateItem(role models.Role, item *models.PersistedItem, lyrics string) error {
	if err := authorize(role); err != nil {
		return err
	}

	if err := c.items.Create(item); err != nil {
		return err
	}

	if item.Kind == models.KindSong && strings.TrimSpace(lyrics) != "" {
		version := models.NewItemVersion(0, item.ID(), lyrics, true)
		if err := c.versions.Create(version); err != nil {
			// the item row exists even though its version does not
			c.changed(role, "create item", item.ID())
			return fmt.Errorf("item %s created without lyrics: %w", item.ID(), err)
		}
	}

	c.changed(role, "create item", item.ID())
	return nil
}

// UpdateItem writes every field of item.
func (c *Curator) UpdateItem(role models.Role, item *models.PersistedItem) error {
	if err := authorize(role); err != nil {
		return err
	}
	if err := c.items.Update(item); err != nil {
		return err
	}
	c.changed(role, "update item", item.ID())
	return nil
}

// DeleteItem removes an item and its versions.
func (c *Curator) DeleteItem(role models.Role, id string) error {
	if err := authorize(role); err != nil {
		return err
	}
	if err := c.items.Delete(id); err != nil {
		return err
	}
	c.changed(role, "delete item", id)
	return nil
}

// SetItemActive hides or restores an item without deleting it.
func (c *Curator) SetItemActive(role models.Role, id string, active bool) error {
	if err := authorize(role); err != nil {
		return err
	}
	if err := c.items.SetActive(id, active); err != nil {
		return err
	}

	action := "deactivate item"
	if active {
		action = "activate item"
	}
	c.changed(role, action, id)
	return nil
}

// AddVersion stores a new lyric version for a song.
func (c *Curator) AddVersion(role models.Role, version *models.ItemVersion) error {
	if err := authorize(role); err != nil {
		return err
	}

	item, err := c.items.Get(version.ItemID)
	if err != nil {
		return err
	}
	if item.Kind != models.KindSong {
		return fmt.Errorf("%w: versions belong to songs, %s is a %s", shared.ErrInvalidInput, item.ID(), item.Kind)
	}

	if err := c.versions.Create(version); err != nil {
		return err
	}
	c.changed(role, "add version", version.ID())
	return nil
}

// SetPrimaryVersion flags versionID as the primary version of itemID.
func (c *Curator) SetPrimaryVersion(role models.Role, itemID, versionID string) error {
	if err := authorize(role); err != nil {
		return err
	}
	if err := c.versions.SetPrimary(itemID, versionID); err != nil {
		return err
	}
	c.changed(role, "set primary version", versionID)
	return nil
}
