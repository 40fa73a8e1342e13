package models

import (
	"fmt"
	"strings"
)

// AllCategoryID is the id of the synthetic category that selects every entry.
const AllCategoryID = "all"

// Category is a category as listed to readers.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AllCategory returns the synthetic category prepended to every listing.
func AllCategory(label string) Category {
	if label == "" {
		label = "All Songs"
	}
	return Category{ID: AllCategoryID, Name: label, Description: "All available songs"}
}

// IsAll reports whether c is the synthetic "all" category.
func (c Category) IsAll() bool {
	return c.ID == AllCategoryID
}

// PersistedCategory is a stored category row.
type PersistedCategory struct {
	record
	Name        string
	Description string
}

// NewPersistedCategory creates a category with the given sequence number.
func NewPersistedCategory(sequence int, name, description string) *PersistedCategory {
	return &PersistedCategory{
		record:      newRecord(sequence),
		Name:        name,
		Description: description,
	}
}

// Validate checks the category name.
func (c *PersistedCategory) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("category name is required")
	}
	if strings.EqualFold(name, AllCategoryID) {
		return fmt.Errorf("category name %q is reserved", c.Name)
	}
	return nil
}

// Listing converts a stored category into its listed form, keyed by lowercased name.
func (c *PersistedCategory) Listing() Category {
	return Category{
		ID:          strings.ToLower(c.Name),
		Name:        c.Name,
		Description: c.Description,
	}
}
