package catalog

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/choirbook/internal/models"
	"github.com/desertthunder/choirbook/internal/shared"
	"golang.org/x/sync/singleflight"
)

// Key identifies one memoized listing.
type Key struct {
	Search   string
	Selector string
	Role     models.Role
}

// Cache memoizes catalog listings until [Cache.Invalidate] is called.
//
// Concurrent misses for the same key share one computation. A result computed before an
// invalidation is handed to the callers that waited on it but never stored.
// Failures are never stored.
type Cache struct {
	mu         sync.Mutex
	version    uint64
	snapshot   []models.Entry
	hasEntries bool
	categories []models.Category
	results    map[Key]Result

	group  singleflight.Group
	logger *log.Logger
}

// NewCache creates an empty Cache.
func NewCache(logger *log.Logger) *Cache {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Cache{results: make(map[Key]Result), logger: logger}
}

// Result returns the memoized result for key, computing it on a miss.
func (c *Cache) Result(key Key, compute func() (Result, error)) (Result, error) {
	c.mu.Lock()
	if r, ok := c.results[key]; ok {
		c.mu.Unlock()
		return r, nil
	}
	version := c.version
	c.mu.Unlock()

	flight := fmt.Sprintf("result:%d:%d:%q:%q", version, key.Role, key.Selector, key.Search)
	v, err, _ := c.group.Do(flight, func() (any, error) {
		c.logger.Debug("catalog cache miss", "search", key.Search, "selector", key.Selector, "role", key.Role)

		r, err := compute()
		if err != nil {
			return Result{}, err
		}

		c.mu.Lock()
		if c.version == version {
			c.results[key] = r
		}
		c.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

// Entries returns the memoized entry snapshot, fetching it on a miss.
func (c *Cache) Entries(fetch func() ([]models.Entry, error)) ([]models.Entry, error) {
	c.mu.Lock()
	if c.hasEntries {
		entries := c.snapshot
		c.mu.Unlock()
		return entries, nil
	}
	version := c.version
	c.mu.Unlock()

	v, err, _ := c.group.Do(fmt.Sprintf("entries:%d", version), func() (any, error) {
		entries, err := fetch()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.version == version {
			c.snapshot = entries
			c.hasEntries = true
		}
		c.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Entry), nil
}

// Categories returns the memoized category listing, fetching it on a miss.
func (c *Cache) Categories(fetch func() ([]models.Category, error)) ([]models.Category, error) {
	c.mu.Lock()
	if c.categories != nil {
		categories := c.categories
		c.mu.Unlock()
		return categories, nil
	}
	version := c.version
	c.mu.Unlock()

	v, err, _ := c.group.Do(fmt.Sprintf("categories:%d", version), func() (any, error) {
		categories, err := fetch()
		if err != nil {
			return nil, err
		}
		if categories == nil {
			categories = []models.Category{}
		}

		c.mu.Lock()
		if c.version == version {
			c.categories = categories
		}
		c.mu.Unlock()
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Category), nil
}

// Invalidate drops every memoized listing, the entry snapshot and the category list.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.version++
	c.results = make(map[Key]Result)
	c.snapshot = nil
	c.hasEntries = false
	c.categories = nil
	version := c.version
	c.mu.Unlock()

	c.logger.Debug("catalog cache invalidated", "version", version)
}

// Len returns the number of memoized listings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}
