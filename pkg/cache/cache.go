package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/aretw0/pageflow/pkg/domain"
)

// DefaultSize is the number of entries kept when no size is configured.
const DefaultSize = 256

// Cache keeps recently used entries in a bounded LRU.
// Concurrent first lookups of the same descriptor share a single build.
type Cache struct {
	entries *lru.Cache[string, *Entry]
	group   singleflight.Group
	build   Builder
}

// New creates a cache holding up to size entries. A size <= 0 uses DefaultSize.
func New(size int, build Builder) (*Cache, error) {
	if build == nil {
		return nil, fmt.Errorf("cache builder is required")
	}
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, *Entry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry cache: %w", err)
	}
	return &Cache{entries: entries, build: build}, nil
}

// Get returns the entry of desc, building it on first use.
func (c *Cache) Get(desc *domain.ActionDescriptor) (*Entry, error) {
	if desc == nil {
		return nil, fmt.Errorf("%w: nil descriptor", domain.ErrPageNotFound)
	}
	if entry, ok := c.entries.Get(desc.ID); ok && entry.ActionDescriptor == desc {
		return entry, nil
	}

	v, err, _ := c.group.Do(desc.ID, func() (any, error) {
		if entry, ok := c.entries.Get(desc.ID); ok && entry.ActionDescriptor == desc {
			return entry, nil
		}
		entry, err := c.build(desc)
		if err != nil {
			return nil, err
		}
		c.entries.Add(desc.ID, entry)
		return entry, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build entry for %s: %w", desc.ID, err)
	}
	return v.(*Entry), nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached entry.
func (c *Cache) Purge() {
	c.entries.Purge()
}
