// internal/i18n/i18n.go
//
// Locale dictionaries for server-rendered strings.
//
// Context
// -------
// The handful of pages DocForge renders server-side (maintenance notice,
// auth shells, error pages) need localized strings.  Dictionaries are
// flat JSON maps under `conf/locales/<code>.json`, loaded lazily on first
// use, deduplicated with singleflight so a cold burst issues one disk
// read per locale, and kept in a small LRU.
//
// Lookup falls back key → default locale → the key itself, so a missing
// translation degrades to visible English or a raw key, never an error.
//
// Notes
// -----
// • Reload() empties the cache; the admin settings page calls it after a
//   dictionary edit.
// • Oxford commas, two spaces after periods.

package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/docforge/docforge/internal/cache"
	"github.com/docforge/docforge/internal/locale"
)

// Dictionary is one locale's flat key→string map.
type Dictionary map[string]string

// Catalog loads and caches dictionaries.  Safe for concurrent use.
type Catalog struct {
	dir string

	mu  sync.Mutex
	lru *cache.LRU
	sf  singleflight.Group
}

// NewCatalog reads dictionaries from dir.
func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir, lru: cache.New(len(locale.All()) + 2)}
}

// Lookup returns the dictionary for loc, loading it on first use.
// Unsupported codes resolve to the default locale.
func (c *Catalog) Lookup(loc string) (Dictionary, error) {
	if !locale.Supported(loc) {
		loc = locale.Default
	}

	c.mu.Lock()
	if v, ok := c.lru.Get(loc); ok {
		c.mu.Unlock()
		return v.(Dictionary), nil
	}
	c.mu.Unlock()

	v, err, _ := c.sf.Do(loc, func() (any, error) {
		d, err := c.load(loc)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.lru.Add(loc, d)
		c.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Dictionary), nil
}

// T translates key for loc with the documented fallback chain.
func (c *Catalog) T(loc, key string) string {
	if d, err := c.Lookup(loc); err == nil {
		if s, ok := d[key]; ok {
			return s
		}
	}
	if loc != locale.Default {
		if d, err := c.Lookup(locale.Default); err == nil {
			if s, ok := d[key]; ok {
				return s
			}
		}
	}
	return key
}

// Reload drops every cached dictionary.
func (c *Catalog) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, code := range locale.All() {
		c.lru.Remove(code)
	}
}

func (c *Catalog) load(loc string) (Dictionary, error) {
	path := filepath.Join(c.dir, loc+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s: %w", path, err)
	}
	var d Dictionary
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("i18n: parse %s: %w", path, err)
	}
	return d, nil
}
