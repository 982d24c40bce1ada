package translations

import "sort"

// AttributeCache stores translated values of one record instance, keyed by
// locale and attribute, together with the staged (dirty) attributes per
// locale and whether a stored row is known to exist for a locale.
//
// Locales passed to the cache must already be normalised. The cache is owned
// by a single record value and is not safe for concurrent use.
type AttributeCache struct {
	values map[string]map[string]any
	staged map[string]map[string]struct{}
	rows   map[string]bool
}

// NewAttributeCache returns an empty cache.
func NewAttributeCache() *AttributeCache {
	c := &AttributeCache{}
	c.Reset()
	return c
}

// Read returns the cached value for (locale, attribute).
func (c *AttributeCache) Read(locale, attribute string) (any, bool) {
	values, ok := c.values[locale]
	if !ok {
		return nil, false
	}
	value, ok := values[attribute]
	return value, ok
}

// Write stages value under locale, replacing any cached value.
func (c *AttributeCache) Write(locale, attribute string, value any) {
	c.set(locale, attribute, value)
	staged, ok := c.staged[locale]
	if !ok {
		staged = map[string]struct{}{}
		c.staged[locale] = staged
	}
	staged[attribute] = struct{}{}
}

// Load merges a stored row into the cache as clean values. Staged values are
// kept. A nil row records that no row exists for locale.
func (c *AttributeCache) Load(locale string, row *Row) {
	if row == nil {
		c.rows[locale] = false
		return
	}
	c.rows[locale] = true
	staged := c.staged[locale]
	for attribute, value := range row.Values {
		if _, dirty := staged[attribute]; dirty {
			continue
		}
		c.set(locale, attribute, value)
	}
}

// RowState reports whether a stored row exists for locale; known is false
// when the store has not been consulted yet.
func (c *AttributeCache) RowState(locale string) (present, known bool) {
	present, known = c.rows[locale]
	return present, known
}

// Staged returns the staged values of locale.
func (c *AttributeCache) Staged(locale string) map[string]any {
	staged := c.staged[locale]
	if len(staged) == 0 {
		return nil
	}
	out := make(map[string]any, len(staged))
	for attribute := range staged {
		out[attribute] = c.values[locale][attribute]
	}
	return out
}

// DirtyLocales lists locales with staged writes, sorted.
func (c *AttributeCache) DirtyLocales() []string {
	out := make([]string, 0, len(c.staged))
	for locale, staged := range c.staged {
		if len(staged) > 0 {
			out = append(out, locale)
		}
	}
	sort.Strings(out)
	return out
}

// Dirty reports whether any locale has staged writes.
func (c *AttributeCache) Dirty() bool {
	for _, staged := range c.staged {
		if len(staged) > 0 {
			return true
		}
	}
	return false
}

// MarkFlushed clears the staged flags of locale. When persisted, cached
// values stay and mirror the stored row. Otherwise no row was written, so
// the locale's values are dropped and it is recorded as absent.
func (c *AttributeCache) MarkFlushed(locale string, persisted bool) {
	delete(c.staged, locale)
	if persisted {
		c.rows[locale] = true
		return
	}
	delete(c.values, locale)
	c.rows[locale] = false
}

// Reset discards every cached value, staged write and row marker.
func (c *AttributeCache) Reset() {
	c.values = map[string]map[string]any{}
	c.staged = map[string]map[string]struct{}{}
	c.rows = map[string]bool{}
}

func (c *AttributeCache) set(locale, attribute string, value any) {
	values, ok := c.values[locale]
	if !ok {
		values = map[string]any{}
		c.values[locale] = values
	}
	values[attribute] = value
}
