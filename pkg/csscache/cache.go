package csscache

import "strings"

// CacheKey is the single well-known slot the compiled stylesheet lives
// under in the options store.
const CacheKey = "localfonts_compiled_css"

// OptionStore is the narrow key-value interface the cache needs.
type OptionStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Cache memoizes the compiled stylesheet behind a single key. It has no
// TTL and no size bound: correctness relies entirely on every catalog
// mutation calling Invalidate before the next read.
type Cache struct {
	opts OptionStore
}

// New creates a Cache over the given options store.
func New(opts OptionStore) *Cache {
	return &Cache{opts: opts}
}

// Get returns the cached stylesheet. The boolean distinguishes an
// absent slot from an explicitly cached empty string, which is a valid
// hit.
func (c *Cache) Get() (string, bool, error) {
	raw, found, err := c.opts.Get(CacheKey)
	if err != nil || !found {
		return "", false, err
	}
	return unescape(raw), true, nil
}

// Put stores the stylesheet, replacing any previous value.
func (c *Cache) Put(css string) error {
	return c.opts.Set(CacheKey, escape(css))
}

// Invalidate removes the cached stylesheet.
func (c *Cache) Invalidate() error {
	return c.opts.Delete(CacheKey)
}

// escape and unescape must stay symmetric: the stylesheet contains
// quotes and backslashes and has to round-trip byte for byte.
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '\'', '"':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
