package domain

// Collection maps cork keys to entries and remembers insertion order,
// which is the order entries appear in their manifest.
type Collection struct {
	keys    []string
	entries map[string]Cork
}

func NewCollection() *Collection {
	return &Collection{entries: make(map[string]Cork)}
}

// Set inserts or replaces an entry. A replaced entry keeps its original
// position.
func (c *Collection) Set(key string, cork Cork) {
	if c.entries == nil {
		c.entries = make(map[string]Cork)
	}
	if _, ok := c.entries[key]; !ok {
		c.keys = append(c.keys, key)
	}
	cork.Key = key
	c.entries[key] = cork
}

func (c *Collection) Get(key string) (Cork, bool) {
	if c == nil {
		return Cork{}, false
	}
	cork, ok := c.entries[key]
	return cork, ok
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

func (c *Collection) Keys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// Entries returns the corks in insertion order.
func (c *Collection) Entries() []Cork {
	if c == nil {
		return nil
	}
	out := make([]Cork, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.entries[k])
	}
	return out
}
