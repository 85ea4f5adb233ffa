package locale

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// Catalog maps string keys to display text per locale.
type Catalog struct {
	tables map[Locale]map[string]string
}

// Load reads the embedded string tables.
func Load() (*Catalog, error) {
	c := &Catalog{tables: make(map[Locale]map[string]string)}
	for _, l := range Supported() {
		data, err := localeFiles.ReadFile(path.Join("locales", string(l)+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("read %s strings: %w", l, err)
		}
		table := make(map[string]string)
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("decode %s strings: %w", l, err)
		}
		c.tables[l] = table
	}
	return c, nil
}

// MustLoad is Load for package initialization and tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the text for key, falling back to English and then to
// the key itself.
func (c *Catalog) Lookup(l Locale, key string) string {
	if s, ok := c.tables[l][key]; ok && strings.TrimSpace(s) != "" {
		return s
	}
	if s, ok := c.tables[Default][key]; ok {
		return s
	}
	return key
}

// Keys lists the keys known for l.
func (c *Catalog) Keys(l Locale) []string {
	keys := make([]string, 0, len(c.tables[l]))
	for k := range c.tables[l] {
		keys = append(keys, k)
	}
	return keys
}
