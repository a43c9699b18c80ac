// Package i18n serves display labels from YAML message catalogs.
package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLocale is consulted when the active locale lacks a key
const DefaultLocale = "en"

// Catalog holds flattened messages per locale. Nested YAML maps become
// dotted keys, e.g. module: {vehicle: ...} is "module.vehicle".
type Catalog struct {
	locale   string
	messages map[string]map[string]string
}

// Load reads every <locale>.yaml in dir. A missing dir yields an empty
// catalog so labels fall back to their keys.
func Load(dir, locale string) (*Catalog, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	c := &Catalog{locale: locale, messages: map[string]map[string]string{}}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog dir: %w", err)
	}

	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		if err := c.Add(strings.TrimSuffix(e.Name(), ext), data); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add merges a YAML document into the messages of locale
func (c *Catalog) Add(locale string, data []byte) error {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal catalog %s: %w", locale, err)
	}
	msgs, ok := c.messages[locale]
	if !ok {
		msgs = map[string]string{}
		c.messages[locale] = msgs
	}
	flatten("", doc, msgs)
	return nil
}

func flatten(prefix string, node map[string]interface{}, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Translate implements port.Translator
func (c *Catalog) Translate(key string) string {
	if msg, ok := c.messages[c.locale][key]; ok {
		return msg
	}
	if msg, ok := c.messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Locale returns the active locale
func (c *Catalog) Locale() string {
	return c.locale
}

// Locales lists the loaded locales
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.messages))
	for l := range c.messages {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
