package templates

import (
	"path"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SettingField describes one configurable option a template exposes.
type SettingField struct {
	ID      string   `yaml:"id"`
	Type    string   `yaml:"type"`
	Label   string   `yaml:"label"`
	Default any      `yaml:"default,omitempty"`
	Options []string `yaml:"options,omitempty"`
}

// Config is a template's settings schema. The zero value (empty field list)
// is the generic settings object used when a template registers no schema:
// rendering proceeds with defaults rather than failing.
type Config struct {
	Class  string
	Fields []SettingField
}

// Defaults returns the schema's default values keyed by field id.
func (c Config) Defaults() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(c.Fields))
	for _, field := range c.Fields {
		if field.Default != nil {
			out[field.ID] = field.Default
		}
	}
	return out
}

// Merge overlays profile-supplied settings onto the schema defaults.
func (c Config) Merge(overrides map[string]any) map[string]any {
	out := c.Defaults()
	if out == nil {
		out = make(map[string]any, len(overrides))
	}
	for key, value := range overrides {
		out[key] = value
	}
	return out
}

var titleCaser = cases.Title(language.Und)

// ClassName derives a configuration class name from a template file name.
// Hyphens, underscores, and spaces split words; each word is capitalized and
// the words rejoin with underscores: "manage-document.html" becomes
// "Manage_Document".
func ClassName(filename string) string {
	stem := path.Base(filename)
	if ext := path.Ext(stem); ext != "" {
		stem = strings.TrimSuffix(stem, ext)
	}

	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, word := range words {
		words[i] = titleCaser.String(word)
	}
	return strings.Join(words, "_")
}

// ConfigRegistry maps configuration class names to settings schemas.
type ConfigRegistry struct {
	mu      sync.RWMutex
	byClass map[string]Config
}

// NewConfigRegistry creates an empty registry.
func NewConfigRegistry() *ConfigRegistry {
	return &ConfigRegistry{byClass: make(map[string]Config)}
}

// Register stores a schema under its class name, replacing any previous one.
func (r *ConfigRegistry) Register(class string, config Config) {
	if strings.TrimSpace(class) == "" {
		return
	}
	config.Class = class

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byClass[class] = config
}

// Lookup derives the class for a template file name and returns its schema.
// Unknown classes yield the generic empty settings object.
func (r *ConfigRegistry) Lookup(filename string) Config {
	class := ClassName(filename)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if config, ok := r.byClass[class]; ok {
		return config
	}
	return Config{Class: class}
}
