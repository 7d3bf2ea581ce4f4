package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Options is the global options file, a TOML document read at startup.
// Dotted keys traverse nested tables: "pdf.default_template" reaches
// [pdf] default_template.
type Options struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// LoadOptions reads the options file. A missing file is not an error; it
// yields an empty options set that saves back to the same path.
func LoadOptions(path string) (*Options, error) {
	options := &Options{path: path, values: make(map[string]any)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return options, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read options %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &options.values); err != nil {
		return nil, fmt.Errorf("store: parse options %s: %w", path, err)
	}
	return options, nil
}

// Get resolves a dotted key, returning fallback when any segment is missing
// or a non-table appears mid-path.
func (o *Options) Get(key string, fallback any) any {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var current any = o.values
	for _, segment := range strings.Split(key, ".") {
		table, ok := current.(map[string]any)
		if !ok {
			return fallback
		}
		current, ok = table[segment]
		if !ok {
			return fallback
		}
	}
	return current
}

// Set writes a dotted key, creating intermediate tables as needed.
func (o *Options) Set(key string, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()

	segments := strings.Split(key, ".")
	table := o.values
	for _, segment := range segments[:len(segments)-1] {
		next, ok := table[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			table[segment] = next
		}
		table = next
	}
	table[segments[len(segments)-1]] = value
}

// Save writes the options back to their file.
func (o *Options) Save() error {
	o.mu.RLock()
	data, err := toml.Marshal(o.values)
	o.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("store: marshal options: %w", err)
	}
	if err := os.WriteFile(o.path, data, 0o644); err != nil {
		return fmt.Errorf("store: write options %s: %w", o.path, err)
	}
	return nil
}
