// FILE: lixenwraith/keyprop/source.go
package keyprop

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Source is a single configuration backend queried for raw values.
// Properties cache by Source identity, so implementations should be pointer types.
type Source interface {
	// ContainsKey reports whether the source holds a value for key.
	ContainsKey(key string) bool
	// Get returns the raw value stored for key.
	Get(key string) (any, bool)
}

// MapSource is an immutable Source over a flat map of dot-separated keys.
// A section prefix such as "server" for "server.port" is contained but has no
// value of its own; Decode gathers it into a struct.
type MapSource struct {
	name     string
	values   map[string]any
	sections map[string]struct{}
}

// NewMapSource creates a MapSource from a possibly nested map.
// Nested map[string]any values are flattened into dot-separated keys.
// The input map is copied and never retained.
func NewMapSource(name string, data map[string]any) *MapSource {
	return newFlatSource(name, flattenMap(data, ""))
}

// newFlatSource takes ownership of an already flat map.
func newFlatSource(name string, flat map[string]any) *MapSource {
	sections := make(map[string]struct{})
	for key := range flat {
		for i := strings.LastIndexByte(key, '.'); i > 0; i = strings.LastIndexByte(key[:i], '.') {
			sections[key[:i]] = struct{}{}
		}
	}
	return &MapSource{name: name, values: flat, sections: sections}
}

// EmptySource returns a source holding no keys.
func EmptySource() *MapSource {
	return newFlatSource("empty", map[string]any{})
}

// ContainsKey implements Source. It is true for keys and section prefixes.
func (s *MapSource) ContainsKey(key string) bool {
	if _, ok := s.values[key]; ok {
		return true
	}
	_, ok := s.sections[key]
	return ok
}

// Get implements Source.
func (s *MapSource) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Name returns the label given at creation, usually a file path or "env".
func (s *MapSource) Name() string { return s.name }

// Len returns the number of keys.
func (s *MapSource) Len() int { return len(s.values) }

// Keys returns all keys in sorted order.
func (s *MapSource) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// KeysWithPrefix returns, sorted, the keys equal to prefix or nested below it:
// "server" matches "server" and "server.port" but not "serverless".
// An empty prefix returns every key.
func (s *MapSource) KeysWithPrefix(prefix string) []string {
	if prefix == "" {
		return s.Keys()
	}
	var keys []string
	for key := range s.values {
		if underPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// Entries returns the values under prefix, keyed by full key. The map is a copy.
func (s *MapSource) Entries(prefix string) map[string]any {
	entries := make(map[string]any)
	for key, v := range s.values {
		if prefix == "" || underPrefix(key, prefix) {
			entries[key] = v
		}
	}
	return entries
}

// KeysUnder lists the keys of src under prefix, using KeysWithPrefix when src has it
// and filtering Keys otherwise. Sources that cannot enumerate keys yield nil.
func KeysUnder(src Source, prefix string) []string {
	switch l := src.(type) {
	case interface{ KeysWithPrefix(string) []string }:
		return l.KeysWithPrefix(prefix)
	case interface{ Keys() []string }:
		var keys []string
		for _, key := range l.Keys() {
			if prefix == "" || underPrefix(key, prefix) {
				keys = append(keys, key)
			}
		}
		return keys
	}
	return nil
}

func underPrefix(key, prefix string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+".")
}

func (s *MapSource) String() string {
	return fmt.Sprintf("MapSource(%s, %d keys)", s.name, len(s.values))
}

// Dump writes the source as a TOML document, nesting dot-separated keys into tables.
func (s *MapSource) Dump(w io.Writer) error {
	nestedData := make(map[string]any)
	for key, value := range s.values {
		setNestedValue(nestedData, key, value)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(nestedData); err != nil {
		return fmt.Errorf("failed to marshal source %q to TOML: %w", s.name, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
