// Package lang loads flat key→text dictionaries, one YAML file per
// language code, and answers both directions: key→text for replies and
// text→key for parsing what users type at the bot.
package lang

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dict is an immutable dictionary for one language code. It is fully
// validated when built, so lookups never fail on malformed data.
type Dict struct {
	code    string
	entries map[string]string
	reverse map[string]string // lowercased text → key
}

// New builds a dictionary from an already-parsed key→text map. Ambiguous
// values resolve to the lexicographically first key, so reverse lookup is
// deterministic.
func New(code string, entries map[string]string) *Dict {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	reverse := make(map[string]string, len(entries))
	for _, k := range keys {
		v := strings.ToLower(entries[k])
		if _, taken := reverse[v]; !taken {
			reverse[v] = k
		}
	}

	return &Dict{code: code, entries: entries, reverse: reverse}
}

// Load reads <dir>/<code>.yaml (or .yml) and validates the whole dictionary
// up front: every value must be a plain string.
func Load(dir, code string) (*Dict, error) {
	data, err := readDictFile(dir, code)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", code, err)
	}

	entries := make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("dictionary %s: value of %q is not a string", code, k)
		}
		entries[k] = s
	}

	return New(code, entries), nil
}

func readDictFile(dir, code string) ([]byte, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		data, err := os.ReadFile(filepath.Join(dir, code+ext))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no dictionary for %q in %s", code, dir)
}

// Code returns the language code this dictionary was loaded for.
func (d *Dict) Code() string {
	return d.code
}

// Get is the forward lookup: key → translated text.
func (d *Dict) Get(key string) (string, bool) {
	v, ok := d.entries[key]
	return v, ok
}

// Reverse maps user-typed text back to the key whose translation matches
// it, ignoring case.
func (d *Dict) Reverse(text string) (string, bool) {
	k, ok := d.reverse[strings.ToLower(text)]
	return k, ok
}
