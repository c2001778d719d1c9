package design

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Table holds the strings of one page: slot → attribute → text.
type Table map[string]map[string]string

// Payloads converts the table to the shape page.Loc expects.
func (t Table) Payloads() map[string]any {
	out := make(map[string]any, len(t))
	for slot, attrs := range t {
		out[slot] = attrs
	}
	return out
}

// Bundle holds the tables of one locale: page → Table.
//
//	# strings/fr.yaml
//	settings:
//	  saveButton:
//	    title: Enregistrer
type Bundle map[string]Table

// Table returns the table of a page, nil if the bundle has none.
func (b Bundle) Table(page string) Table { return b[page] }

// BundlePath is the file a locale's bundle is read from.
func BundlePath(dir, locale string) string {
	return filepath.Join(dir, locale+".yaml")
}

// LoadBundle reads the bundle of locale from dir. A missing file is an
// empty bundle: pages then keep their design strings.
func LoadBundle(dir, locale string) (Bundle, error) {
	path := BundlePath(dir, locale)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Bundle{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseBundle(data)
}

// ParseBundle decodes a bundle.
func ParseBundle(data []byte) (Bundle, error) {
	b := Bundle{}
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse string bundle: %w", err)
	}
	return b, nil
}
