package design

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidDocument is returned when a document fails validation.
	ErrInvalidDocument = errors.New("design: invalid document")
	// ErrDuplicatePage is returned by LoadDir when two files share a page name.
	ErrDuplicatePage = errors.New("design: duplicate page name")
)

var validate = validator.New()

// Document is a page design as written in YAML.
//
//	name: settings
//	resettable: true
//	slots:
//	  - name: title
//	    value: Settings
//	  - name: saveButton
//	    kind: button
//	    attrs: {title: Save, action: save, target: owner}
//	  - name: helpLabel
//	    kind: label
//	    lazy: true
type Document struct {
	Name       string    `yaml:"name" validate:"required"`
	Resettable bool      `yaml:"resettable"`
	Slots      []SlotDoc `yaml:"slots" validate:"unique=Name,dive"`

	// Path is the file the document was read from, if any.
	Path string `yaml:"-"`
}

// SlotDoc describes one slot: a view kind with attributes, or a plain value.
type SlotDoc struct {
	Name  string         `yaml:"name" validate:"required"`
	Kind  string         `yaml:"kind,omitempty"`
	Attrs map[string]any `yaml:"attrs,omitempty"`
	// Lazy turns the view into a Generic descriptor: built on read only,
	// never by Awake and never localized.
	Lazy  bool `yaml:"lazy,omitempty"`
	Value any  `yaml:"value,omitempty"`
}

// IsView reports whether the slot describes a view rather than a value.
func (s SlotDoc) IsView() bool { return s.Kind != "" }

// Parse decodes and validates a document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse page design: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks required fields, slot name uniqueness and that every slot
// has exactly one of kind and value.
func (d *Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	for _, s := range d.Slots {
		switch {
		case s.Kind != "" && s.Value != nil:
			return fmt.Errorf("%w: slot [%s] has both kind and value", ErrInvalidDocument, s.Name)
		case s.Kind == "" && s.Value == nil:
			return fmt.Errorf("%w: slot [%s] has neither kind nor value", ErrInvalidDocument, s.Name)
		case s.Kind == "" && (s.Lazy || len(s.Attrs) > 0):
			return fmt.Errorf("%w: slot [%s] sets view fields on a value", ErrInvalidDocument, s.Name)
		}
	}
	return nil
}

// Load reads one document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// LoadDir reads every *.yaml and *.yml file in dir, sorted by file name.
// A missing directory yields no documents.
func LoadDir(dir string) ([]*Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var docs []*Document
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		doc, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[doc.Name]; ok {
			return nil, fmt.Errorf("%w: [%s] in %s and %s", ErrDuplicatePage, doc.Name, prev, doc.Path)
		}
		seen[doc.Name] = doc.Path
		docs = append(docs, doc)
	}
	slices.SortFunc(docs, func(a, b *Document) int { return strings.Compare(a.Path, b.Path) })
	return docs, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
