package view

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/km-arc/go-page/framework/page"
)

var (
	// ErrUnknownKind is returned when no builder is registered for a kind.
	ErrUnknownKind = errors.New("view: unknown kind")
	// ErrMissingAttr is returned by builders when a required attribute is absent.
	ErrMissingAttr = errors.New("view: missing required attribute")
)

// ── Builder types ─────────────────────────────────────────────────────────────

// Builder creates an instance of a kind from a creation config.
type Builder func(kind string, cfg page.CreateConfig) (any, error)

// Decorator wraps or adjusts a freshly built instance.
type Decorator func(instance any, cfg page.CreateConfig) any

// ── Registry ──────────────────────────────────────────────────────────────────

// Registry maps kind names to builders and turns them into page descriptors.
//
// It supports:
//   - Register / Alias
//   - Tag / Tagged (group kinds under one name)
//   - Decorate (adjust every instance of a kind)
//   - AfterBuilding callbacks
type Registry struct {
	mu sync.RWMutex

	// kind → builder
	builders map[string]Builder

	// alias → kind (canonical name)
	aliases map[string]string

	// kind → decorators, applied in registration order
	decorators map[string][]Decorator

	// tag → []kind
	tags map[string][]string

	afterBuilding []func(kind string, instance any)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders:   make(map[string]Builder),
		aliases:    make(map[string]string),
		decorators: make(map[string][]Decorator),
		tags:       make(map[string][]string),
	}
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register binds a builder to a kind, replacing any previous one.
//
//	r.Register("badge", func(kind string, cfg page.CreateConfig) (any, error) {
//	    return view.New(kind, cfg), nil
//	})
func (r *Registry) Register(kind string, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[r.canonical(kind)] = b
}

// Alias registers an alternative name for a kind.
//
//	r.Alias("text_field", "input")
func (r *Registry) Alias(kind, alias string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if kind == alias {
		panic(fmt.Sprintf("view: [%s] is aliased to itself", kind))
	}
	r.aliases[alias] = r.canonical(kind)
}

// Tag groups kinds under a tag.
//
//	r.Tag([]string{"button", "text_field"}, "controls")
func (r *Registry) Tag(kinds []string, tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[tag] = append(r.tags[tag], kinds...)
}

// Tagged returns the kinds grouped under tag.
func (r *Registry) Tagged(tag string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.tags[tag])
}

// Decorate adds a decorator to every future instance of kind.
//
//	r.Decorate("button", func(instance any, _ page.CreateConfig) any {
//	    instance.(*view.View).Attrs["role"] = "button"
//	    return instance
//	})
func (r *Registry) Decorate(kind string, d Decorator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := r.canonical(kind)
	r.decorators[key] = append(r.decorators[key], d)
}

// AfterBuilding registers a callback fired after any instance is built.
func (r *Registry) AfterBuilding(cb func(kind string, instance any)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterBuilding = append(r.afterBuilding, cb)
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// Has reports whether kind (or an alias of it) is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[r.canonical(kind)]
	return ok
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.builders))
}

// Descriptor returns a page descriptor that builds kind with attrs. Eager
// descriptors are woken by page.Awake and localized by page.Loc.
//
//	d, err := r.Descriptor("button", map[string]any{"title": "Save"}, true)
func (r *Registry) Descriptor(kind string, attrs map[string]any, eager bool) (*page.Descriptor, error) {
	r.mu.RLock()
	key := r.canonical(kind)
	_, ok := r.builders[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: [%s]", ErrUnknownKind, kind)
	}

	create := func(cfg page.CreateConfig) (any, error) {
		return r.build(key, cfg)
	}
	opts := []page.DescriptorOption{page.WithName(key), page.WithAttrs(attrs)}
	if eager {
		return page.View(create, opts...), nil
	}
	return page.Factory(create, opts...), nil
}

// build runs the builder for key, then its decorators and callbacks.
func (r *Registry) build(key string, cfg page.CreateConfig) (any, error) {
	r.mu.RLock()
	b, ok := r.builders[key]
	decs := slices.Clone(r.decorators[key])
	cbs := slices.Clone(r.afterBuilding)
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: [%s]", ErrUnknownKind, key)
	}

	instance, err := b(key, cfg)
	if err != nil {
		return nil, err
	}
	for _, d := range decs {
		instance = d(instance, cfg)
	}
	for _, cb := range cbs {
		cb(key, instance)
	}
	return instance, nil
}

// canonical resolves an alias to its kind (caller holds mu).
func (r *Registry) canonical(kind string) string {
	if target, ok := r.aliases[kind]; ok {
		return target
	}
	return kind
}
