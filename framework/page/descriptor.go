package page

import (
	"maps"
	"sync"
)

// ── Descriptor kinds ──────────────────────────────────────────────────────────

// Kind tags a Descriptor with its capability.
type Kind uint8

const (
	// Generic descriptors are materialized only when their slot is read.
	Generic Kind = iota
	// Eager descriptors are view-like: Awake materializes them, Loc localizes
	// them and GetIfConfigured refuses to wake them.
	Eager
)

func (k Kind) String() string {
	switch k {
	case Generic:
		return "generic"
	case Eager:
		return "eager"
	default:
		return "unknown"
	}
}

// ── Creation ──────────────────────────────────────────────────────────────────

// CreateConfig is handed to a descriptor's creation function.
type CreateConfig struct {
	// Page is the back-reference to the owning page.
	Page *Page
	// Owner is the page owner, passed through untouched.
	Owner any
	// Slot is the name of the slot being materialized.
	Slot string
	// Attrs is a private copy of the descriptor attributes with any
	// localization overrides applied on top.
	Attrs map[string]any
}

// CreateFunc builds an instance from a descriptor.
type CreateFunc func(cfg CreateConfig) (any, error)

// LocFunc merges a localization payload into a descriptor's overrides.
type LocFunc func(overrides map[string]any, payload any)

// Awaker is implemented by instances that want a finalize call right after
// creation. It is skipped while the page is in design mode.
type Awaker interface {
	Awake()
}

// ── Descriptor ────────────────────────────────────────────────────────────────

// Descriptor is an uninstantiated slot value.
//
//	save := page.View(newButton, page.WithAttrs(map[string]any{"title": "Save"}))
//	p := page.New(page.Options{}, page.Slot("saveButton", save))
type Descriptor struct {
	kind   Kind
	name   string
	create CreateFunc
	attrs  map[string]any
	locFn  LocFunc

	mu        sync.RWMutex
	overrides map[string]any
}

// DescriptorOption configures a Descriptor at construction.
type DescriptorOption func(*Descriptor)

// WithName tags the descriptor with a name, used in logs and diagnostics.
func WithName(name string) DescriptorOption {
	return func(d *Descriptor) { d.name = name }
}

// WithAttrs sets the base attributes handed to the creation function.
func WithAttrs(attrs map[string]any) DescriptorOption {
	return func(d *Descriptor) { d.attrs = maps.Clone(attrs) }
}

// WithLoc replaces the default localization hook.
func WithLoc(fn LocFunc) DescriptorOption {
	return func(d *Descriptor) { d.locFn = fn }
}

// Factory returns a Generic descriptor.
func Factory(create CreateFunc, opts ...DescriptorOption) *Descriptor {
	return newDescriptor(Generic, create, opts)
}

// View returns an Eager descriptor.
func View(create CreateFunc, opts ...DescriptorOption) *Descriptor {
	return newDescriptor(Eager, create, opts)
}

func newDescriptor(kind Kind, create CreateFunc, opts []DescriptorOption) *Descriptor {
	d := &Descriptor{
		kind:      kind,
		create:    create,
		locFn:     MergeLoc,
		overrides: make(map[string]any),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.attrs == nil {
		d.attrs = make(map[string]any)
	}
	return d
}

// Kind reports the descriptor kind.
func (d *Descriptor) Kind() Kind { return d.kind }

// Name returns the name tag, empty if none was given.
func (d *Descriptor) Name() string { return d.name }

// Eager reports whether the descriptor is view-like.
func (d *Descriptor) Eager() bool { return d.kind == Eager }

// Attrs returns the base attributes merged with localization overrides.
func (d *Descriptor) Attrs() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := maps.Clone(d.attrs)
	maps.Copy(out, d.overrides)
	return out
}

// Loc hands payload to the descriptor's localization hook. Instances that
// already exist are not affected; only later creations see the overrides.
func (d *Descriptor) Loc(payload any) {
	if d.locFn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locFn(d.overrides, payload)
}

// ClearLoc drops every localization override, so later creations see the
// base attributes again.
func (d *Descriptor) ClearLoc() {
	d.mu.Lock()
	defer d.mu.Unlock()
	clear(d.overrides)
}

func (d *Descriptor) instantiate(cfg CreateConfig) (any, error) {
	cfg.Attrs = d.Attrs()
	return d.create(cfg)
}

// MergeLoc is the default localization hook. String and generic maps are
// copied into the overrides; any other payload is ignored.
func MergeLoc(overrides map[string]any, payload any) {
	switch p := payload.(type) {
	case map[string]string:
		for k, v := range p {
			overrides[k] = v
		}
	case map[string]any:
		maps.Copy(overrides, p)
	}
}
