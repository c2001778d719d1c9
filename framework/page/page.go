package page

import (
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ── Slots ─────────────────────────────────────────────────────────────────────

type slotKind uint8

const (
	slotPlain slotKind = iota
	slotDescriptor
	slotInstance
)

// slot holds exactly one of: a plain value, an unmaterialized descriptor or
// a materialized instance.
type slot struct {
	kind  slotKind
	desc  *Descriptor
	value any
}

func newSlot(value any) slot {
	if d, ok := value.(*Descriptor); ok && d != nil {
		return slot{kind: slotDescriptor, desc: d}
	}
	return slot{kind: slotPlain, value: value}
}

// SlotState describes a slot without touching it.
type SlotState uint8

const (
	// Missing means no slot has that name.
	Missing SlotState = iota
	// Plain slots hold an ordinary value.
	Plain
	// Unmaterialized slots still hold a descriptor.
	Unmaterialized
	// Materialized slots hold the instance built from their descriptor.
	Materialized
)

func (s SlotState) String() string {
	switch s {
	case Plain:
		return "plain"
	case Unmaterialized:
		return "unmaterialized"
	case Materialized:
		return "materialized"
	default:
		return "missing"
	}
}

// ── Page ──────────────────────────────────────────────────────────────────────

// Entry pairs a slot name with its initial value.
type Entry struct {
	Name  string
	Value any
}

// Slot is shorthand for building an Entry.
//
//	p := page.New(opts, page.Slot("title", "Settings"), page.Slot("save", saveDesc))
func Slot(name string, value any) Entry {
	return Entry{Name: name, Value: value}
}

// Options configures a Page at construction.
type Options struct {
	// Name identifies the page in logs and metrics.
	Name string
	// Owner is passed to every creation function, typically as a target
	// for actions. The page never inspects it.
	Owner any
	// Resettable keeps the original descriptor of every materialized slot
	// so Reset can restore it.
	Resettable bool
	// DesignMode skips the finalize (Awake) call after creation.
	DesignMode bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Metrics is optional.
	Metrics *Metrics
}

// Page is a set of named slots that are materialized on first read.
//
// Always go through Get (or Resolve) to read a slot; that is what keeps
// construction lazy. A Page is safe for concurrent use and every descriptor
// is created at most once per reset cycle. A creation function may read
// other slots of its page but never its own.
type Page struct {
	name       string
	owner      any
	resettable bool
	designMode bool
	logger     *slog.Logger
	metrics    *Metrics

	mu    sync.RWMutex
	names []string
	slots map[string]slot

	// slot name → original descriptor; allocated on first use, and only
	// when resettable.
	undo map[string]*Descriptor

	onMaterialize []func(name string, instance any)

	sf singleflight.Group
}

// New creates a page holding entries in the given order. A later entry with
// an already used name replaces the earlier value but keeps its position.
func New(opts Options, entries ...Entry) *Page {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &Page{
		name:       opts.Name,
		owner:      opts.Owner,
		resettable: opts.Resettable,
		designMode: opts.DesignMode,
		logger:     logger.With(slog.String("page", opts.Name)),
		metrics:    opts.Metrics,
		slots:      make(map[string]slot, len(entries)),
	}
	for _, e := range entries {
		p.define(e.Name, e.Value)
	}
	return p
}

// Name returns the page name.
func (p *Page) Name() string { return p.name }

// Owner returns the owner passed at construction.
func (p *Page) Owner() any { return p.owner }

// Resettable reports whether Reset can restore slots.
func (p *Page) Resettable() bool { return p.resettable }

// DesignMode reports whether finalize calls are suppressed.
func (p *Page) DesignMode() bool { return p.designMode }

// Define installs or replaces a slot. A *Descriptor value makes the slot
// unmaterialized; anything else is stored as a plain value. The undo table
// is left alone.
func (p *Page) Define(name string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.define(name, value)
}

func (p *Page) define(name string, value any) {
	if _, ok := p.slots[name]; !ok {
		p.names = append(p.names, name)
	}
	p.slots[name] = newSlot(value)
}

// Names returns slot names in definition order.
func (p *Page) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.names)
}

// State reports the state of a slot. It never materializes anything.
func (p *Page) State(name string) SlotState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.slots[name]
	if !ok {
		return Missing
	}
	switch s.kind {
	case slotDescriptor:
		return Unmaterialized
	case slotInstance:
		return Materialized
	default:
		return Plain
	}
}

// Descriptor returns the descriptor currently held by an unmaterialized slot.
func (p *Page) Descriptor(name string) (*Descriptor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.slots[name]
	if !ok || s.kind != slotDescriptor {
		return nil, false
	}
	return s.desc, true
}

// OnMaterialize registers a callback fired after any slot materializes.
func (p *Page) OnMaterialize(cb func(name string, instance any)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onMaterialize = append(p.onMaterialize, cb)
}

// ── Reads ─────────────────────────────────────────────────────────────────────

// Get returns the value of a slot, materializing it first if it still holds
// a descriptor. Plain values come back unchanged and an unknown name yields
// nil. An error from the creation function is returned as is and the slot
// stays unmaterialized.
//
//	v, err := p.Get("saveButton") // creates the button once
//	v2, _ := p.Get("saveButton")  // same instance
func (p *Page) Get(name string) (any, error) {
	p.mu.RLock()
	s, ok := p.slots[name]
	p.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if s.kind != slotDescriptor {
		return s.value, nil
	}
	return p.materialize(name)
}

// GetIfConfigured is Get, except that a slot holding an Eager descriptor
// returns nil and is left untouched. Use it from diagnostic code that must
// not wake views.
func (p *Page) GetIfConfigured(name string) (any, error) {
	p.mu.RLock()
	s := p.slots[name]
	p.mu.RUnlock()
	if s.kind == slotDescriptor && s.desc.Eager() {
		return nil, nil
	}
	return p.Get(name)
}

// materialize runs the creation procedure shared by Get and Awake.
func (p *Page) materialize(name string) (any, error) {
	v, err, _ := p.sf.Do(name, func() (any, error) {
		p.mu.Lock()
		s, ok := p.slots[name]
		if !ok || s.kind != slotDescriptor {
			// Lost the race to another reader; the slot is already built.
			p.mu.Unlock()
			return s.value, nil
		}
		desc := s.desc
		p.mu.Unlock()

		instance, err := desc.instantiate(CreateConfig{Page: p, Owner: p.owner, Slot: name})
		if err != nil {
			p.metrics.failed(p.name)
			p.logger.Warn("slot creation failed", slog.String("slot", name), slog.Any("error", err))
			return nil, err
		}
		if !p.designMode {
			if a, ok := instance.(Awaker); ok {
				a.Awake()
			}
		}

		p.mu.Lock()
		// A Define during creation wins over the instance we just built.
		if cur := p.slots[name]; cur.kind == slotDescriptor && cur.desc == desc {
			p.slots[name] = slot{kind: slotInstance, value: instance}
			p.recordUndo(name, desc)
		}
		cbs := slices.Clone(p.onMaterialize)
		p.mu.Unlock()

		p.metrics.materialized(p.name, desc.kind)
		p.logger.Debug("slot materialized",
			slog.String("slot", name),
			slog.String("kind", desc.kind.String()),
			slog.String("descriptor", desc.name))
		for _, cb := range cbs {
			cb(name, instance)
		}
		return instance, nil
	})
	return v, err
}

// ── Reset ─────────────────────────────────────────────────────────────────────

// Reset puts a materialized slot back to the descriptor it was built from.
// It does nothing on a page that is not resettable, for a slot that was
// never materialized, or for one that is not materialized right now. The discarded instance is not torn down; that is up
// to whoever displayed it.
func (p *Page) Reset(name string) {
	if !p.resettable {
		return
	}
	p.mu.Lock()
	desc, ok := p.undo[name]
	ok = ok && p.slots[name].kind == slotInstance
	if ok {
		p.slots[name] = slot{kind: slotDescriptor, desc: desc}
	}
	p.mu.Unlock()
	if !ok {
		return
	}
	p.metrics.reset(p.name)
	p.logger.Debug("slot reset", slog.String("slot", name))
}

// recordUndo remembers the descriptor a slot was first built from. Only
// slots that actually materialized get an entry (caller holds mu).
func (p *Page) recordUndo(name string, desc *Descriptor) {
	if !p.resettable {
		return
	}
	if p.undo == nil {
		p.undo = make(map[string]*Descriptor)
	}
	if _, seen := p.undo[name]; !seen {
		p.undo[name] = desc
	}
}

// ── Bulk passes ───────────────────────────────────────────────────────────────

// Awake materializes every slot that holds an Eager descriptor, in
// definition order, and returns the page. Generic descriptors and plain
// values are left alone. The first creation error stops the pass.
//
// Prefer Get and lazy creation; Awake is the brute force way to wake a whole
// page at once.
func (p *Page) Awake() (*Page, error) {
	for _, name := range p.Names() {
		p.mu.RLock()
		s := p.slots[name]
		p.mu.RUnlock()
		if s.kind != slotDescriptor || !s.desc.Eager() {
			continue
		}
		if _, err := p.materialize(name); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Loc hands each payload to the descriptor of the slot with the same name.
// Entries naming a missing slot, a plain value, a Generic descriptor or an
// already materialized view are skipped. Call it before the affected slots
// are read; existing instances never see the payload.
//
//	p.Loc(map[string]any{"saveButton": map[string]string{"title": "Enregistrer"}})
func (p *Page) Loc(locs map[string]any) *Page {
	for name, payload := range locs {
		p.mu.RLock()
		s := p.slots[name]
		p.mu.RUnlock()
		if s.kind != slotDescriptor || !s.desc.Eager() {
			p.metrics.localized(p.name, false)
			continue
		}
		s.desc.Loc(payload)
		p.metrics.localized(p.name, true)
		p.logger.Debug("slot localized", slog.String("slot", name))
	}
	return p
}
