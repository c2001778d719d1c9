package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/km-arc/go-page/framework/design"
	"github.com/km-arc/go-page/framework/page"
	"github.com/km-arc/go-page/framework/view"
)

// ErrUnknownPage is returned when no design has the requested name.
var ErrUnknownPage = errors.New("catalog: unknown page")

// Options configures a Catalog.
type Options struct {
	// Page is the template for every page built; Name and Resettable are
	// completed from each design.
	Page page.Options
	// Awake wakes each page right after it is built.
	Awake bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Catalog holds every designed page of the application. It is itself a
// page: one Generic slot per design, so a page is only built (and its
// strings applied) when something first asks for it.
type Catalog struct {
	pages  *page.Page
	reg    *view.Registry
	opts   Options
	logger *slog.Logger

	mu     sync.RWMutex
	bundle design.Bundle
}

// New creates a catalog over docs. bundle holds the strings applied to each
// page before any of its views is built; it may be nil.
func New(docs []*design.Document, reg *view.Registry, bundle design.Bundle, opts Options) *Catalog {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Page.Logger == nil {
		opts.Page.Logger = logger
	}
	c := &Catalog{
		reg:    reg,
		opts:   opts,
		logger: logger.With(slog.String("component", "catalog")),
		bundle: bundle,
	}

	entries := make([]page.Entry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, page.Slot(doc.Name, page.Factory(c.loader(doc), page.WithName(doc.Name))))
	}
	c.pages = page.New(page.Options{Name: "catalog", Logger: logger}, entries...)
	return c
}

// Registry returns the view registry every page is built from.
func (c *Catalog) Registry() *view.Registry { return c.reg }

// loader returns the creation function of a design's page.
func (c *Catalog) loader(doc *design.Document) page.CreateFunc {
	return func(page.CreateConfig) (any, error) {
		p, err := design.Build(doc, c.reg, c.opts.Page)
		if err != nil {
			return nil, err
		}
		if table := c.Bundle().Table(doc.Name); len(table) > 0 {
			p.Loc(table.Payloads())
		}
		if c.opts.Awake {
			if _, err := p.Awake(); err != nil {
				return nil, fmt.Errorf("waking page [%s]: %w", doc.Name, err)
			}
		}
		c.logger.Info("page loaded", slog.String("page", doc.Name), slog.Int("slots", len(p.Names())))
		return p, nil
	}
}

// Page returns the named page, building it on first use.
func (c *Catalog) Page(name string) (*page.Page, error) {
	if c.pages.State(name) == page.Missing {
		return nil, fmt.Errorf("%w: [%s]", ErrUnknownPage, name)
	}
	return page.Resolve[*page.Page](c.pages, name)
}

// Names returns the page names in design order.
func (c *Catalog) Names() []string { return c.pages.Names() }

// Loaded reports whether the named page has been built. It never builds it.
func (c *Catalog) Loaded(name string) bool {
	return c.pages.State(name) == page.Materialized
}

// Bundle returns the current string bundle.
func (c *Catalog) Bundle() design.Bundle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bundle
}

// Relocalize installs a new bundle. Pages not yet built simply pick it up
// when they are. On a built page every slot named by the old or the new
// table is reset, its overrides dropped, and the new table applied, so a
// string removed from the bundle falls back to the design. On pages that are
// not resettable only views that have not been built yet change.
func (c *Catalog) Relocalize(b design.Bundle) error {
	c.mu.Lock()
	old := c.bundle
	c.bundle = b
	c.mu.Unlock()

	for _, name := range c.Names() {
		if !c.Loaded(name) {
			continue
		}
		p, err := c.Page(name)
		if err != nil {
			return err
		}
		prev, table := old.Table(name), b.Table(name)
		if len(prev) == 0 && len(table) == 0 {
			continue
		}
		slots := make(map[string]struct{}, len(prev)+len(table))
		for slot := range prev {
			slots[slot] = struct{}{}
		}
		for slot := range table {
			slots[slot] = struct{}{}
		}
		for slot := range slots {
			p.Reset(slot)
			if d, ok := p.Descriptor(slot); ok {
				d.ClearLoc()
			}
		}
		p.Loc(table.Payloads())
		if c.opts.Awake {
			if _, err := p.Awake(); err != nil {
				return fmt.Errorf("waking page [%s]: %w", name, err)
			}
		}
		c.logger.Info("page relocalized",
			slog.String("page", name),
			slog.Bool("resettable", p.Resettable()),
			slog.Int("slots", len(slots)))
	}
	return nil
}
