package inspect

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/km-arc/go-page/framework/catalog"
	gohttp "github.com/km-arc/go-page/framework/http"
	"github.com/km-arc/go-page/framework/page"
	"github.com/km-arc/go-page/framework/routing"
	"github.com/km-arc/go-page/framework/view"
)

// Handler serves a JSON view of the catalog. Only the slot endpoints
// without /peek materialize anything.
//
//	GET  /pages                              pages and whether they are loaded
//	GET  /pages?loaded=true                  only the loaded (or unloaded) pages
//	GET  /pages/{page}                       slot states
//	GET  /pages/{page}/slots/{slot}          read a slot (builds it)
//	GET  /pages/{page}/slots/{slot}/peek     read unless it is an unbuilt view
//	POST /pages/{page}/slots/{slot}/reset    restore the slot's descriptor
//	POST /pages/{page}/awake                 build every view
//	POST /pages/{page}/loc                   apply {slot: {attr: text}}
type Handler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// New creates a Handler over c.
func New(c *catalog.Catalog, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{catalog: c, logger: logger.With(slog.String("component", "inspect"))}
}

// Routes registers the endpoints under /pages.
func (h *Handler) Routes(r *routing.Router) {
	r.Prefix("/pages", func(r *routing.Router) {
		r.Get("/", h.list)
		r.Get("/{page}", h.show)
		r.Post("/{page}/awake", h.awake)
		r.Post("/{page}/loc", h.loc)
		r.Get("/{page}/slots/{slot}", h.get)
		r.Get("/{page}/slots/{slot}/peek", h.peek)
		r.Post("/{page}/slots/{slot}/reset", h.reset)
	})
}

// ── Payloads ─────────────────────────────────────────────────────────────────

type pageSummary struct {
	Name   string `json:"name"`
	Loaded bool   `json:"loaded"`
}

type pageDetail struct {
	Name       string        `json:"name"`
	Resettable bool          `json:"resettable"`
	DesignMode bool          `json:"design_mode"`
	Slots      []slotSummary `json:"slots"`
}

type slotSummary struct {
	Name    string `json:"name"`
	State   string `json:"state"`
	Kind    string `json:"kind,omitempty"`
	View    string `json:"view,omitempty"`
	Control bool   `json:"control,omitempty"`
}

type viewSummary struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"`
	Attrs    map[string]any `json:"attrs"`
	Awakened int            `json:"awakened"`
}

type slotValue struct {
	Name       string       `json:"name"`
	State      string       `json:"state"`
	Configured bool         `json:"configured"`
	Type       string       `json:"type,omitempty"`
	View       *viewSummary `json:"view,omitempty"`
	Value      any          `json:"value,omitempty"`
}

func (h *Handler) detail(p *page.Page) pageDetail {
	controls := h.catalog.Registry().Tagged(view.TagControls)
	d := pageDetail{Name: p.Name(), Resettable: p.Resettable(), DesignMode: p.DesignMode()}
	for _, name := range p.Names() {
		s := slotSummary{Name: name, State: p.State(name).String()}
		if desc, ok := p.Descriptor(name); ok {
			s.Kind = desc.Kind().String()
			s.View = desc.Name()
		} else if p.State(name) == page.Materialized {
			if v, err := p.GetIfConfigured(name); err == nil {
				if vv, ok := v.(*view.View); ok {
					s.View = vv.Kind
				}
			}
		}
		s.Control = s.View != "" && slices.Contains(controls, s.View)
		d.Slots = append(d.Slots, s)
	}
	return d
}

func describe(p *page.Page, name string, v any) slotValue {
	out := slotValue{Name: name, State: p.State(name).String(), Configured: v != nil}
	if v == nil {
		return out
	}
	out.Type = fmt.Sprintf("%T", v)
	switch val := v.(type) {
	case *view.View:
		out.View = &viewSummary{ID: val.ID, Kind: val.Kind, Attrs: val.Attrs, Awakened: val.Awakened}
	case string, bool, int, int64, float64, []any, map[string]any:
		out.Value = val
	}
	return out
}

// ── Handlers ─────────────────────────────────────────────────────────────────

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	var filter *bool
	if q := gohttp.NewRequest(r).Query("loaded"); q != "" {
		b, err := strconv.ParseBool(q)
		if err != nil {
			res.Error(http.StatusBadRequest, fmt.Sprintf("Invalid loaded filter [%s].", q))
			return
		}
		filter = &b
	}
	names := h.catalog.Names()
	out := make([]pageSummary, 0, len(names))
	for _, name := range names {
		loaded := h.catalog.Loaded(name)
		if filter != nil && *filter != loaded {
			continue
		}
		out = append(out, pageSummary{Name: name, Loaded: loaded})
	}
	res.Success(out)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	gohttp.NewResponse(w).Success(h.detail(p))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	h.read(w, r, (*page.Page).Get)
}

func (h *Handler) peek(w http.ResponseWriter, r *http.Request) {
	h.read(w, r, (*page.Page).GetIfConfigured)
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request, fn func(*page.Page, string) (any, error)) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	res := gohttp.NewResponse(w)
	slot := gohttp.NewRequest(r).SlotName()
	if p.State(slot) == page.Missing {
		res.NotFound(fmt.Sprintf("No slot [%s] on page [%s].", slot, p.Name()))
		return
	}
	v, err := fn(p, slot)
	if err != nil {
		h.logger.Warn("slot read failed", slog.String("page", p.Name()), slog.String("slot", slot), slog.Any("error", err))
		res.Fail(err)
		return
	}
	res.Success(describe(p, slot, v))
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	slot := gohttp.NewRequest(r).SlotName()
	p.Reset(slot)
	gohttp.NewResponse(w).Success(slotSummary{Name: slot, State: p.State(slot).String()})
}

func (h *Handler) awake(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	res := gohttp.NewResponse(w)
	if _, err := p.Awake(); err != nil {
		res.Fail(err)
		return
	}
	res.Success(h.detail(p))
}

func (h *Handler) loc(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	res := gohttp.NewResponse(w)
	table, err := gohttp.NewRequest(r).BindLoc()
	if err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}
	p.Loc(table.Payloads())
	res.Success(h.detail(p))
}

// page resolves the {page} param, writing the error response itself.
func (h *Handler) page(w http.ResponseWriter, r *http.Request) (*page.Page, bool) {
	name := gohttp.NewRequest(r).PageName()
	p, err := h.catalog.Page(name)
	if err != nil {
		gohttp.NewResponse(w).Fail(err)
		return nil, false
	}
	return p, true
}
