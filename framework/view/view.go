package view

import (
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/km-arc/go-page/framework/page"
)

// View is a materialized view instance. It only carries what the page layer
// knows about it; rendering and layout happen elsewhere.
type View struct {
	// ID is unique per instance, so a view rebuilt after a reset gets a new one.
	ID string
	// Kind is the registered kind the view was built from.
	Kind string
	// Slot is the page slot holding the view.
	Slot string
	// Page is the owning page.
	Page *page.Page
	// Target receives the view's action. It is the page owner when the
	// design says `target: owner`.
	Target any
	// Attrs holds the design attributes with localization applied.
	Attrs map[string]any
	// Awakened counts finalize calls; it stays 0 in design mode.
	Awakened int
}

// New builds a View from a creation config.
func New(kind string, cfg page.CreateConfig) *View {
	v := &View{
		ID:    uuid.NewString(),
		Kind:  kind,
		Slot:  cfg.Slot,
		Page:  cfg.Page,
		Attrs: maps.Clone(cfg.Attrs),
	}
	if v.Attrs == nil {
		v.Attrs = make(map[string]any)
	}
	if t, _ := v.Attrs["target"].(string); t == "owner" {
		v.Target = cfg.Owner
	}
	return v
}

// Awake is the finalize hook called by the page after creation.
func (v *View) Awake() { v.Awakened++ }

// Attr returns an attribute as a string, or "" when unset.
func (v *View) Attr(key string) string {
	switch a := v.Attrs[key].(type) {
	case nil:
		return ""
	case string:
		return a
	default:
		return fmt.Sprint(a)
	}
}

// Title is shorthand for Attr("title").
func (v *View) Title() string { return v.Attr("title") }

// Action is shorthand for Attr("action").
func (v *View) Action() string { return v.Attr("action") }
