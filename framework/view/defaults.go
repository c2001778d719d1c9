package view

import (
	"fmt"

	"github.com/km-arc/go-page/framework/page"
)

// Built-in kinds.
const (
	KindLabel     = "label"
	KindButton    = "button"
	KindTextField = "text_field"
	KindContainer = "container"

	// TagControls groups the kinds a user can act on.
	TagControls = "controls"
)

// RegisterDefaults registers the built-in kinds, the "input" alias and the
// "controls" tag.
func RegisterDefaults(r *Registry) {
	r.Register(KindLabel, plain)
	r.Register(KindContainer, plain)
	r.Register(KindTextField, plain)
	r.Register(KindButton, button)

	r.Alias(KindTextField, "input")
	r.Tag([]string{KindButton, KindTextField}, TagControls)
}

func plain(kind string, cfg page.CreateConfig) (any, error) {
	return New(kind, cfg), nil
}

func button(kind string, cfg page.CreateConfig) (any, error) {
	v := New(kind, cfg)
	if v.Title() == "" {
		return nil, fmt.Errorf("%w: %s [%s] needs a title", ErrMissingAttr, kind, cfg.Slot)
	}
	return v, nil
}
