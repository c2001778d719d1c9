package page

import (
	"errors"
	"fmt"
)

// ErrUnexpectedType is returned by Resolve when a slot holds another type.
var ErrUnexpectedType = errors.New("page: slot holds an unexpected type")

// Record is the configuration record a page is designed from.
type Record struct {
	Options
	Entries []Entry
}

// Design builds a page from a record. It is New with the record unpacked.
//
//	p := page.Design(page.Record{
//	    Options: page.Options{Name: "settings", Resettable: true},
//	    Entries: []page.Entry{page.Slot("save", saveDesc)},
//	})
func Design(rec Record) *Page {
	return New(rec.Options, rec.Entries...)
}

// Localization returns attrs untouched. Localized design records are
// written through it so they read the same as unlocalized ones.
func Localization[T any](attrs T) T {
	return attrs
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve reads a slot through Get and type-asserts the result.
//
//	// Instead of: v, err := p.Get("save"); btn := v.(*view.View)
//	btn, err := page.Resolve[*view.View](p, "save")
func Resolve[T any](p *Page, name string) (T, error) {
	var zero T
	v, err := p.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: [%s] is %T, want %T", ErrUnexpectedType, name, v, zero)
	}
	return typed, nil
}

// MustGet is Get for bootstrap code: it panics if creation fails.
func MustGet(p *Page, name string) any {
	v, err := p.Get(name)
	if err != nil {
		panic(fmt.Sprintf("page: materializing [%s]: %v", name, err))
	}
	return v
}
