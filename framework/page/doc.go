// Package page provides lazily materialized slot containers.
//
// # Overview
//
// A Page maps slot names to values. A value is either plain, or a
// *Descriptor that is turned into an instance the first time the slot is
// read. The instance replaces the descriptor and every later read returns
// it. Descriptors come in two kinds: Generic, built only on demand, and
// Eager (view-like), which the bulk passes act on.
//
// # Reading
//
//	p := page.New(page.Options{Name: "settings", Owner: controller},
//	    page.Slot("title", "Settings"),
//	    page.Slot("saveButton", page.View(newButton)),
//	)
//
//	title, _ := p.Get("title")            // plain value, returned as is
//	btn, err := p.Get("saveButton")       // built now, cached afterwards
//	v, _ := p.GetIfConfigured("other")    // nil while "other" is an unbuilt view
//
// Creation functions receive a CreateConfig with the page and its owner, so
// a view can target the owner for its actions. Instances implementing
// Awaker get Awake() called right after creation unless the page is in
// design mode.
//
// # Reset
//
// A page built with Options.Resettable remembers the descriptor of every
// slot it materializes:
//
//	p.Reset("saveButton")             // back to the descriptor
//	btn2, _ := p.Get("saveButton")    // a new instance from the same descriptor
//
// On other pages Reset does nothing.
//
// # Bulk passes
//
//	p.Loc(map[string]any{"saveButton": map[string]string{"title": "Sichern"}})
//	p.Awake() // builds every Eager slot that is still a descriptor
//
// Loc only reaches views that have not been built yet, so apply string
// tables before the first Get or Awake.
package page
