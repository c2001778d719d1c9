package design

import (
	"fmt"

	"github.com/km-arc/go-page/framework/page"
	"github.com/km-arc/go-page/framework/view"
)

// Build turns a document into a page. opts supplies everything the document
// does not describe (owner, logger, metrics, design mode); the document's
// name and resettable flag win over the ones in opts.
//
//	doc, _ := design.Load("pages/settings.yaml")
//	p, err := design.Build(doc, registry, page.Options{Owner: controller})
func Build(doc *Document, reg *view.Registry, opts page.Options) (*page.Page, error) {
	entries, err := Entries(doc, reg)
	if err != nil {
		return nil, err
	}
	opts.Name = doc.Name
	opts.Resettable = opts.Resettable || doc.Resettable
	return page.Design(page.Record{Options: opts, Entries: entries}), nil
}

// Entries converts the slots of a document into page entries.
func Entries(doc *Document, reg *view.Registry) ([]page.Entry, error) {
	entries := make([]page.Entry, 0, len(doc.Slots))
	for _, s := range doc.Slots {
		if !s.IsView() {
			entries = append(entries, page.Slot(s.Name, s.Value))
			continue
		}
		d, err := reg.Descriptor(s.Kind, s.Attrs, !s.Lazy)
		if err != nil {
			return nil, fmt.Errorf("page [%s] slot [%s]: %w", doc.Name, s.Name, err)
		}
		entries = append(entries, page.Slot(s.Name, d))
	}
	return entries, nil
}
