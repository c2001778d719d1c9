package page

// UndoEntry exposes the undo table to the external tests.
func (p *Page) UndoEntry(name string) (*Descriptor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	d, ok := p.undo[name]
	return d, ok
}

// UndoAllocated reports whether the undo table exists at all.
func (p *Page) UndoAllocated() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.undo != nil
}
