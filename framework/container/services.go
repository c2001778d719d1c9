package container

import "github.com/km-arc/go-page/framework/page"

// Factory builds a service; it may read other services from app.
type Factory func(app *page.Page) (any, error)

// New creates the application page. Services are Generic slots on it, so
// each is built on first read and cached for the life of the page.
func New(opts page.Options) *page.Page {
	if opts.Name == "" {
		opts.Name = "app"
	}
	return page.New(opts)
}

// Singleton defines a service slot built by f on first read.
//
//	container.Singleton(app, "router", func(app *page.Page) (any, error) {
//	    return routing.New(nil), nil
//	})
func Singleton(app *page.Page, name string, f Factory) {
	app.Define(name, page.Factory(func(cfg page.CreateConfig) (any, error) {
		return f(cfg.Page)
	}, page.WithName(name)))
}

// Instance defines a service slot holding a pre-built value.
func Instance(app *page.Page, name string, value any) {
	app.Define(name, value)
}

// Bound reports whether a service slot exists.
func Bound(app *page.Page, name string) bool {
	return app.State(name) != page.Missing
}

// Resolved reports whether a service has been built (or was an instance).
func Resolved(app *page.Page, name string) bool {
	switch app.State(name) {
	case page.Plain, page.Materialized:
		return true
	default:
		return false
	}
}
