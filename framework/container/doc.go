// Package container wires application services onto a page.
//
// # Overview
//
// The application's service container is a *page.Page: every service is a
// Generic slot, built the first time it is read and cached afterwards.
// Reading services therefore goes through page.Get / page.Resolve like any
// other slot.
//
// # Lifecycle
//
//  1. Create: app := container.New(page.Options{Logger: logger})
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        // every service can be read after this
//  4. Serve requests
//
// # Services
//
//	// Built on first read, then cached
//	container.Singleton(app, "router", func(app *page.Page) (any, error) {
//	    return routing.New(nil), nil
//	})
//
//	// Pre-built value
//	container.Instance(app, "config", cfg)
//
//	// Typed read
//	router, err := page.Resolve[*routing.Router](app, "router")
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *page.Page) {
//	    container.Singleton(app, "mailer", func(app *page.Page) (any, error) {
//	        cfg, err := page.Resolve[*config.Config](app, "config")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return mail.New(cfg), nil
//	    })
//	}
//
//	registry := container.NewProviderRegistry(app)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
package container
