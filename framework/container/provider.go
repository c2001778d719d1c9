package container

import "github.com/km-arc/go-page/framework/page"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider registers services as slots of the application page.
//
// Register is called as soon as the provider is added and must only define
// slots. Boot is called after ALL providers have been registered, making it
// safe to read other services inside Boot.
//
//	type MetricsProvider struct{ container.BaseProvider }
//
//	func (p *MetricsProvider) Register(app *page.Page) {
//	    container.Singleton(app, "metrics", func(app *page.Page) (any, error) {
//	        return page.NewMetrics(prometheus.DefaultRegisterer), nil
//	    })
//	}
type ServiceProvider interface {
	// Register defines service slots. Do NOT read other services here.
	Register(app *page.Page)

	// Boot runs after every provider is registered.
	Boot(app *page.Page) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with a no-op Boot.
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(app *page.Page) { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *page.Page) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders.
type ProviderRegistry struct {
	app        *page.Page
	providers  []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *page.Page) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method. A provider added
// after Boot is booted immediately.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	provider.Register(r.app)
	r.providers = append(r.providers, provider)

	if r.booted {
		return provider.Boot(r.app)
	}
	return nil
}

// Boot calls Boot on every provider, in registration order, stopping at the
// first error. Later calls are no-ops.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.providers {
		if err := provider.Boot(r.app); err != nil {
			return err
		}
	}
	return nil
}

// Booted returns true if Boot has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
