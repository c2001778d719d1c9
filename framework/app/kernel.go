package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/km-arc/go-page/framework/catalog"
	"github.com/km-arc/go-page/framework/config"
	"github.com/km-arc/go-page/framework/container"
	"github.com/km-arc/go-page/framework/design"
	"github.com/km-arc/go-page/framework/page"
	"github.com/km-arc/go-page/framework/providers"
	"github.com/km-arc/go-page/framework/routing"
)

// Version is reported by the CLI.
const Version = "0.1.0"

// Application is the top-level application. Its services live as lazy
// slots on a page, so nothing is built until first asked for.
type Application struct {
	Services  *page.Page
	Providers *container.ProviderRegistry

	mu    sync.Mutex
	built []string
}

// New creates the application and registers the framework providers.
// The application itself is the owner of every designed page.
func New(envFiles ...string) (*Application, error) {
	services := container.New(page.Options{Name: "app"})
	registry := container.NewProviderRegistry(services)

	a := &Application{
		Services:  services,
		Providers: registry,
	}
	container.Instance(services, "app", a)
	services.OnMaterialize(a.track)

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{EnvFiles: envFiles},
		&providers.LogServiceProvider{},
		&providers.MetricsServiceProvider{},
		&providers.ViewServiceProvider{},
		&providers.PageServiceProvider{Owner: a},
		&providers.RoutingServiceProvider{},
	} {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// track runs inside the service's own creation, so it must not resolve
// other services.
func (a *Application) track(name string, _ any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.built = append(a.built, name)
}

// Built lists the services created so far, in creation order.
func (a *Application) Built() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.built)
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config resolves *config.Config.
func (a *Application) Config() (*config.Config, error) {
	return page.Resolve[*config.Config](a.Services, "config")
}

// Logger resolves the application logger.
func (a *Application) Logger() (*slog.Logger, error) {
	return page.Resolve[*slog.Logger](a.Services, "logger")
}

// Catalog resolves the page catalog.
func (a *Application) Catalog() (*catalog.Catalog, error) {
	return page.Resolve[*catalog.Catalog](a.Services, "catalog")
}

// Router resolves the HTTP router.
func (a *Application) Router() (*routing.Router, error) {
	return page.Resolve[*routing.Router](a.Services, "router")
}

// Run boots the application (if needed) and serves HTTP until ctx is done.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	defer a.Shutdown()

	cfg, err := a.Config()
	if err != nil {
		return err
	}
	logger, err := a.Logger()
	if err != nil {
		return err
	}
	router, err := a.Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started",
			slog.String("app", cfg.App.Name),
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.App.Env),
			slog.Any("services", a.Built()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("server stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

// Shutdown stops background workers. Services never built stay unbuilt.
func (a *Application) Shutdown() {
	if a.Services.State("bundle.watcher") != page.Plain {
		return
	}
	if w, err := page.Resolve[*design.Watcher](a.Services, "bundle.watcher"); err == nil {
		w.Stop()
	}
}
