package providers

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-page/framework/catalog"
	"github.com/km-arc/go-page/framework/config"
	"github.com/km-arc/go-page/framework/container"
	"github.com/km-arc/go-page/framework/design"
	"github.com/km-arc/go-page/framework/inspect"
	"github.com/km-arc/go-page/framework/page"
	"github.com/km-arc/go-page/framework/routing"
	"github.com/km-arc/go-page/framework/view"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the configuration from .env and the
// environment and rejects invalid values.
//
// Services:
//   - "config"  → *config.Config
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *page.Page) {
	envFiles := p.EnvFiles
	container.Singleton(app, "config", func(*page.Page) (any, error) {
		cfg := config.Load(envFiles...)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	})
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider builds the application logger from the log config.
//
// Services:
//   - "logger"  → *slog.Logger
type LogServiceProvider struct {
	container.BaseProvider
	Writer io.Writer // default: os.Stderr
}

func (p *LogServiceProvider) Register(app *page.Page) {
	w := p.Writer
	if w == nil {
		w = os.Stderr
	}
	container.Singleton(app, "logger", func(app *page.Page) (any, error) {
		cfg, err := page.Resolve[*config.Config](app, "config")
		if err != nil {
			return nil, err
		}
		return NewLogger(cfg.Log, w), nil
	})
}

// NewLogger builds a text or JSON slog logger at the configured level.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider owns the Prometheus registry.
//
// Services:
//   - "metrics.registry"  → *prometheus.Registry (with Go and process collectors)
//   - "metrics"           → *page.Metrics
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) Register(app *page.Page) {
	container.Singleton(app, "metrics.registry", func(*page.Page) (any, error) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		return reg, nil
	})
	container.Singleton(app, "metrics", func(app *page.Page) (any, error) {
		reg, err := page.Resolve[*prometheus.Registry](app, "metrics.registry")
		if err != nil {
			return nil, err
		}
		return page.NewMetrics(reg), nil
	})
}

// ── ViewServiceProvider ───────────────────────────────────────────────────────

// ViewServiceProvider registers the view kind registry with the built-in
// kinds. Configure adds application kinds.
//
// Services:
//   - "views"  → *view.Registry
type ViewServiceProvider struct {
	container.BaseProvider
	Configure func(r *view.Registry)
}

func (p *ViewServiceProvider) Register(app *page.Page) {
	configure := p.Configure
	container.Singleton(app, "views", func(*page.Page) (any, error) {
		r := view.NewRegistry()
		view.RegisterDefaults(r)
		if configure != nil {
			configure(r)
		}
		return r, nil
	})
}

// ── PageServiceProvider ───────────────────────────────────────────────────────

// PageServiceProvider loads the page designs and the string bundle of the
// configured locale into a catalog. When PAGE_WATCH is set, Boot starts a
// watcher that relocalizes the catalog whenever the bundle changes.
//
// Services:
//   - "catalog"         → *catalog.Catalog
//   - "bundle.watcher"  → *design.Watcher (only with PAGE_WATCH)
type PageServiceProvider struct {
	container.BaseProvider
	// Owner is handed to every page as its owner.
	Owner any
}

func (p *PageServiceProvider) Register(app *page.Page) {
	owner := p.Owner
	container.Singleton(app, "catalog", func(app *page.Page) (any, error) {
		cfg, err := page.Resolve[*config.Config](app, "config")
		if err != nil {
			return nil, err
		}
		logger, err := page.Resolve[*slog.Logger](app, "logger")
		if err != nil {
			return nil, err
		}
		metrics, err := page.Resolve[*page.Metrics](app, "metrics")
		if err != nil {
			return nil, err
		}
		views, err := page.Resolve[*view.Registry](app, "views")
		if err != nil {
			return nil, err
		}

		docs, err := design.LoadDir(cfg.Page.DesignDir)
		if err != nil {
			return nil, err
		}
		bundle, err := design.LoadBundle(cfg.Page.LocDir, cfg.Page.Locale)
		if err != nil {
			return nil, err
		}
		logger.Info("page designs loaded",
			slog.Int("pages", len(docs)),
			slog.String("dir", cfg.Page.DesignDir),
			slog.String("locale", cfg.Page.Locale))

		return catalog.New(docs, views, bundle, catalog.Options{
			Page: page.Options{
				Owner:      owner,
				Resettable: cfg.Page.Resettable,
				DesignMode: cfg.Page.DesignMode,
				Logger:     logger,
				Metrics:    metrics,
			},
			Awake:  cfg.Page.Awake,
			Logger: logger,
		}), nil
	})
}

func (p *PageServiceProvider) Boot(app *page.Page) error {
	cfg, err := page.Resolve[*config.Config](app, "config")
	if err != nil {
		return err
	}
	if !cfg.Page.Watch {
		return nil
	}
	c, err := page.Resolve[*catalog.Catalog](app, "catalog")
	if err != nil {
		return err
	}
	logger, err := page.Resolve[*slog.Logger](app, "logger")
	if err != nil {
		return err
	}

	w, err := design.NewWatcher(cfg.Page.LocDir, cfg.Page.Locale, func(b design.Bundle) {
		if err := c.Relocalize(b); err != nil {
			logger.Warn("relocalize failed", slog.Any("error", err))
		}
	}, 0, logger)
	if err != nil {
		return err
	}
	if err := w.Start(context.Background()); err != nil {
		w.Stop()
		return err
	}
	container.Instance(app, "bundle.watcher", w)
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router with the inspection API
// and the metrics endpoint.
//
// Services:
//   - "router"  → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *page.Page) {
	container.Singleton(app, "router", func(app *page.Page) (any, error) {
		logger, err := page.Resolve[*slog.Logger](app, "logger")
		if err != nil {
			return nil, err
		}
		c, err := page.Resolve[*catalog.Catalog](app, "catalog")
		if err != nil {
			return nil, err
		}
		reg, err := page.Resolve[*prometheus.Registry](app, "metrics.registry")
		if err != nil {
			return nil, err
		}

		r := routing.New(logger)
		r.Middleware(routing.Instrument(reg))
		inspect.New(c, logger).Routes(r)
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		return r, nil
	})
}
