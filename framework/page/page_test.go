package page_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-page/framework/page"
)

// ── stubs ─────────────────────────────────────────────────────────────────────

type widget struct {
	label    string
	from     string
	page     *page.Page
	owner    any
	awakened int
}

func (w *widget) Awake() { w.awakened++ }

// counting returns a creation function that counts its calls.
func counting(calls *atomic.Int32) page.CreateFunc {
	return func(cfg page.CreateConfig) (any, error) {
		calls.Add(1)
		label, _ := cfg.Attrs["label"].(string)
		return &widget{label: label, page: cfg.Page, owner: cfg.Owner}, nil
	}
}

// tagged records the descriptor tag in every instance it builds.
func tagged(tag string) *page.Descriptor {
	return page.View(func(cfg page.CreateConfig) (any, error) {
		return &widget{label: cfg.Attrs["label"].(string), from: tag, page: cfg.Page}, nil
	}, page.WithName(tag), page.WithAttrs(map[string]any{"label": "Click"}))
}

// ── Get ───────────────────────────────────────────────────────────────────────

func TestGet_CreatesExactlyOnce(t *testing.T) {
	var calls atomic.Int32
	p := page.New(page.Options{}, page.Slot("button", page.View(counting(&calls))))

	first, err := p.Get("button")
	require.NoError(t, err)
	for range 5 {
		again, err := p.Get("button")
		require.NoError(t, err)
		assert.Same(t, first, again)
	}
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, page.Materialized, p.State("button"))
}

func TestGet_PlainValueUnchanged(t *testing.T) {
	cfg := map[string]int{"width": 10}
	p := page.New(page.Options{}, page.Slot("title", "Settings"), page.Slot("cfg", cfg))

	got, err := p.Get("title")
	require.NoError(t, err)
	assert.Equal(t, "Settings", got)

	raw, err := p.Get("cfg")
	require.NoError(t, err)
	assert.Equal(t, cfg, raw)
	assert.Equal(t, page.Plain, p.State("title"))
}

func TestGet_MissingSlotIsNil(t *testing.T) {
	p := page.New(page.Options{})
	got, err := p.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, page.Missing, p.State("nope"))
}

func TestGet_BindsPageAndOwner(t *testing.T) {
	owner := &struct{ name string }{"controller"}
	p := page.New(page.Options{Owner: owner}, page.Slot("w", page.Factory(func(cfg page.CreateConfig) (any, error) {
		assert.Equal(t, "w", cfg.Slot)
		return &widget{page: cfg.Page, owner: cfg.Owner}, nil
	})))

	w, err := page.Resolve[*widget](p, "w")
	require.NoError(t, err)
	assert.Same(t, p, w.page)
	assert.Same(t, owner, w.owner)
	assert.Same(t, owner, p.Owner())
}

func TestGet_FinalizeRunsOnce(t *testing.T) {
	var calls atomic.Int32
	p := page.New(page.Options{}, page.Slot("w", page.View(counting(&calls))))

	w, err := page.Resolve[*widget](p, "w")
	require.NoError(t, err)
	_, _ = p.Get("w")
	assert.Equal(t, 1, w.awakened)
}

func TestGet_DesignModeSkipsFinalize(t *testing.T) {
	var calls atomic.Int32
	p := page.New(page.Options{DesignMode: true}, page.Slot("w", page.View(counting(&calls))))

	w, err := page.Resolve[*widget](p, "w")
	require.NoError(t, err)
	assert.Zero(t, w.awakened)
	assert.True(t, p.DesignMode())
}

func TestGet_CreationErrorPropagatesUnwrapped(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	p := page.New(page.Options{}, page.Slot("bad", page.View(func(page.CreateConfig) (any, error) {
		calls.Add(1)
		return nil, boom
	})))

	_, err := p.Get("bad")
	assert.Same(t, boom, err)
	assert.Equal(t, page.Unmaterialized, p.State("bad"))

	// Still a descriptor, so the next read tries again.
	_, err = p.Get("bad")
	assert.Same(t, boom, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestGet_FactoryMayReadOtherSlots(t *testing.T) {
	p := page.New(page.Options{},
		page.Slot("label", page.View(func(page.CreateConfig) (any, error) {
			return &widget{label: "Name"}, nil
		})),
		page.Slot("row", page.View(func(cfg page.CreateConfig) (any, error) {
			label, err := page.Resolve[*widget](cfg.Page, "label")
			if err != nil {
				return nil, err
			}
			return &widget{label: label.label + " row"}, nil
		})),
	)

	row, err := page.Resolve[*widget](p, "row")
	require.NoError(t, err)
	assert.Equal(t, "Name row", row.label)
	assert.Equal(t, page.Materialized, p.State("label"))
}

func TestGet_ConcurrentReadsCreateOnce(t *testing.T) {
	var calls atomic.Int32
	p := page.New(page.Options{Resettable: true}, page.Slot("w", page.View(counting(&calls))))

	const readers = 32
	results := make([]any, readers)
	var wg sync.WaitGroup
	for i := range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := p.Get("w")
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

// ── Resolve ───────────────────────────────────────────────────────────────────

func TestResolve_WrongType(t *testing.T) {
	p := page.New(page.Options{}, page.Slot("title", "Settings"))
	_, err := page.Resolve[*widget](p, "title")
	assert.ErrorIs(t, err, page.ErrUnexpectedType)
}

func TestMustGet_PanicsOnCreationError(t *testing.T) {
	p := page.New(page.Options{}, page.Slot("bad", page.Factory(func(page.CreateConfig) (any, error) {
		return nil, errors.New("boom")
	})))
	assert.Panics(t, func() { page.MustGet(p, "bad") })
}

// ── GetIfConfigured ───────────────────────────────────────────────────────────

func TestGetIfConfigured_NeverWakesViews(t *testing.T) {
	var calls atomic.Int32
	p := page.New(page.Options{}, page.Slot("w", page.View(counting(&calls))))

	got, err := p.GetIfConfigured("w")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, calls.Load())
	assert.Equal(t, page.Unmaterialized, p.State("w"))

	// The slot still behaves as a first read.
	first, err := p.Get("w")
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())

	peeked, err := p.GetIfConfigured("w")
	require.NoError(t, err)
	assert.Same(t, first, peeked)
}

func TestGetIfConfigured_GenericDescriptorIsRead(t *testing.T) {
	var calls atomic.Int32
	p := page.New(page.Options{},
		page.Slot("svc", page.Factory(counting(&calls))),
		page.Slot("title", "Settings"),
	)

	got, err := p.GetIfConfigured("svc")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.EqualValues(t, 1, calls.Load())

	title, err := p.GetIfConfigured("title")
	require.NoError(t, err)
	assert.Equal(t, "Settings", title)

	missing, err := p.GetIfConfigured("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// ── Reset ─────────────────────────────────────────────────────────────────────

func TestReset_ResettablePageRecreates(t *testing.T) {
	d := tagged("D")
	p := page.New(page.Options{Resettable: true}, page.Slot("button", d))

	i1, err := page.Resolve[*widget](p, "button")
	require.NoError(t, err)
	assert.Equal(t, "Click", i1.label)

	p.Reset("button")
	assert.Equal(t, page.Unmaterialized, p.State("button"))
	restored, ok := p.Descriptor("button")
	require.True(t, ok)
	assert.Same(t, d, restored)

	i2, err := page.Resolve[*widget](p, "button")
	require.NoError(t, err)
	assert.NotSame(t, i1, i2)
	assert.Equal(t, "Click", i2.label)
	assert.Equal(t, "D", i1.from)
	assert.Equal(t, "D", i2.from)
}

func TestReset_NonResettablePageIsInert(t *testing.T) {
	p := page.New(page.Options{}, page.Slot("a", tagged("A")))

	i, err := p.Get("a")
	require.NoError(t, err)
	p.Reset("a")
	assert.Equal(t, page.Materialized, p.State("a"))

	again, err := p.Get("a")
	require.NoError(t, err)
	assert.Same(t, i, again)
	assert.False(t, p.UndoAllocated(), "undo table must never exist on a non-resettable page")
}

func TestReset_SpeculativeCallsAreSafe(t *testing.T) {
	p := page.New(page.Options{Resettable: true},
		page.Slot("a", tagged("A")),
		page.Slot("title", "Settings"),
	)

	p.Reset("a")
	p.Reset("title")
	p.Reset("missing")

	assert.Equal(t, page.Unmaterialized, p.State("a"))
	assert.Equal(t, page.Plain, p.State("title"))
	assert.Equal(t, page.Missing, p.State("missing"))
}

func TestReset_FailedCreationLeavesNoUndoEntry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := page.NewMetrics(reg)
	boom := errors.New("boom")
	p := page.New(page.Options{Name: "form", Resettable: true, Metrics: m},
		page.Slot("a", page.View(func(page.CreateConfig) (any, error) { return nil, boom })),
	)

	_, err := p.Get("a")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, page.Unmaterialized, p.State("a"))
	_, recorded := p.UndoEntry("a")
	assert.False(t, recorded)

	p.Reset("a")
	p.Reset("a")
	assert.Zero(t, testutil.ToFloat64(m.Resets.WithLabelValues("form")))
}

func TestReset_CountsOnlyWhenSlotIsBuilt(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := page.NewMetrics(reg)
	p := page.New(page.Options{Name: "form", Resettable: true, Metrics: m}, page.Slot("a", tagged("A")))

	_, err := p.Get("a")
	require.NoError(t, err)
	p.Reset("a")
	p.Reset("a")
	p.Reset("a")

	assert.Equal(t, page.Unmaterialized, p.State("a"))
	assert.InDelta(t, 1, testutil.ToFloat64(m.Resets.WithLabelValues("form")), 0)
}

func TestReset_RepeatedCycles(t *testing.T) {
	var calls atomic.Int32
	d := page.View(counting(&calls))
	p := page.New(page.Options{Resettable: true}, page.Slot("w", d))

	seen := map[any]bool{}
	for range 3 {
		v, err := p.Get("w")
		require.NoError(t, err)
		seen[v] = true
		p.Reset("w")
		p.Reset("w")
	}
	assert.Len(t, seen, 3)
	assert.EqualValues(t, 3, calls.Load())

	entry, ok := p.UndoEntry("w")
	require.True(t, ok)
	assert.Same(t, d, entry)
}

// The undo table keeps the first descriptor a slot was built from. A slot
// redefined after a reset still resets to that original descriptor.
func TestReset_UndoTableStoresOnlyIfAbsent(t *testing.T) {
	original := tagged("original")
	replacement := tagged("replacement")
	p := page.New(page.Options{Resettable: true}, page.Slot("button", original))

	_, err := p.Get("button")
	require.NoError(t, err)
	p.Reset("button")

	p.Define("button", replacement)
	w, err := page.Resolve[*widget](p, "button")
	require.NoError(t, err)
	assert.Equal(t, "replacement", w.from)

	entry, ok := p.UndoEntry("button")
	require.True(t, ok)
	assert.Same(t, original, entry)

	p.Reset("button")
	w, err = page.Resolve[*widget](p, "button")
	require.NoError(t, err)
	assert.Equal(t, "original", w.from)
}

// ── Awake ─────────────────────────────────────────────────────────────────────

func TestAwake_MaterializesOnlyEagerSlots(t *testing.T) {
	var views, services atomic.Int32
	cfg := map[string]string{"theme": "dark"}
	p := page.New(page.Options{},
		page.Slot("a", page.View(counting(&views))),
		page.Slot("svc", page.Factory(counting(&services))),
		page.Slot("title", "Settings"),
		page.Slot("cfg", cfg),
		page.Slot("b", page.View(counting(&views))),
	)

	got, err := p.Awake()
	require.NoError(t, err)
	assert.Same(t, p, got)

	assert.EqualValues(t, 2, views.Load())
	assert.Zero(t, services.Load())
	assert.Equal(t, page.Materialized, p.State("a"))
	assert.Equal(t, page.Materialized, p.State("b"))
	assert.Equal(t, page.Unmaterialized, p.State("svc"))

	title, _ := p.Get("title")
	assert.Equal(t, "Settings", title)
	raw, _ := p.Get("cfg")
	assert.Equal(t, cfg, raw)
}

func TestAwake_SharesCreationWithGet(t *testing.T) {
	var calls atomic.Int32
	p := page.New(page.Options{}, page.Slot("a", page.View(counting(&calls))))

	before, err := p.Get("a")
	require.NoError(t, err)
	_, err = p.Awake()
	require.NoError(t, err)
	_, err = p.Awake()
	require.NoError(t, err)

	after, _ := p.Get("a")
	assert.Same(t, before, after)
	assert.EqualValues(t, 1, calls.Load())
}

func TestAwake_ResetAfterAwake(t *testing.T) {
	var calls atomic.Int32
	p := page.New(page.Options{Resettable: true}, page.Slot("a", page.View(counting(&calls))))

	_, err := p.Awake()
	require.NoError(t, err)
	p.Reset("a")
	assert.Equal(t, page.Unmaterialized, p.State("a"))
}

func TestAwake_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	p := page.New(page.Options{},
		page.Slot("ok", page.View(counting(&calls))),
		page.Slot("bad", page.View(func(page.CreateConfig) (any, error) { return nil, boom })),
		page.Slot("later", page.View(counting(&calls))),
	)

	_, err := p.Awake()
	assert.Same(t, boom, err)
	assert.Equal(t, page.Materialized, p.State("ok"))
	assert.Equal(t, page.Unmaterialized, p.State("bad"))
	assert.Equal(t, page.Unmaterialized, p.State("later"))
}

// ── Loc ───────────────────────────────────────────────────────────────────────

func TestLoc_BeforeGetIsVisible(t *testing.T) {
	p := page.New(page.Options{}, page.Slot("button", tagged("D")))

	p.Loc(map[string]any{"button": map[string]string{"label": "Cliquer"}})
	w, err := page.Resolve[*widget](p, "button")
	require.NoError(t, err)
	assert.Equal(t, "Cliquer", w.label)
}

func TestLoc_AfterGetHasNoEffect(t *testing.T) {
	p := page.New(page.Options{}, page.Slot("button", tagged("D")))

	w, err := page.Resolve[*widget](p, "button")
	require.NoError(t, err)

	got := p.Loc(map[string]any{"button": map[string]string{"label": "Cliquer"}})
	assert.Same(t, p, got)
	assert.Equal(t, "Click", w.label)

	again, _ := page.Resolve[*widget](p, "button")
	assert.Same(t, w, again)
}

func TestClearLoc_RestoresBaseAttrs(t *testing.T) {
	p := page.New(page.Options{}, page.Slot("button", tagged("D")))
	p.Loc(map[string]any{"button": map[string]string{"label": "Cliquer"}})

	d, ok := p.Descriptor("button")
	require.True(t, ok)
	d.ClearLoc()
	assert.Equal(t, "Click", d.Attrs()["label"])

	w, err := page.Resolve[*widget](p, "button")
	require.NoError(t, err)
	assert.Equal(t, "Click", w.label)
}

func TestLoc_SkipsIneligibleSlots(t *testing.T) {
	var calls atomic.Int32
	svc := page.Factory(counting(&calls), page.WithAttrs(map[string]any{"label": "svc"}))
	p := page.New(page.Options{},
		page.Slot("svc", svc),
		page.Slot("title", "Settings"),
	)

	p.Loc(map[string]any{
		"svc":     map[string]string{"label": "changed"},
		"title":   map[string]string{"label": "changed"},
		"missing": map[string]string{"label": "changed"},
	})

	assert.Equal(t, "svc", svc.Attrs()["label"])
	title, _ := p.Get("title")
	assert.Equal(t, "Settings", title)
	assert.Equal(t, page.Missing, p.State("missing"))
	assert.Zero(t, calls.Load())
}

func TestLoc_SurvivesResetCycle(t *testing.T) {
	p := page.New(page.Options{Resettable: true}, page.Slot("button", tagged("D")))

	_, err := p.Get("button")
	require.NoError(t, err)
	p.Reset("button")
	p.Loc(map[string]any{"button": map[string]any{"label": "Drücken"}})

	w, err := page.Resolve[*widget](p, "button")
	require.NoError(t, err)
	assert.Equal(t, "Drücken", w.label)
}

// ── Misc ──────────────────────────────────────────────────────────────────────

func TestNames_DefinitionOrder(t *testing.T) {
	p := page.New(page.Options{},
		page.Slot("b", 1),
		page.Slot("a", 2),
		page.Slot("b", 3),
	)
	p.Define("c", tagged("C"))

	assert.Equal(t, []string{"b", "a", "c"}, p.Names())
	b, _ := p.Get("b")
	assert.Equal(t, 3, b)
	assert.Equal(t, page.Unmaterialized, p.State("c"))
}

func TestOnMaterialize_FiresPerCreation(t *testing.T) {
	p := page.New(page.Options{Resettable: true}, page.Slot("a", tagged("A")), page.Slot("t", "x"))

	var fired []string
	p.OnMaterialize(func(name string, _ any) { fired = append(fired, name) })

	_, _ = p.Get("a")
	_, _ = p.Get("a")
	_, _ = p.Get("t")
	p.Reset("a")
	_, _ = p.Get("a")

	assert.Equal(t, []string{"a", "a"}, fired)
}

func TestDesign_EqualsNew(t *testing.T) {
	p := page.Design(page.Record{
		Options: page.Options{Name: "settings", Resettable: true},
		Entries: []page.Entry{page.Slot("button", tagged("D"))},
	})
	assert.Equal(t, "settings", p.Name())
	assert.True(t, p.Resettable())
	assert.Equal(t, page.Unmaterialized, p.State("button"))
}

func TestLocalization_Identity(t *testing.T) {
	attrs := map[string]any{"title": "Save"}
	got := page.Localization(attrs)
	assert.Equal(t, attrs, got)

	rec := page.Record{Options: page.Options{Name: "x"}}
	assert.Equal(t, rec.Name, page.Localization(rec).Name)
}

func TestMetrics_CountActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := page.NewMetrics(reg)
	p := page.New(page.Options{Name: "settings", Resettable: true, Metrics: m},
		page.Slot("a", tagged("A")),
		page.Slot("bad", page.View(func(page.CreateConfig) (any, error) { return nil, errors.New("x") })),
	)

	p.Loc(map[string]any{"a": map[string]string{"label": "A"}, "nope": map[string]string{}})
	_, _ = p.Get("a")
	_, _ = p.Get("bad")
	p.Reset("a")

	assert.InDelta(t, 1, testutil.ToFloat64(m.Materialized.WithLabelValues("settings", "eager")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Failed.WithLabelValues("settings")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Resets.WithLabelValues("settings")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Localized.WithLabelValues("settings", "applied")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Localized.WithLabelValues("settings", "skipped")), 0)
}

// ── Scenarios ─────────────────────────────────────────────────────────────────

func TestScenario_ResettableButton(t *testing.T) {
	d := page.View(func(page.CreateConfig) (any, error) {
		return &struct{ Label string }{Label: "Click"}, nil
	})
	c := page.New(page.Options{Resettable: true}, page.Slot("button", d))

	i1, err := c.Get("button")
	require.NoError(t, err)
	c.Reset("button")
	restored, ok := c.Descriptor("button")
	require.True(t, ok)
	assert.Same(t, d, restored)

	i2, err := c.Get("button")
	require.NoError(t, err)
	assert.NotSame(t, i1, i2)
	assert.Equal(t, i1, i2)
}

func TestScenario_NonResettable(t *testing.T) {
	c2 := page.New(page.Options{}, page.Slot("a", page.Factory(func(page.CreateConfig) (any, error) {
		return &struct{ N int }{N: 1}, nil
	})))

	i, err := c2.Get("a")
	require.NoError(t, err)
	c2.Reset("a")
	again, err := c2.Get("a")
	require.NoError(t, err)
	assert.Same(t, i, again)
}
