// Package listing runs one listing screen for the length of a navigation:
// it loads the records, seeds filter state from the URL, and keeps the
// visible results and the URL in step with every filter edit.
package listing

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"kaamkhojo-engine/internal/domain"
	"kaamkhojo-engine/internal/filter"
	"kaamkhojo-engine/internal/querysync"
	"kaamkhojo-engine/internal/state"
	"kaamkhojo-engine/internal/view"
)

// Source supplies the records for one screen.
type Source interface {
	Records(ctx context.Context, kind domain.Kind) ([]domain.Record, error)
}

type SourceFunc func(ctx context.Context, kind domain.Kind) ([]domain.Record, error)

func (f SourceFunc) Records(ctx context.Context, kind domain.Kind) ([]domain.Record, error) {
	return f(ctx, kind)
}

type options struct {
	debounce time.Duration
	layout   view.Layout
}

type Option func(*options)

// WithDebounce collapses URL updates for rapid edits such as typing.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithDefaultLayout is used when the URL has no valid view parameter.
func WithDefaultLayout(l view.Layout) Option {
	return func(o *options) { o.layout = l }
}

// Page is the controller behind one listing screen.
type Page struct {
	kind    domain.Kind
	records []domain.Record
	store   *state.Store
	sync    *querysync.Synchronizer
	unsub   func()

	mu      sync.RWMutex
	results []domain.Record
	layout  view.Layout
}

// Open loads the records for kind and seeds the page from rawURL. The URL is
// read exactly once; later edits flow store -> URL only. A malformed URL is
// logged and treated as having no filters. A source failure is returned.
func Open(ctx context.Context, src Source, kind domain.Kind, rawURL string, nav querysync.Navigator, opts ...Option) (*Page, error) {
	o := options{layout: view.LayoutGrid}
	for _, fn := range opts {
		fn(&o)
	}

	records, err := src.Records(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s records: %w", kind, err)
	}

	_, q, initial, err := querysync.Seed(rawURL)
	if err != nil {
		log.Printf("level=warn msg=\"malformed listing url\" url=%q err=%v", rawURL, err)
	}

	p := &Page{
		kind:    kind,
		records: records,
		store:   state.New(initial),
		results: filter.Apply(records, initial),
		layout:  view.ParseLayout(q.Get(view.LayoutParam), o.layout),
	}
	p.unsub = p.store.Subscribe(p.recompute)
	p.sync = querysync.New(rawURL, nav,
		querysync.WithPath(kind.Screen()),
		querysync.WithDebounce(o.debounce),
	)
	p.sync.Attach(p.store)
	return p, nil
}

func (p *Page) recompute(_, next filter.Criteria) {
	res := filter.Apply(p.records, next)
	p.mu.Lock()
	p.results = res
	p.mu.Unlock()
}

func (p *Page) Kind() domain.Kind { return p.kind }

// Results are the records passing the current criteria, in source order.
func (p *Page) Results() []domain.Record {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.results
}

// Total is the number of records before filtering.
func (p *Page) Total() int { return len(p.records) }

func (p *Page) Criteria() filter.Criteria { return p.store.Snapshot() }

func (p *Page) HasActiveFilters() bool { return p.store.HasActiveFilters() }

func (p *Page) Update(patch filter.Patch) { p.store.Update(patch) }

func (p *Page) SetSearch(query, location string) { p.store.SetSearch(query, location) }

func (p *Page) Clear() { p.store.Clear() }

func (p *Page) Layout() view.Layout {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.layout
}

// SetLayout switches between grid and list without touching the filters.
func (p *Page) SetLayout(ctx context.Context, l view.Layout) error {
	l = view.ParseLayout(string(l), view.LayoutGrid)
	p.mu.Lock()
	p.layout = l
	p.mu.Unlock()
	return p.sync.Set(ctx, view.LayoutParam, string(l))
}

// URL is the canonical URL for the current state.
func (p *Page) URL() string { return p.sync.URL() }

// Props builds the view model for rendering.
func (p *Page) Props() view.PageProps {
	u := p.URL()
	query := ""
	if i := strings.IndexByte(u, '?'); i >= 0 {
		query = u[i+1:]
	}
	return view.PageProps{
		Kind:     p.kind,
		Criteria: p.Criteria(),
		Records:  p.Results(),
		Layout:   p.Layout(),
		URL:      u,
		Query:    query,
	}
}

// Flush pushes any pending URL update.
func (p *Page) Flush(ctx context.Context) error { return p.sync.Flush(ctx) }

// Close flushes the URL and drops every subscription.
func (p *Page) Close() error {
	err := p.sync.Close()
	if p.unsub != nil {
		p.unsub()
	}
	return err
}

