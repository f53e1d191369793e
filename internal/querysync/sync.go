package querysync

import (
	"context"
	"log"
	"net/url"
	"sync"
	"time"

	"kaamkhojo-engine/internal/filter"
	"kaamkhojo-engine/internal/state"
)

// Navigator performs a client-side navigation to target (path plus query).
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

func (f NavigatorFunc) Navigate(ctx context.Context, target string) error { return f(ctx, target) }

// Seed parses rawURL into the initial criteria for a navigation. It never
// fails: a malformed URL or query falls back to the default criteria and
// the error is returned for logging only.
func Seed(rawURL string) (path string, q url.Values, c filter.Criteria, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", url.Values{}, filter.Default(), err
	}
	q, err = url.ParseQuery(u.RawQuery)
	if err != nil {
		return u.Path, url.Values{}, filter.Default(), err
	}
	return u.Path, q, FromValues(q), nil
}

type Option func(*Synchronizer)

// WithDebounce collapses navigations that happen within d of each other.
func WithDebounce(d time.Duration) Option {
	return func(s *Synchronizer) { s.debounce = d }
}

// WithPath overrides the listing path navigations are pushed to.
func WithPath(p string) Option {
	return func(s *Synchronizer) { s.path = p }
}

// Synchronizer keeps a URL in step with a state.Store. The query it holds is
// updated on every store change; navigations are pushed immediately or, with
// a debounce, once things settle. The last pushed URL always reflects the
// last snapshot.
type Synchronizer struct {
	nav      Navigator
	debounce time.Duration

	// held across Navigate so pushes land in order
	navMu sync.Mutex

	mu      sync.Mutex
	path    string
	query   url.Values
	pushed  string
	pending bool
	timer   *time.Timer
	detach  func()
	closed  bool
}

// New builds a synchronizer for the page at rawURL. Parameters already in
// rawURL are kept as the starting query.
func New(rawURL string, nav Navigator, opts ...Option) *Synchronizer {
	path, q, _, _ := Seed(rawURL)
	s := &Synchronizer{
		nav:   nav,
		path:  path,
		query: q,
	}
	for _, o := range opts {
		o(s)
	}
	s.pushed = s.currentLocked()
	return s
}

// Attach subscribes to st. The returned func detaches.
func (s *Synchronizer) Attach(st *state.Store) (detach func()) {
	unsub := st.Subscribe(s.OnChange)
	s.mu.Lock()
	s.detach = unsub
	s.mu.Unlock()
	return unsub
}

// OnChange is the store listener.
func (s *Synchronizer) OnChange(prev, next filter.Criteria) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.query = ApplyChanges(s.query, prev, next)
	if s.currentLocked() == s.pushed {
		s.pending = false
		s.mu.Unlock()
		return
	}
	s.pending = true

	if s.debounce <= 0 {
		s.mu.Unlock()
		_ = s.push(context.Background())
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, func() { _ = s.push(context.Background()) })
	} else {
		s.timer.Reset(s.debounce)
	}
	s.mu.Unlock()
}

// Set changes a parameter the store does not own, such as the layout
// toggle, and pushes the result right away. An empty value removes it.
func (s *Synchronizer) Set(ctx context.Context, name, value string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	q := make(url.Values, len(s.query))
	for k, v := range s.query {
		q[k] = append([]string(nil), v...)
	}
	if value == "" {
		q.Del(name)
	} else {
		q.Set(name, value)
	}
	s.query = q
	s.pending = s.currentLocked() != s.pushed
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	return s.push(ctx)
}

// URL is the listing URL for the latest snapshot, pushed or not.
func (s *Synchronizer) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

// Pushed is the last URL handed to the navigator.
func (s *Synchronizer) Pushed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushed
}

// Flush pushes a pending navigation right away.
func (s *Synchronizer) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	return s.push(ctx)
}

// Close flushes and stops listening to the store.
func (s *Synchronizer) Close() error {
	err := s.Flush(context.Background())
	s.mu.Lock()
	s.closed = true
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()
	if detach != nil {
		detach()
	}
	return err
}

func (s *Synchronizer) push(ctx context.Context) error {
	s.navMu.Lock()
	defer s.navMu.Unlock()

	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return nil
	}
	target := s.currentLocked()
	s.pending = false
	s.pushed = target
	s.mu.Unlock()

	if s.nav == nil {
		return nil
	}
	if err := s.nav.Navigate(ctx, target); err != nil {
		log.Printf("level=warn msg=\"navigate failed\" target=%q err=%v", target, err)
		return err
	}
	return nil
}

func (s *Synchronizer) currentLocked() string {
	return withQuery(s.path, s.query)
}
