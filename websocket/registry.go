// file: websocket/registry.go
package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"ctf-catalog/logger"
	"ctf-catalog/page"
)

var (
	// ErrUnknownPage is returned for page ids the registry does not hold.
	ErrUnknownPage = errors.New("unknown page")
	// ErrTooManyPages is returned by Add when a page limit is reached.
	ErrTooManyPages = errors.New("too many open pages")
)

// PageGauge is told how many pages are live after every change.
type PageGauge interface {
	LivePages(n int)
}

type pageEntry struct {
	view   *page.View
	owner  string
	cancel context.CancelFunc
	done   chan struct{}
}

// Registry tracks the live pages and runs their event loops.
type Registry struct {
	mu           sync.Mutex
	pages        map[string]*pageEntry
	idleTimeout  time.Duration
	connectGrace time.Duration
	maxPerOwner  int
	maxPages     int
	gauge        PageGauge
	wg           sync.WaitGroup
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithConnectGrace drops pages whose socket has not connected within d of the page
// being served. Zero leaves them to the idle timeout.
func WithConnectGrace(d time.Duration) RegistryOption {
	return func(r *Registry) { r.connectGrace = d }
}

// WithPageLimits caps the pages one browser may hold and the pages held in total.
// Zero means no limit.
func WithPageLimits(perOwner, total int) RegistryOption {
	return func(r *Registry) {
		r.maxPerOwner = perOwner
		r.maxPages = total
	}
}

// NewRegistry creates an empty registry. A zero idleTimeout disables idle cleanup.
func NewRegistry(idleTimeout time.Duration, gauge PageGauge, opts ...RegistryOption) *Registry {
	r := &Registry{pages: make(map[string]*pageEntry), idleTimeout: idleTimeout, gauge: gauge}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add starts the page's loop and registers it for owner.
//
// When owner is at the per-browser limit its least recently active unconnected page
// is dropped to make room. ErrTooManyPages is returned if no such page exists or the
// registry is full.
func (r *Registry) Add(v *page.View, owner string) error {
	r.mu.Lock()
	var evicted *pageEntry
	if r.maxPerOwner > 0 {
		var oldest *pageEntry
		var oldestAt time.Time
		held := 0
		for _, e := range r.pages {
			if e.owner != owner {
				continue
			}
			held++
			l := e.view.Liveness()
			if l.Attached {
				continue
			}
			if oldest == nil || l.LastActive.Before(oldestAt) {
				oldest, oldestAt = e, l.LastActive
			}
		}
		if held >= r.maxPerOwner {
			if oldest == nil {
				r.mu.Unlock()
				logger.Warn.Printf("[Registry.Add] %s already holds %d connected pages", owner, held)
				return ErrTooManyPages
			}
			delete(r.pages, oldest.view.ID)
			evicted = oldest
		}
	}
	if r.maxPages > 0 && len(r.pages) >= r.maxPages {
		if evicted != nil {
			r.pages[evicted.view.ID] = evicted
		}
		r.mu.Unlock()
		logger.Warn.Printf("[Registry.Add] page limit %d reached, refusing page for %s", r.maxPages, owner)
		return ErrTooManyPages
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &pageEntry{view: v, owner: owner, cancel: cancel, done: make(chan struct{})}
	r.pages[v.ID] = e
	n := len(r.pages)
	r.mu.Unlock()

	if evicted != nil {
		logger.Info.Printf("[Registry.Add] dropping page %s, %s reached %d pages", evicted.view.ID, owner, r.maxPerOwner)
		evicted.stop()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(e.done)
		if err := v.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn.Printf("[Registry.Add] page %s loop ended: %v", v.ID, err)
		}
	}()

	logger.Debug.Printf("[Registry.Add] page %s opened for %s (%d live)", v.ID, owner, n)
	r.report(n)
	return nil
}

// Get returns the page with id if it belongs to owner.
func (r *Registry) Get(id, owner string) (*page.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.pages[id]
	if !ok || e.owner != owner {
		return nil, ErrUnknownPage
	}
	return e.view, nil
}

// Remove stops the page and waits for its loop to exit.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	e, ok := r.pages[id]
	if ok {
		delete(r.pages, id)
	}
	n := len(r.pages)
	r.mu.Unlock()
	if !ok {
		return false
	}
	e.stop()
	r.report(n)
	return true
}

func (e *pageEntry) stop() {
	e.view.Stop()
	e.cancel()
	<-e.done
}

// Len is the number of live pages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// CleanupIdle removes pages that are no longer in use at now: pages whose socket
// never connected within the connect grace, and disconnected pages idle for longer
// than idleTimeout. A page with a connected socket is never removed.
func (r *Registry) CleanupIdle(now time.Time) int {
	r.mu.Lock()
	var stale []string
	for id, e := range r.pages {
		if r.expired(e.view.Liveness(), now) {
			stale = append(stale, id)
		}
	}
	r.mu.Unlock()

	removed := 0
	for _, id := range stale {
		if r.Remove(id) {
			logger.Info.Printf("[Registry.CleanupIdle] Removing inactive page=%s (timeout=%v)", id, r.idleTimeout)
			removed++
		}
	}
	return removed
}

func (r *Registry) expired(l page.Liveness, now time.Time) bool {
	switch {
	case l.Attached:
		return false
	case !l.EverAttached && r.connectGrace > 0:
		return now.Sub(l.Created) > r.connectGrace
	case r.idleTimeout > 0:
		return now.Sub(l.LastActive) > r.idleTimeout
	}
	return false
}

// RunCleanup calls CleanupIdle every interval until ctx is done.
func (r *Registry) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			r.CleanupIdle(now)
		}
	}
}

// Close stops every page.
func (r *Registry) Close() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.pages))
	for id := range r.pages {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Remove(id)
	}
	r.wg.Wait()
}

func (r *Registry) report(n int) {
	if r.gauge != nil {
		r.gauge.LivePages(n)
	}
}
