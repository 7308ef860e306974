package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp"
	"github.com/handiism/bandcamp-fetch/internal/model"
	"github.com/handiism/bandcamp-fetch/internal/session"
)

const (
	// SummaryURL returns the logged-in fan's id, username and collection
	// summary.
	SummaryURL = "https://bandcamp.com/api/fan/2/collection_summary"

	// DefaultCrumbTTL is how long fetched crumbs are reused.
	DefaultCrumbTTL = 5 * time.Minute
)

// ErrInvalidated is returned to callers whose shared fetch finished after
// the coordinator was invalidated.
var ErrInvalidated = errors.New("identity invalidated")

const (
	fanKey     = "fan"
	summaryKey = "summary"
	crumbsKey  = "crumbs"
)

// Transport is the subset of the HTTP client the coordinator needs.
type Transport interface {
	Get(ctx context.Context, url string) ([]byte, error)
	GetPage(ctx context.Context, url string) (html, finalURL string, err error)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithCrumbTTL sets how long fetched crumbs stay fresh.
func WithCrumbTTL(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.crumbTTL = d
		}
	}
}

// WithSummaryURL overrides the collection summary endpoint.
func WithSummaryURL(u string) Option {
	return func(c *Coordinator) {
		if u != "" {
			c.summaryURL = u
		}
	}
}

// WithLogger sets the logger for non-fatal lookup failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

type crumbEntry struct {
	crumbs    map[string]string
	expiresAt time.Time
}

type flight struct {
	cancel context.CancelFunc
}

// Coordinator resolves the current fan and the action crumbs, sharing
// concurrent lookups.
type Coordinator struct {
	transport  Transport
	store      *session.Store
	summaryURL string
	crumbTTL   time.Duration
	logger     *slog.Logger
	now        func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	gen     uint64
	flights map[string]*flight
	fan     *model.FanInfo
	crumbs  *crumbEntry
}

// New creates a coordinator reading cookies from store. It registers
// itself to be invalidated whenever the store is reset.
func New(t Transport, store *session.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		transport:  t,
		store:      store,
		summaryURL: SummaryURL,
		crumbTTL:   DefaultCrumbTTL,
		logger:     slog.Default(),
		now:        time.Now,
		flights:    make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(c)
	}
	store.OnReset(c.Invalidate)
	return c
}

// CurrentFan returns the logged-in fan, or nil when the session is not
// logged in. The result is cached until Invalidate.
func (c *Coordinator) CurrentFan(ctx context.Context) (*model.FanInfo, error) {
	if !c.store.LoggedIn() {
		return nil, nil
	}

	c.mu.Lock()
	if c.fan != nil {
		fan := *c.fan
		c.mu.Unlock()
		return &fan, nil
	}
	c.mu.Unlock()

	v, err := c.share(ctx, fanKey, func(ctx context.Context) (any, error) {
		return c.fetchFan(ctx)
	}, func(v any) {
		r := v.(*fanResult)
		if r.fan == nil {
			return
		}
		c.fan = r.fan
		if r.crumbs != nil && c.crumbs == nil {
			c.crumbs = &crumbEntry{crumbs: r.crumbs, expiresAt: c.now().Add(c.crumbTTL)}
		}
	})
	if err != nil {
		return nil, err
	}
	r := v.(*fanResult)
	if r.fan == nil {
		return nil, nil
	}
	out := *r.fan
	return &out, nil
}

// Summary fetches the logged-in fan's collection summary. It is not
// cached; concurrent calls share one request. A session that is not
// logged in yields nil.
func (c *Coordinator) Summary(ctx context.Context) (*bandcamp.Summary, error) {
	if !c.store.LoggedIn() {
		return nil, nil
	}
	v, err := c.share(ctx, summaryKey, func(ctx context.Context) (any, error) {
		return c.fetchSummary(ctx)
	}, nil)
	if err != nil {
		return nil, err
	}
	s, _ := v.(*bandcamp.Summary)
	return s, nil
}

// Crumbs returns the action crumbs keyed by endpoint, or nil when the
// session is not logged in. Crumbs are refetched once they are older
// than the configured TTL.
func (c *Coordinator) Crumbs(ctx context.Context) (map[string]string, error) {
	if crumbs, ok := c.freshCrumbs(); ok {
		return crumbs, nil
	}

	fan, err := c.CurrentFan(ctx)
	if err != nil || fan == nil {
		return nil, err
	}
	// Resolving the fan may have loaded the crumbs from the same page.
	if crumbs, ok := c.freshCrumbs(); ok {
		return crumbs, nil
	}

	v, err := c.share(ctx, crumbsKey, func(ctx context.Context) (any, error) {
		html, final, err := c.transport.GetPage(ctx, fan.URL)
		if err != nil {
			return nil, err
		}
		return bandcamp.ParseCrumbs(html, final)
	}, func(v any) {
		crumbs, _ := v.(map[string]string)
		c.crumbs = &crumbEntry{crumbs: maps.Clone(crumbs), expiresAt: c.now().Add(c.crumbTTL)}
	})
	if err != nil {
		return nil, err
	}
	crumbs, _ := v.(map[string]string)
	return maps.Clone(crumbs), nil
}

func (c *Coordinator) freshCrumbs() (map[string]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.crumbs; e != nil && c.now().Before(e.expiresAt) {
		return maps.Clone(e.crumbs), true
	}
	return nil, false
}

// Crumb returns the crumb of one endpoint.
func (c *Coordinator) Crumb(ctx context.Context, name string) (string, error) {
	crumbs, err := c.Crumbs(ctx)
	if err != nil {
		return "", err
	}
	return crumbs[name], nil
}

// UpdateCrumb replaces one cached crumb, typically with the value an
// action response returned after rejecting a stale one. It does not
// extend the cache's freshness window.
func (c *Coordinator) UpdateCrumb(name, value string) {
	if name == "" || value == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.crumbs == nil {
		return
	}
	if c.crumbs.crumbs == nil {
		c.crumbs.crumbs = make(map[string]string)
	}
	c.crumbs.crumbs[name] = value
}

// Invalidate clears the cached fan and crumbs and cancels fetches in
// flight. Results of those fetches are discarded.
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.fan = nil
	c.crumbs = nil
	for key, f := range c.flights {
		f.cancel()
		delete(c.flights, key)
	}
	c.mu.Unlock()

	for _, key := range []string{fanKey, summaryKey, crumbsKey} {
		c.group.Forget(key)
	}
}

// share runs fetch once for all concurrent callers of key. The fetch runs
// under the first caller's context. keep stores a successful result
// under c.mu unless the coordinator was invalidated meanwhile.
func (c *Coordinator) share(ctx context.Context, key string, fetch func(context.Context) (any, error), keep func(any)) (any, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithCancel(ctx)
		defer cancel()

		f := &flight{cancel: cancel}
		c.mu.Lock()
		gen := c.gen
		c.flights[key] = f
		c.mu.Unlock()

		v, err := fetch(fctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.flights[key] == f {
			delete(c.flights, key)
		}
		if c.gen != gen {
			return nil, ErrInvalidated
		}
		if err != nil {
			return nil, err
		}
		if keep != nil {
			keep(v)
		}
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) fetchSummary(ctx context.Context) (*bandcamp.Summary, error) {
	body, err := c.transport.Get(ctx, c.summaryURL)
	if err != nil {
		return nil, fmt.Errorf("collection summary: %w", err)
	}
	s, err := bandcamp.ParseCollectionSummary(c.summaryURL, body)
	if errors.Is(err, bandcamp.ErrNotLoggedIn) {
		return nil, nil
	}
	return s, err
}

// fanResult carries the crumbs found on the fan page along with the fan,
// sparing Crumbs a second page load.
type fanResult struct {
	fan    *model.FanInfo
	crumbs map[string]string
}

func (c *Coordinator) fetchFan(ctx context.Context) (*fanResult, error) {
	s, err := c.fetchSummary(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return &fanResult{}, nil
	}
	fan := s.Fan

	html, final, err := c.transport.GetPage(ctx, fan.URL)
	if err != nil {
		c.logger.Warn("fan name lookup failed", "url", fan.URL, "error", err)
		return &fanResult{fan: &fan}, nil
	}
	page, err := bandcamp.ParseFan(html, final)
	if err != nil {
		c.logger.Warn("fan name lookup failed", "url", fan.URL, "error", err)
		return &fanResult{fan: &fan}, nil
	}
	fan.Name = page.Name

	crumbs, _ := bandcamp.ParseCrumbs(html, final)
	return &fanResult{fan: &fan, crumbs: crumbs}, nil
}
