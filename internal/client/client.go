package client

import (
	"log/slog"
	"strings"
	"time"

	"github.com/handiism/bandcamp-fetch/internal/collection"
	bchttp "github.com/handiism/bandcamp-fetch/internal/http"
	"github.com/handiism/bandcamp-fetch/internal/identity"
	"github.com/handiism/bandcamp-fetch/internal/session"
)

// DefaultBaseURL is the root of the platform's own pages and endpoints.
const DefaultBaseURL = "https://bandcamp.com"

type options struct {
	baseURL  string
	store    *session.Store
	cookie   string
	crumbTTL time.Duration
	logger   *slog.Logger
	httpOpts []bchttp.Option
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL points the client at another platform root.
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithStore shares an existing cookie store.
func WithStore(s *session.Store) Option {
	return func(o *options) { o.store = s }
}

// WithCookie seeds the session from a Cookie header value copied from a
// logged-in browser.
func WithCookie(header string) Option {
	return func(o *options) { o.cookie = header }
}

// WithCrumbTTL sets how long action crumbs stay fresh.
func WithCrumbTTL(d time.Duration) Option {
	return func(o *options) { o.crumbTTL = d }
}

// WithLogger sets the logger shared by the client's components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithHTTPOptions passes options to the underlying HTTP client.
func WithHTTPOptions(opts ...bchttp.Option) Option {
	return func(o *options) { o.httpOpts = append(o.httpOpts, opts...) }
}

// Client resolves pages and performs fan operations for one session.
type Client struct {
	baseURL  string
	http     *bchttp.Client
	store    *session.Store
	identity *identity.Coordinator
	sections *collection.Fetcher
	logger   *slog.Logger
}

// New creates a client. Every component shares one cookie store, so a
// Logout clears the identity and crumb caches too.
func New(opts ...Option) (*Client, error) {
	o := options{
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = session.NewStore()
	}
	if o.cookie != "" {
		if err := o.store.LoadHeader(session.BandcampDomain, o.cookie); err != nil {
			return nil, err
		}
	}

	httpOpts := append([]bchttp.Option{bchttp.WithLogger(o.logger)}, o.httpOpts...)
	hc := bchttp.NewClient(o.store, httpOpts...)

	return &Client{
		baseURL: o.baseURL,
		http:    hc,
		store:   o.store,
		identity: identity.New(hc, o.store,
			identity.WithSummaryURL(o.baseURL+"/api/fan/2/collection_summary"),
			identity.WithCrumbTTL(o.crumbTTL),
			identity.WithLogger(o.logger),
		),
		sections: collection.NewFetcher(hc, o.store,
			collection.WithBaseURL(o.baseURL+"/api/fancollection/1/"),
			collection.WithLogger(o.logger),
		),
		logger: o.logger,
	}, nil
}

// HTTP returns the underlying HTTP client, for downloads that should
// share the session.
func (c *Client) HTTP() *bchttp.Client { return c.http }

// Session returns the cookie store.
func (c *Client) Session() *session.Store { return c.store }

// Sections returns the fan list fetcher for use with
// collection.FetchSection.
func (c *Client) Sections() *collection.Fetcher { return c.sections }

// Identity returns the identity and crumb coordinator.
func (c *Client) Identity() *identity.Coordinator { return c.identity }

// Logout clears every cookie. The identity and crumb caches are
// invalidated with it.
func (c *Client) Logout() {
	c.store.Reset()
}
