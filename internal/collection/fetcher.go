package collection

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/handiism/bandcamp-fetch/internal/bandcamp"
	"github.com/handiism/bandcamp-fetch/internal/bandcamp/dto"
	bchttp "github.com/handiism/bandcamp-fetch/internal/http"
	"github.com/handiism/bandcamp-fetch/internal/model"
	"github.com/handiism/bandcamp-fetch/internal/session"
)

const (
	BaseURL      = "https://bandcamp.com/api/fancollection/1/"
	DefaultCount = 20
)

// Transport is the subset of the HTTP client the fetcher needs.
type Transport interface {
	PostJSON(ctx context.Context, url string, v any, header http.Header) ([]byte, error)
	GetPage(ctx context.Context, url string) (html, finalURL string, err error)
}

// SectionRequest selects one page of a fan list. OlderThanToken defaults
// to a token an hour in the future, Count to DefaultCount and Referer to
// FanURL.
type SectionRequest struct {
	Referer        string
	FanURL         string
	FanID          int64
	OlderThanToken string
	Count          int
}

// SearchKind selects which list SearchCollection searches.
type SearchKind string

const (
	KindCollection SearchKind = "collection"
	KindWishlist   SearchKind = "wishlist"
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL points the fetcher at another API root.
func WithBaseURL(base string) Option {
	return func(f *Fetcher) {
		if base != "" {
			f.baseURL = strings.TrimRight(base, "/") + "/"
		}
	}
}

// WithLogger sets the fetcher's logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// Fetcher loads pages of fan lists.
type Fetcher struct {
	transport Transport
	store     *session.Store
	baseURL   string
	logger    *slog.Logger
	now       func() time.Time
}

// NewFetcher creates a fetcher. store is consulted to decide whether a
// session has to be established before calling the API.
func NewFetcher(t Transport, store *session.Store, opts ...Option) *Fetcher {
	f := &Fetcher{
		transport: t,
		store:     store,
		baseURL:   BaseURL,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type sectionBody struct {
	FanID          int64  `json:"fan_id"`
	OlderThanToken string `json:"older_than_token"`
	Count          int    `json:"count"`
}

type searchBody struct {
	FanID      int64      `json:"fan_id"`
	SearchKey  string     `json:"search_key"`
	SearchType SearchKind `json:"search_type"`
}

// FetchSection loads one page from ep.
func FetchSection[N any](ctx context.Context, f *Fetcher, ep Endpoint[N], req SectionRequest) (model.SectionPage[N], error) {
	resp, err := f.Raw(ctx, ep.Name, req)
	if err != nil {
		return model.SectionPage[N]{}, err
	}
	return ep.page(resp), nil
}

// LoadMore fetches the page after sec's last token and merges it into
// sec. It is a no-op when sec reports no more rows.
func LoadMore[N any, P model.SectionNode[N]](ctx context.Context, f *Fetcher, ep Endpoint[N], sec *model.FanSection[N], req SectionRequest) error {
	if sec == nil || !sec.HasMore {
		return nil
	}
	req.OlderThanToken = sec.LastToken
	page, err := FetchSection(ctx, f, ep, req)
	if err != nil {
		return err
	}
	model.MergeSection[N, P](sec, page, true)
	return nil
}

// Raw posts a section request and returns the decoded envelope. A body
// flagged as an error becomes a *http.TransportError.
func (f *Fetcher) Raw(ctx context.Context, endpoint string, req SectionRequest) (*dto.SectionResponse, error) {
	if err := f.ensureSession(ctx, req.FanURL); err != nil {
		return nil, err
	}

	body := sectionBody{
		FanID:          req.FanID,
		OlderThanToken: req.OlderThanToken,
		Count:          req.Count,
	}
	if body.OlderThanToken == "" {
		body.OlderThanToken = model.DefaultOlderThanToken(f.now())
	}
	if body.Count <= 0 {
		body.Count = DefaultCount
	}
	return f.post(ctx, endpoint, body, referer(req))
}

// SearchCollection searches a fan's collection or wishlist.
func (f *Fetcher) SearchCollection(ctx context.Context, req SectionRequest, query string, kind SearchKind) (model.SectionPage[model.CollectionNode], error) {
	if err := f.ensureSession(ctx, req.FanURL); err != nil {
		return model.SectionPage[model.CollectionNode]{}, err
	}
	if kind == "" {
		kind = KindCollection
	}
	resp, err := f.post(ctx, SearchItems.Name, searchBody{
		FanID:      req.FanID,
		SearchKey:  query,
		SearchType: kind,
	}, referer(req))
	if err != nil {
		return model.SectionPage[model.CollectionNode]{}, err
	}
	return SearchItems.page(resp), nil
}

func referer(req SectionRequest) string {
	if req.Referer != "" {
		return req.Referer
	}
	return req.FanURL
}

func (f *Fetcher) post(ctx context.Context, endpoint string, v any, referer string) (*dto.SectionResponse, error) {
	u := f.baseURL + endpoint
	raw, err := f.transport.PostJSON(ctx, u, v, bchttp.XHRHeader(referer))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	resp, err := bandcamp.DecodeSection(u, raw)
	if err != nil {
		return nil, err
	}
	if resp.Error.Set {
		te := bchttp.NewTransportError(u, http.StatusOK, raw)
		if resp.ErrorMessage == "" && resp.Error.Code != "" {
			te.Message = resp.Error.Code
		}
		return nil, te
	}
	return resp, nil
}

// ensureSession loads the fan's page once so that the API call carries
// the platform's session cookies.
func (f *Fetcher) ensureSession(ctx context.Context, fanURL string) error {
	api, err := url.Parse(f.baseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if f.store == nil || f.store.HasCookies(api) || fanURL == "" {
		return nil
	}
	f.logger.Debug("establishing session", "url", fanURL)
	if _, _, err := f.transport.GetPage(ctx, fanURL); err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	return nil
}
