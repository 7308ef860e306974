package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/handiism/bandcamp-fetch/internal/session"
)

const (
	DefaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	DefaultMaxRedirects = 10
	DefaultTimeout      = 60 * time.Second
)

// Doer executes a single HTTP request without following redirects.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Request describes one exchange. Site is the page the request is made
// on behalf of; it decides whether cookies are sent as same-site. An empty
// Site means the target itself.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
	Site   string
}

// Response is a fully read response. URL is the address after redirects.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client performs HTTP exchanges against Bandcamp, sharing cookies through
// a session.Store.
//
// Client provides:
//   - Redirect following with a bound, storing cookies from every hop
//   - Per-hop Cookie header derivation (same-site vs cross-site)
//   - An optional request rate limit
//   - File download with progress tracking
//
// Example usage:
//
//	client := NewClient(session.NewStore())
//
//	// Fetch HTML content
//	html, err := client.GetString(ctx, "https://artist.bandcamp.com/album/name")
//
//	// Download file with progress
//	err = client.DownloadFile(ctx, mp3URL, "/path/to/file.mp3", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
type Client struct {
	doer         Doer
	store        *session.Store
	userAgent    string
	maxRedirects int
	limiter      *rate.Limiter
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDoer replaces the underlying HTTP executor. The Doer must not follow
// redirects itself.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxRedirects bounds the redirect chain of one exchange.
func WithMaxRedirects(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRedirects = n
		}
	}
}

// WithRateLimit spaces requests to at most rps per second. Zero or a
// negative value disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client storing cookies in store. A nil store gets a
// fresh one.
//
// The default client has:
//   - 60 second timeout
//   - a desktop browser User-Agent header
//   - at most 10 redirects per exchange
//   - no rate limit
func NewClient(store *session.Store, opts ...Option) *Client {
	if store == nil {
		store = session.NewStore()
	}
	c := &Client{
		doer: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		store:        store,
		userAgent:    DefaultUserAgent,
		maxRedirects: DefaultMaxRedirects,
		limiter:      rate.NewLimiter(rate.Inf, 0),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the cookie store shared by the client.
func (c *Client) Session() *session.Store {
	return c.store
}

// Do performs one exchange, following redirects. A non-2xx final
// response is returned together with a *TransportError.
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	resp, final, err := c.roundTrip(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", final, err)
	}

	out := &Response{
		URL:        final.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, NewTransportError(out.URL, resp.StatusCode, body)
	}
	return out, nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// roundTrip follows redirects and returns the final response with its
// body unread.
func (c *Client) roundTrip(ctx context.Context, r *Request) (*http.Response, *url.URL, error) {
	target, err := url.Parse(r.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse url %q: %w", r.URL, err)
	}
	site := target
	if r.Site != "" {
		if s, err := url.Parse(r.Site); err == nil {
			site = s
		}
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	header := r.Header
	body := r.Body

	for hop := 0; ; hop++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
		if err != nil {
			return nil, nil, err
		}
		for k, v := range header {
			req.Header[k] = append([]string(nil), v...)
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		if cookie := c.store.HeaderFor(target, site); cookie != "" {
			req.Header.Set("Cookie", cookie)
		} else {
			req.Header.Del("Cookie")
		}

		resp, err := c.doer.Do(req)
		if err != nil {
			return nil, nil, err
		}
		c.store.SetCookies(target, resp.Cookies())
		c.logger.Debug("http exchange", "method", method, "url", target.String(), "status", resp.StatusCode)

		if !isRedirect(resp.StatusCode) {
			return resp, target, nil
		}
		location := resp.Header.Get("Location")
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if location == "" {
			return nil, nil, &TransportError{URL: target.String(), StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode), Message: "redirect without Location"}
		}
		if hop >= c.maxRedirects {
			return nil, nil, fmt.Errorf("%s: %w", r.URL, ErrTooManyRedirects)
		}

		next, err := target.Parse(location)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redirect location %q: %w", location, err)
		}
		target = next

		switch resp.StatusCode {
		case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther:
			if method != http.MethodHead {
				method = http.MethodGet
			}
			body = nil
			header = withoutContentHeaders(header)
		}
	}
}

func withoutContentHeaders(h http.Header) http.Header {
	out := h.Clone()
	if out == nil {
		return nil
	}
	out.Del("Content-Type")
	out.Del("Content-Length")
	return out
}

// Fetch performs a request that must return content. An empty 2xx body is
// a *NoContentError.
func (c *Client) Fetch(ctx context.Context, r *Request) (*Response, error) {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil, &NoContentError{URL: resp.URL}
	}
	return resp, nil
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 2xx (*TransportError)
//   - The body is empty (*NoContentError)
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Fetch(ctx, &Request{Method: http.MethodGet, URL: url})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetString performs a GET request and returns the response body as a string.
//
// Example:
//
//	html, err := client.GetString(ctx, "https://artist.bandcamp.com/album/name")
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetPage fetches an HTML page and reports the URL it ended up at.
func (c *Client) GetPage(ctx context.Context, url string) (html, finalURL string, err error) {
	resp, err := c.Fetch(ctx, &Request{
		Method: http.MethodGet,
		URL:    url,
		Header: http.Header{"Accept": {"text/html,application/xhtml+xml"}},
	})
	if err != nil {
		return "", "", err
	}
	return string(resp.Body), resp.URL, nil
}

// PostJSON posts v encoded as JSON and returns the response body.
func (c *Client) PostJSON(ctx context.Context, url string, v any, header http.Header) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/json")
	resp, err := c.Fetch(ctx, &Request{Method: http.MethodPost, URL: url, Header: h, Body: payload})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// PostForm posts form as application/x-www-form-urlencoded and returns the
// response body.
func (c *Client) PostForm(ctx context.Context, endpoint string, form url.Values, header http.Header) ([]byte, error) {
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.Fetch(ctx, &Request{Method: http.MethodPost, URL: endpoint, Header: h, Body: []byte(form.Encode())})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// GetFileSize returns the size of a file at the given URL via HEAD request.
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	resp, final, err := c.roundTrip(ctx, &Request{Method: http.MethodHead, URL: url})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, NewTransportError(final.String(), resp.StatusCode, nil)
	}
	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}
	return resp.ContentLength, nil
}

// DownloadFile streams url to destPath, calling onProgress with
// (bytesWritten, totalBytes) when it is non-nil. The file is created or
// truncated.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	resp, final, err := c.roundTrip(ctx, &Request{Method: http.MethodGet, URL: url})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return NewTransportError(final.String(), resp.StatusCode, body)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer file.Close()

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	_, err = io.Copy(writer, resp.Body)
	return err
}

// DownloadBytes downloads a small file, such as cover art, into memory.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}

// XHRHeader builds the headers Bandcamp's XHR endpoints expect.
func XHRHeader(referer string) http.Header {
	h := http.Header{}
	h.Set("Origin", "https://bandcamp.com")
	h.Set("X-Requested-With", "XMLHttpRequest")
	if referer != "" {
		h.Set("Referer", referer)
	}
	return h
}

// IsHTML reports whether a response declares an HTML content type.
func IsHTML(h http.Header) bool {
	return strings.Contains(h.Get("Content-Type"), "text/html")
}
