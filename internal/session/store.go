package session

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Cookie names whose joint presence on bandcamp.com marks a logged-in fan.
const (
	IdentityCookie = "identity"
	LoggedInCookie = "js_logged_in"
)

// BandcampDomain is the registrable domain of the platform.
const BandcampDomain = "bandcamp.com"

type entry struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	HostOnly bool
	Secure   bool
	SameSite http.SameSite
	Expires  time.Time
	Created  time.Time
}

func (e *entry) key() string {
	return e.Domain + ";" + e.Path + ";" + e.Name
}

func (e *entry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}

func (e *entry) matchesHost(host string) bool {
	if e.HostOnly {
		return host == e.Domain
	}
	return host == e.Domain || strings.HasSuffix(host, "."+e.Domain)
}

func (e *entry) matchesPath(p string) bool {
	if p == "" {
		p = "/"
	}
	if p == e.Path {
		return true
	}
	if !strings.HasPrefix(p, e.Path) {
		return false
	}
	return strings.HasSuffix(e.Path, "/") || p[len(e.Path)] == '/'
}

// Store is a concurrency-safe in-memory cookie jar.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	listeners []func()
	now       func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// SetCookies stores the cookies received from u. Cookies with a negative
// MaxAge or an Expires in the past delete a stored cookie of the same name.
func (s *Store) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if u == nil || len(cookies) == 0 {
		return
	}
	host := hostOf(u)
	if host == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, c := range cookies {
		e, ok := newEntry(host, u.Path, c, now)
		if !ok {
			continue
		}
		if e.expired(now) {
			delete(s.entries, e.key())
			continue
		}
		if old, exists := s.entries[e.key()]; exists {
			e.Created = old.Created
		}
		s.entries[e.key()] = e
	}
}

func newEntry(host, requestPath string, c *http.Cookie, now time.Time) (*entry, bool) {
	if c == nil || c.Name == "" {
		return nil, false
	}
	e := &entry{
		Name:     c.Name,
		Value:    c.Value,
		Secure:   c.Secure,
		SameSite: c.SameSite,
		Created:  now,
	}

	domain := strings.TrimPrefix(strings.ToLower(c.Domain), ".")
	if domain == "" {
		e.Domain = host
		e.HostOnly = true
	} else {
		if host != domain && !strings.HasSuffix(host, "."+domain) {
			return nil, false
		}
		e.Domain = domain
	}

	e.Path = c.Path
	if e.Path == "" || e.Path[0] != '/' {
		e.Path = defaultPath(requestPath)
	}

	switch {
	case c.MaxAge < 0:
		e.Expires = now.Add(-time.Second)
	case c.MaxAge > 0:
		e.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	case !c.Expires.IsZero():
		e.Expires = c.Expires
	}
	return e, true
}

func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

func hostOf(u *url.URL) string {
	return strings.ToLower(u.Hostname())
}

// Cookies returns the cookies to send to u, treating the request as
// same-site.
func (s *Store) Cookies(u *url.URL) []*http.Cookie {
	return s.cookies(u, true)
}

func (s *Store) cookies(u *url.URL, sameSite bool) []*http.Cookie {
	if u == nil {
		return nil
	}
	host := hostOf(u)
	secure := u.Scheme == "https"

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var matched []*entry
	for _, e := range s.entries {
		if e.expired(now) || !e.matchesHost(host) || !e.matchesPath(u.Path) {
			continue
		}
		if e.Secure && !secure {
			continue
		}
		if !sameSite && e.SameSite != http.SameSiteNoneMode {
			continue
		}
		matched = append(matched, e)
	}

	// Longer paths first, then older cookies first.
	sort.Slice(matched, func(i, j int) bool {
		if len(matched[i].Path) != len(matched[j].Path) {
			return len(matched[i].Path) > len(matched[j].Path)
		}
		if !matched[i].Created.Equal(matched[j].Created) {
			return matched[i].Created.Before(matched[j].Created)
		}
		return matched[i].Name < matched[j].Name
	})

	out := make([]*http.Cookie, 0, len(matched))
	for _, e := range matched {
		out = append(out, &http.Cookie{Name: e.Name, Value: e.Value})
	}
	return out
}

// HeaderFor returns the Cookie header value for a request to target made
// on behalf of site. Requests to a Bandcamp host, or to the same host as
// site, are same-site and receive every matching cookie; other requests
// only receive cookies marked SameSite=None.
func (s *Store) HeaderFor(target, site *url.URL) string {
	parts := make([]string, 0, 8)
	for _, c := range s.cookies(target, IsSameSite(target, site)) {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// IsSameSite reports whether a request to target originating from site
// counts as same-site.
func IsSameSite(target, site *url.URL) bool {
	if target == nil {
		return false
	}
	host := hostOf(target)
	if host == BandcampDomain || strings.HasSuffix(host, "."+BandcampDomain) {
		return true
	}
	if site == nil {
		return true
	}
	return host == hostOf(site)
}

// LoadHeader seeds the store from a Cookie header value such as
// "identity=abc; js_logged_in=1". The cookies are scoped to domain and all
// of its subdomains.
func (s *Store) LoadHeader(domain, header string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	parsed, err := http.ParseCookie(header)
	if err != nil {
		return err
	}
	domain = strings.TrimPrefix(strings.ToLower(domain), ".")
	for _, c := range parsed {
		c.Domain = domain
		c.Path = "/"
		c.SameSite = http.SameSiteNoneMode
	}
	s.SetCookies(&url.URL{Scheme: "https", Host: domain, Path: "/"}, parsed)
	return nil
}

// Value returns the value of the named cookie visible to u.
func (s *Store) Value(u *url.URL, name string) (string, bool) {
	for _, c := range s.Cookies(u) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// HasCookies reports whether any cookie would be sent to u.
func (s *Store) HasCookies(u *url.URL) bool {
	return len(s.Cookies(u)) > 0
}

// LoggedIn reports whether both the identity and js_logged_in cookies
// are present for bandcamp.com.
func (s *Store) LoggedIn() bool {
	u := &url.URL{Scheme: "https", Host: BandcampDomain, Path: "/"}
	_, identity := s.Value(u, IdentityCookie)
	_, loggedIn := s.Value(u, LoggedInCookie)
	return identity && loggedIn
}

// Reset removes every cookie and runs the OnReset listeners.
func (s *Store) Reset() {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// OnReset registers fn to run after every Reset.
func (s *Store) OnReset(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

var _ http.CookieJar = (*Store)(nil)
